package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/arena"
	"github.com/DoyleJ11/typrr/internal/gateway"
	"github.com/DoyleJ11/typrr/internal/session"
	"github.com/DoyleJ11/typrr/internal/ws"
)

func SetupRoutes(a *arena.Arena, gw *gateway.Gateway, race *session.Race, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/races", StartRace(a, log))
	r.Get("/race", CurrentRace(race))
	r.Post("/practice", OpenPractice(a, log))
	r.Delete("/practice/{channel}", ClosePractice(a))
	r.Get("/leaderboard", Leaderboard(a))
	r.Get("/profiles/{id}", Profile(a))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(gw, race, log))
	return r
}
