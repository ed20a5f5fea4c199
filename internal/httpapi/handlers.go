package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/arena"
	"github.com/DoyleJ11/typrr/internal/chat"
	"github.com/DoyleJ11/typrr/internal/engine"
	"github.com/DoyleJ11/typrr/internal/session"
	"github.com/DoyleJ11/typrr/internal/store"
	"github.com/DoyleJ11/typrr/internal/words"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type practiceRequest struct {
	User string `json:"user" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=64"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, arena.ErrInvalidRequest),
		errors.Is(err, words.ErrInvalidPromptSize):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrChannelNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, arena.ErrNotPractice):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyActive),
		errors.Is(err, arena.ErrPracticeExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func StartRace(a *arena.Arena, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req arena.RaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("bad json"))
			return
		}
		if err := a.StartRace(r.Context(), req); err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				log.Error("start race", zap.Error(err))
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusAccepted, struct {
			Channel string `json:"channel"`
		}{Channel: req.Channel})
	}
}

func CurrentRace(race *session.Race) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := race.ActiveGame(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			engine.State
			Ranked []engine.Winner `json:"ranked"`
		}{State: s, Ranked: engine.Ranked(s)})
	}
}

func OpenPractice(a *arena.Arena, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req practiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		info, err := a.OpenPractice(r.Context(), chat.Participant{ID: req.User, Name: req.Name})
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				log.Error("open practice", zap.Error(err))
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, info)
	}
}

func ClosePractice(a *arena.Arena) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.ClosePractice(r.Context(), chi.URLParam(r, "channel")); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Leaderboard(a *arena.Arena) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := a.Leaderboard(r.Context(), r.URL.Query().Get("sort"))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if entries == nil {
			entries = []store.LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func Profile(a *arena.Arena) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, recent, err := a.Profile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Profile store.Profile    `json:"profile"`
			Recent  []store.TypeStat `json:"recent"`
		}{Profile: p, Recent: recent})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
