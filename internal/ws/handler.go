package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/chat"
	"github.com/DoyleJ11/typrr/internal/gateway"
	"github.com/DoyleJ11/typrr/internal/session"
	"github.com/DoyleJ11/typrr/internal/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type connectParams struct {
	Channel string `validate:"required,max=64"`
	User    string `validate:"required,max=64"`
	Name    string `validate:"required,max=64"`
}

// Handler upgrades /ws?channel=&user=&name= to a chat connection. Frames the
// client sends become channel messages; the client receives every channel
// event and, when race is set, race snapshots.
func Handler(gw *gateway.Gateway, race *session.Race, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := connectParams{Channel: q.Get("channel"), User: q.Get("user"), Name: q.Get("name")}
		if err := validate.Struct(params); err != nil {
			http.Error(w, "channel, user and name are required", http.StatusBadRequest)
			return
		}
		if params.User == gateway.Bot.ID {
			http.Error(w, "user id is reserved", http.StatusBadRequest)
			return
		}

		clientID, frames, leave, err := gw.Connect(params.Channel)
		if errors.Is(err, chat.ErrChannelNotFound) {
			http.Error(w, "channel not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer leave()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log := log.With(zap.String("client", clientID), zap.String("channel", params.Channel))
		me := chat.Participant{ID: params.User, Name: params.Name}

		var snaps chan session.Snapshot
		if race != nil {
			snaps = make(chan session.Snapshot, 8)
			if err := race.Observe(r.Context(), clientID, snaps); err != nil {
				return
			}
			defer func() { _ = race.Unobserve(context.WithoutCancel(r.Context()), clientID) }()
		}

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer writeCancel()
			for {
				var f types.ServerFrame
				select {
				case <-writeCtx.Done():
					return
				case fr, ok := <-frames:
					if !ok {
						// Dropped or channel deleted.
						conn.Close(websocket.StatusGoingAway, "channel closed")
						return
					}
					f = fr
				case snap, ok := <-snaps:
					if !ok {
						snaps = nil
						continue
					}
					f = types.ServerFrame{Type: types.FrameRace, Version: snap.Version, Race: &snap.State}
				}
				if err := write(writeCtx, conn, f); err != nil {
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(writeCtx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read", zap.Error(err))
				}
				return
			}

			var cf types.ClientFrame
			if err := json.Unmarshal(data, &cf); err != nil {
				_ = write(writeCtx, conn, types.ServerFrame{Type: types.FrameError, Error: "bad json"})
				continue
			}
			if err := validate.Struct(cf); err != nil {
				_ = write(writeCtx, conn, types.ServerFrame{Type: types.FrameError, Error: "invalid frame"})
				continue
			}
			if _, err := gw.Say(params.Channel, me, cf.Text); err != nil {
				_ = write(writeCtx, conn, types.ServerFrame{Type: types.FrameError, Error: err.Error()})
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, f types.ServerFrame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
