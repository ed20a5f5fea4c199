// Package hub owns the channel -> practice session registry.
package hub

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/session"
)

var ErrHubClosed = errors.New("hub closed")

// Factory builds the session for a channel on first use.
type Factory func(ctx context.Context, channel string) (*session.Practice, error)

type HubMsg interface{ isHubMsg() }

type EnsureResult struct {
	Session *session.Practice
	Created bool
	Err     error
}

type EnsureSession struct {
	Channel string
	Reply   chan EnsureResult
}

type GetSession struct {
	Channel string
	Reply   chan *session.Practice
}

type RemoveSession struct {
	Channel string
	Reply   chan bool
}

type ListSessions struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (EnsureSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (ListSessions) isHubMsg()  {}
func (ShutdownHub) isHubMsg()   {}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Practice
	factory  Factory
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, factory Factory, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Practice),
		factory:  factory,
		log:      log.Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureSession:
				if s := h.sessions[msg.Channel]; s != nil {
					msg.Reply <- EnsureResult{Session: s}
					break
				}
				s, err := h.factory(h.ctx, msg.Channel)
				if err != nil {
					msg.Reply <- EnsureResult{Err: err}
					break
				}
				h.sessions[msg.Channel] = s
				h.log.Debug("practice session registered", zap.String("channel", msg.Channel))
				msg.Reply <- EnsureResult{Session: s, Created: true}

			case GetSession:
				msg.Reply <- h.sessions[msg.Channel] // May be nil

			case RemoveSession:
				s, ok := h.sessions[msg.Channel]
				if ok {
					s.Close()
					delete(h.sessions, msg.Channel)
				}
				msg.Reply <- ok

			case ListSessions:
				channels := make([]string, 0, len(h.sessions))
				for ch := range h.sessions {
					channels = append(channels, ch)
				}
				slices.Sort(channels)
				msg.Reply <- channels

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		s.Close()
	}
	clear(h.sessions)
}

func call[T any](ctx context.Context, h *Hub, build func(reply chan T) HubMsg) (T, error) {
	var zero T
	reply := make(chan T, 1)
	select {
	case h.inbox <- build(reply):
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	}
}

// GetOrCreate returns the channel's session, creating it on first use. created
// reports whether this call created it.
func (h *Hub) GetOrCreate(ctx context.Context, channel string) (s *session.Practice, created bool, err error) {
	rep, err := call(ctx, h, func(reply chan EnsureResult) HubMsg {
		return EnsureSession{Channel: channel, Reply: reply}
	})
	if err != nil {
		return nil, false, err
	}
	return rep.Session, rep.Created, rep.Err
}

// Get returns nil when no session is registered for channel.
func (h *Hub) Get(ctx context.Context, channel string) (*session.Practice, error) {
	return call(ctx, h, func(reply chan *session.Practice) HubMsg {
		return GetSession{Channel: channel, Reply: reply}
	})
}

// Remove stops and forgets the channel's session. It reports whether one existed.
func (h *Hub) Remove(ctx context.Context, channel string) (bool, error) {
	return call(ctx, h, func(reply chan bool) HubMsg {
		return RemoveSession{Channel: channel, Reply: reply}
	})
}

func (h *Hub) Channels(ctx context.Context) ([]string, error) {
	return call(ctx, h, func(reply chan []string) HubMsg {
		return ListSessions{Reply: reply}
	})
}

// Shutdown stops every session and the hub itself.
func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}
