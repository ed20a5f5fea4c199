// Package gateway is a small chat server: rooms of websocket clients that
// the race engine talks to through the chat interfaces.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/chat"
	"github.com/DoyleJ11/typrr/internal/types"
)

var ErrMessageNotFound = errors.New("message not found")
var ErrChannelExists = errors.New("channel already exists")
var ErrReservedAuthor = errors.New("author id is reserved for the bot")

// Bot is the author of every announcement.
var Bot = chat.Participant{ID: "typrr", Name: "typrr"}

const clientBuffer = 32

type room struct {
	info     chat.ChannelInfo
	messages map[string]chat.Participant
	clients  map[string]chan types.ServerFrame
	windows  map[*window]struct{}
}

type Gateway struct {
	mu    sync.Mutex
	rooms map[string]*room
	log   *zap.Logger
	now   func() time.Time
}

var _ chat.Platform = (*Gateway)(nil)

func New(log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		rooms: make(map[string]*room),
		log:   log.Named("gateway"),
		now:   time.Now,
	}
}

// EnsureChannel registers a public channel whose id is its name.
func (g *Gateway) EnsureChannel(name string) chat.ChannelInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[name]; ok {
		return r.info
	}
	info := chat.ChannelInfo{ID: name, Name: name}
	g.rooms[name] = newRoom(info)
	return info
}

func newRoom(info chat.ChannelInfo) *room {
	return &room{
		info:     info,
		messages: make(map[string]chat.Participant),
		clients:  make(map[string]chan types.ServerFrame),
		windows:  make(map[*window]struct{}),
	}
}

func (g *Gateway) room(channel string) (*room, error) {
	r, ok := g.rooms[channel]
	if !ok {
		return nil, fmt.Errorf("%s: %w", channel, chat.ErrChannelNotFound)
	}
	return r, nil
}

// broadcast must be called with g.mu held. Slow clients are dropped.
func (g *Gateway) broadcast(r *room, f types.ServerFrame) {
	for id, ch := range r.clients {
		select {
		case ch <- f:
		default:
			g.log.Debug("dropping slow client", zap.String("client", id), zap.String("channel", r.info.ID))
			close(ch)
			delete(r.clients, id)
		}
	}
}

func author(p chat.Participant, bot bool) *types.Author {
	return &types.Author{ID: p.ID, Name: p.Name, Bot: bot}
}

func (g *Gateway) Announce(_ context.Context, channel, text string) (chat.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.room(channel)
	if err != nil {
		return chat.MessageRef{}, err
	}
	ref := chat.MessageRef{Channel: channel, ID: uuid.NewString()}
	r.messages[ref.ID] = Bot
	g.broadcast(r, types.ServerFrame{Type: types.FrameMessage, Channel: channel, ID: ref.ID, Author: author(Bot, true), Text: text})
	return ref, nil
}

func (g *Gateway) UpdateAnnouncement(_ context.Context, ref chat.MessageRef, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.room(ref.Channel)
	if err != nil {
		return err
	}
	if by, ok := r.messages[ref.ID]; !ok || by != Bot {
		return fmt.Errorf("edit %s: %w", ref.ID, ErrMessageNotFound)
	}
	g.broadcast(r, types.ServerFrame{Type: types.FrameEdit, Channel: ref.Channel, ID: ref.ID, Text: text})
	return nil
}

func (g *Gateway) DeleteMessage(_ context.Context, ref chat.MessageRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.room(ref.Channel)
	if err != nil {
		return err
	}
	if _, ok := r.messages[ref.ID]; !ok {
		return fmt.Errorf("delete %s: %w", ref.ID, ErrMessageNotFound)
	}
	delete(r.messages, ref.ID)
	g.broadcast(r, types.ServerFrame{Type: types.FrameDelete, Channel: ref.Channel, ID: ref.ID})
	return nil
}

// Say posts a participant's message and hands it to every open window.
func (g *Gateway) Say(channel string, from chat.Participant, text string) (chat.Message, error) {
	if from.ID == Bot.ID {
		return chat.Message{}, ErrReservedAuthor
	}
	g.mu.Lock()
	r, err := g.room(channel)
	if err != nil {
		g.mu.Unlock()
		return chat.Message{}, err
	}
	msg := chat.Message{
		Ref:        chat.MessageRef{Channel: channel, ID: uuid.NewString()},
		Author:     from,
		Text:       text,
		ReceivedAt: g.now(),
	}
	r.messages[msg.Ref.ID] = from
	g.broadcast(r, types.ServerFrame{Type: types.FrameMessage, Channel: channel, ID: msg.Ref.ID, Author: author(from, false), Text: text})
	windows := make([]*window, 0, len(r.windows))
	for w := range r.windows {
		windows = append(windows, w)
	}
	g.mu.Unlock()

	for _, w := range windows {
		w.deliver(msg)
	}
	return msg, nil
}

// OpenWindow subscribes to channel. The window closes after d (if d > 0),
// when ctx is done, on Close, or when the channel is deleted.
func (g *Gateway) OpenWindow(ctx context.Context, channel string, d time.Duration) (chat.Window, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.room(channel)
	if err != nil {
		return nil, err
	}
	w := &window{ch: make(chan chat.Message, 64)}
	w.detach = func() {
		g.mu.Lock()
		delete(r.windows, w)
		g.mu.Unlock()
	}
	r.windows[w] = struct{}{}

	w.mu.Lock()
	defer w.mu.Unlock()
	if d > 0 {
		w.stopTimer = time.AfterFunc(d, w.Close).Stop
	}
	w.stopCtx = context.AfterFunc(ctx, w.Close)
	return w, nil
}

func (g *Gateway) CreateChannel(_ context.Context, name string, owner chat.Participant) (chat.ChannelInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.rooms {
		if r.info.Name == name {
			return chat.ChannelInfo{}, fmt.Errorf("%s: %w", name, ErrChannelExists)
		}
	}
	info := chat.ChannelInfo{ID: uuid.NewString(), Name: name}
	g.rooms[info.ID] = newRoom(info)
	g.log.Info("channel created", zap.String("channel", info.ID), zap.String("name", name), zap.String("owner", owner.ID))
	return info, nil
}

func (g *Gateway) DeleteChannel(_ context.Context, channel string) error {
	g.mu.Lock()
	r, err := g.room(channel)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	delete(g.rooms, channel)
	for id, ch := range r.clients {
		select {
		case ch <- types.ServerFrame{Type: types.FrameClosed, Channel: channel}:
		default:
		}
		close(ch)
		delete(r.clients, id)
	}
	windows := make([]*window, 0, len(r.windows))
	for w := range r.windows {
		windows = append(windows, w)
	}
	g.mu.Unlock()

	for _, w := range windows {
		w.Close()
	}
	g.log.Info("channel deleted", zap.String("channel", channel))
	return nil
}

func (g *Gateway) ListChannels(_ context.Context, prefix string) ([]chat.ChannelInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []chat.ChannelInfo
	for _, r := range g.rooms {
		if strings.HasPrefix(r.info.Name, prefix) {
			out = append(out, r.info)
		}
	}
	slices.SortFunc(out, func(a, b chat.ChannelInfo) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Connect registers a client on channel. The returned channel is closed when
// the client is dropped or the channel deleted; leave unregisters it.
func (g *Gateway) Connect(channel string) (clientID string, frames <-chan types.ServerFrame, leave func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.room(channel)
	if err != nil {
		return "", nil, nil, err
	}
	clientID = uuid.NewString()
	ch := make(chan types.ServerFrame, clientBuffer)
	r.clients[clientID] = ch
	leave = func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if c, ok := r.clients[clientID]; ok {
			close(c)
			delete(r.clients, clientID)
		}
	}
	return clientID, ch, leave, nil
}

type window struct {
	mu        sync.Mutex
	ch        chan chat.Message
	closed    bool
	detach    func()
	stopTimer func() bool
	stopCtx   func() bool
}

func (w *window) C() <-chan chat.Message { return w.ch }

func (w *window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	stopTimer, stopCtx := w.stopTimer, w.stopCtx
	w.mu.Unlock()

	if stopTimer != nil {
		stopTimer()
	}
	if stopCtx != nil {
		stopCtx()
	}
	w.detach()
}

func (w *window) deliver(m chat.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.ch <- m:
	default:
	}
}
