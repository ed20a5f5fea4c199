// Package chattest provides an in-memory chat.Platform for tests.
package chattest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DoyleJ11/typrr/internal/chat"
)

var ErrInjected = errors.New("injected failure")

// Post is one message as it currently reads.
type Post struct {
	Ref     chat.MessageRef
	Author  chat.Participant
	Text    string
	Edits   int
	Deleted bool
}

type Platform struct {
	mu       sync.Mutex
	seq      int
	posts    []*Post
	byID     map[string]*Post
	channels map[string]chat.ChannelInfo
	windows  map[string][]*window

	// FailAnnounce and FailDelete make the matching calls return ErrInjected.
	FailAnnounce bool
	FailDelete   bool
}

var _ chat.Platform = (*Platform)(nil)

func New() *Platform {
	return &Platform{
		byID:     make(map[string]*Post),
		channels: make(map[string]chat.ChannelInfo),
		windows:  make(map[string][]*window),
	}
}

var Bot = chat.Participant{ID: "bot", Name: "typrr"}

func (p *Platform) add(channel string, author chat.Participant, text string) *Post {
	p.seq++
	post := &Post{
		Ref:    chat.MessageRef{Channel: channel, ID: fmt.Sprintf("m%d", p.seq)},
		Author: author,
		Text:   text,
	}
	p.posts = append(p.posts, post)
	p.byID[post.Ref.ID] = post
	return post
}

func (p *Platform) Announce(_ context.Context, channel, text string) (chat.MessageRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAnnounce {
		return chat.MessageRef{}, ErrInjected
	}
	return p.add(channel, Bot, text).Ref, nil
}

func (p *Platform) UpdateAnnouncement(_ context.Context, ref chat.MessageRef, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.byID[ref.ID]
	if !ok || post.Deleted {
		return fmt.Errorf("edit %s: %w", ref.ID, ErrInjected)
	}
	post.Text = text
	post.Edits++
	return nil
}

func (p *Platform) DeleteMessage(_ context.Context, ref chat.MessageRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailDelete {
		return ErrInjected
	}
	post, ok := p.byID[ref.ID]
	if !ok {
		return fmt.Errorf("delete %s: unknown message", ref.ID)
	}
	post.Deleted = true
	return nil
}

// Say posts a human message and delivers it to every open window on channel.
func (p *Platform) Say(channel string, author chat.Participant, text string) chat.Message {
	p.mu.Lock()
	post := p.add(channel, author, text)
	msg := chat.Message{Ref: post.Ref, Author: author, Text: text, ReceivedAt: time.Now()}
	ws := append([]*window(nil), p.windows[channel]...)
	p.mu.Unlock()

	for _, w := range ws {
		w.deliver(msg)
	}
	return msg
}

func (p *Platform) OpenWindow(_ context.Context, channel string, d time.Duration) (chat.Window, error) {
	w := &window{ch: make(chan chat.Message, 64)}
	p.mu.Lock()
	p.windows[channel] = append(p.windows[channel], w)
	p.mu.Unlock()
	if d > 0 {
		time.AfterFunc(d, w.Close)
	}
	return w, nil
}

// OpenWindows counts windows on channel that are still open.
func (p *Platform) OpenWindows(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, w := range p.windows[channel] {
		if !w.isClosed() {
			n++
		}
	}
	return n
}

// CloseWindows ends every window on channel, as if its duration elapsed.
func (p *Platform) CloseWindows(channel string) {
	p.mu.Lock()
	ws := p.windows[channel]
	p.mu.Unlock()
	for _, w := range ws {
		w.Close()
	}
}

func (p *Platform) CreateChannel(_ context.Context, name string, _ chat.Participant) (chat.ChannelInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.channels {
		if c.Name == name {
			return chat.ChannelInfo{}, fmt.Errorf("channel %q exists", name)
		}
	}
	p.seq++
	info := chat.ChannelInfo{ID: fmt.Sprintf("c%d", p.seq), Name: name}
	p.channels[info.ID] = info
	return info, nil
}

func (p *Platform) DeleteChannel(_ context.Context, channel string) error {
	p.mu.Lock()
	if _, ok := p.channels[channel]; !ok {
		p.mu.Unlock()
		return chat.ErrChannelNotFound
	}
	delete(p.channels, channel)
	ws := p.windows[channel]
	delete(p.windows, channel)
	p.mu.Unlock()
	for _, w := range ws {
		w.Close()
	}
	return nil
}

func (p *Platform) ListChannels(_ context.Context, prefix string) ([]chat.ChannelInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []chat.ChannelInfo
	for _, c := range p.channels {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out, nil
}

// AddChannel registers a channel directly, bypassing CreateChannel's checks.
func (p *Platform) AddChannel(info chat.ChannelInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[info.ID] = info
}

func (p *Platform) HasChannel(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.channels[id]
	return ok
}

// Posts returns copies of every message posted to channel, oldest first.
func (p *Platform) Posts(channel string) []Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Post
	for _, post := range p.posts {
		if post.Ref.Channel == channel {
			out = append(out, *post)
		}
	}
	return out
}

// Live returns the texts of the bot messages on channel that were not deleted.
func (p *Platform) Live(channel string) []string {
	var out []string
	for _, post := range p.Posts(channel) {
		if post.Author == Bot && !post.Deleted {
			out = append(out, post.Text)
		}
	}
	return out
}

func (p *Platform) Get(ref chat.MessageRef) (Post, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.byID[ref.ID]
	if !ok {
		return Post{}, false
	}
	return *post, true
}

type window struct {
	mu     sync.Mutex
	ch     chan chat.Message
	closed bool
}

func (w *window) C() <-chan chat.Message { return w.ch }

func (w *window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
}

func (w *window) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
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
