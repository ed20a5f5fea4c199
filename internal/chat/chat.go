// Package chat defines what the race engine needs from a chat platform:
// posting and editing announcements, reading channel messages through
// time-boxed windows, deleting messages and managing channels.
package chat

import (
	"context"
	"errors"
	"time"
)

var ErrChannelNotFound = errors.New("channel not found")

// MessageRef identifies a posted message so it can be edited or deleted.
type MessageRef struct {
	Channel string
	ID      string
}

type Participant struct {
	ID   string
	Name string
}

// Message is one human-authored channel message.
type Message struct {
	Ref        MessageRef
	Author     Participant
	Text       string
	ReceivedAt time.Time
}

type Announcer interface {
	Announce(ctx context.Context, channel, text string) (MessageRef, error)
	UpdateAnnouncement(ctx context.Context, ref MessageRef, text string) error
}

type MessageDeleter interface {
	DeleteMessage(ctx context.Context, ref MessageRef) error
}

// Window is a subscription to a channel's messages. C is closed when the
// window's duration elapses or Close is called, whichever comes first.
type Window interface {
	C() <-chan Message
	Close()
}

// Collector opens windows. A duration <= 0 keeps the window open until Close.
// Bot-authored messages never reach a window.
type Collector interface {
	OpenWindow(ctx context.Context, channel string, d time.Duration) (Window, error)
}

type ChannelInfo struct {
	ID   string
	Name string
}

type ChannelManager interface {
	CreateChannel(ctx context.Context, name string, owner Participant) (ChannelInfo, error)
	DeleteChannel(ctx context.Context, channel string) error
	ListChannels(ctx context.Context, prefix string) ([]ChannelInfo, error)
}

// Platform bundles every collaborator.
type Platform interface {
	Announcer
	MessageDeleter
	Collector
	ChannelManager
}
