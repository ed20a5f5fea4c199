// Package session runs race and practice sessions as actors. Each actor owns
// one engine.State; every mutation arrives on its inbox, so a session's state
// is never touched by two goroutines.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/engine"
	"github.com/DoyleJ11/typrr/internal/words"
)

var ErrClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

// Join registers an observer; it immediately receives the current snapshot.
type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type timerFired struct{ gen uint64 }

func (timerFired) isSessionMsg() {}

type Snapshot struct {
	Version  int
	State    engine.State
	Language words.Language
}

type View struct {
	Version      int
	NumObservers int
	State        engine.State
	Language     words.Language
	Tracked      int
}

// Options are shared by race and practice actors.
type Options struct {
	Log       *zap.Logger
	Scheduler Scheduler
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Scheduler == nil {
		o.Scheduler = WallScheduler
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type base struct {
	inbox     chan Msg
	state     engine.State
	version   int
	observers map[string]chan Snapshot
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}

	log   *zap.Logger
	sched Scheduler
	now   func() time.Time

	gen  uint64
	task *Task

	// lang is only meaningful for practice sessions.
	lang words.Language
}

func newBase(parent context.Context, kind engine.Kind, opts Options) base {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(parent)
	return base{
		inbox:     make(chan Msg, 64),
		state:     engine.NewIdleState(kind),
		observers: make(map[string]chan Snapshot),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		log:       opts.Log,
		sched:     opts.Scheduler,
		now:       opts.Now,
	}
}

// apply runs cmd through the engine and commits the result.
func (b *base) apply(cmd engine.Command) ([]engine.Event, error) {
	if cmd.At.IsZero() {
		cmd.At = b.now()
	}
	events, next, err := engine.Apply(b.state, cmd)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		b.commit(next)
	}
	return events, nil
}

func (b *base) commit(next engine.State) {
	b.state = next
	b.version++
	b.broadcast(b.snapshot())
}

func (b *base) snapshot() Snapshot {
	return Snapshot{Version: b.version, State: b.state, Language: b.lang}
}

// schedule replaces the pending task with one that posts timerFired after d.
func (b *base) schedule(d time.Duration, fire func(gen uint64) Msg) {
	b.cancelTask()
	gen := b.gen
	stop := b.sched.AfterFunc(d, func() { b.post(fire(gen)) })
	b.task = &Task{Gen: gen, stop: stop}
}

// cancelTask stops the pending task and invalidates any fire already in flight.
func (b *base) cancelTask() {
	b.task.Stop()
	b.task = nil
	b.gen++
}

func (b *base) current(gen uint64) bool {
	return b.task != nil && b.task.Gen == gen
}

func (b *base) post(m Msg) {
	select {
	case b.inbox <- m:
	case <-b.ctx.Done():
	}
}

func (b *base) join(msg Join, snap Snapshot) {
	b.observers[msg.ClientID] = msg.Outbox
	select {
	case msg.Outbox <- snap:
	default:
	}
}

func (b *base) broadcast(snap Snapshot) {
	for id, ch := range b.observers {
		select {
		case ch <- snap:
			//ok
		default:
			// Observer is slow/full - drop them.
			close(ch)
			delete(b.observers, id)
		}
	}
}

func (b *base) shutdown() {
	b.cancelTask()
	for id, ch := range b.observers {
		close(ch) // Tell observer no more snapshots
		delete(b.observers, id)
	}
	b.cancel()
	close(b.done)
}

// Inbox exposes the raw inbox so tests and transports can send messages.
func (b *base) Inbox() chan<- Msg { return b.inbox }

// Done is closed once the actor has stopped.
func (b *base) Done() <-chan struct{} { return b.done }

// Close stops the actor without waiting.
func (b *base) Close() { b.cancel() }

func (b *base) Observe(ctx context.Context, clientID string, outbox chan Snapshot) error {
	return b.send(ctx, Join{ClientID: clientID, Outbox: outbox})
}

func (b *base) Unobserve(ctx context.Context, clientID string) error {
	return b.send(ctx, Leave{ClientID: clientID})
}

func (b *base) send(ctx context.Context, m Msg) error {
	select {
	case b.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.ctx.Done():
		return ErrClosed
	}
}

// request sends the message built around a fresh reply channel and waits for
// the actor's answer.
func request[T any](ctx context.Context, b *base, build func(reply chan T) Msg) (T, error) {
	var zero T
	reply := make(chan T, 1)
	if err := b.send(ctx, build(reply)); err != nil {
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-b.ctx.Done():
		return zero, ErrClosed
	}
}
