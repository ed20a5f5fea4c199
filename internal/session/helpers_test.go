package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/typrr/internal/chat"
)

type manualTimer struct {
	d    time.Duration
	f    func()
	done bool
}

// manualScheduler only fires timers when a test asks it to.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.done {
			return false
		}
		t.done = true
		return true
	}
}

// take removes the oldest pending timer of duration d without running it.
func (s *manualScheduler) take(t *testing.T, d time.Duration) func() {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tm := range s.timers {
		if !tm.done && tm.d == d {
			tm.done = true
			return tm.f
		}
	}
	require.FailNowf(t, "no pending timer", "duration %s", d)
	return nil
}

func (s *manualScheduler) fire(t *testing.T, d time.Duration) {
	t.Helper()
	s.take(t, d)()
}

func (s *manualScheduler) pending(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, tm := range s.timers {
		if !tm.done && tm.d == d {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 12, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordCall struct {
	Participant chat.Participant
	WPM         int
	Accuracy    int
	WordCount   int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordCall
	err   error
}

func (r *fakeRecorder) RecordResult(_ context.Context, p chat.Participant, wpm, accuracy, wordCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, recordCall{Participant: p, WPM: wpm, Accuracy: accuracy, WordCount: wordCount})
	return nil
}

func (r *fakeRecorder) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeRecorder) Calls() []recordCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordCall(nil), r.calls...)
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "observer channel closed")
		return s
	case <-time.After(within):
		require.FailNow(t, "timed out waiting for snapshot")
		return Snapshot{}
	}
}
