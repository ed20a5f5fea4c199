package hub

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/DoyleJ11/typrr/internal/chat/chattest"
	"github.com/DoyleJ11/typrr/internal/session"
	"github.com/DoyleJ11/typrr/internal/words"
)

func testFactory(t *testing.T) (Factory, *int) {
	t.Helper()
	platform := chattest.New()
	built := 0
	return func(ctx context.Context, channel string) (*session.Practice, error) {
		built++
		deps := session.PracticeDeps{
			Announcer: platform,
			Deleter:   platform,
			Prompts:   words.NewSeeded(words.DefaultPools(), 1),
		}
		return session.NewPractice(ctx, channel, deps, session.DefaultPracticeSettings(), session.Options{}), nil
	}, &built
}

func TestHub_GetOrCreate_SamePointer(t *testing.T) {
	ctx := context.Background()
	factory, built := testFactory(t)
	h := NewHub(ctx, factory, nil)
	defer h.Shutdown()

	s1, created, err := h.GetOrCreate(ctx, "practice-alice")
	if err != nil || !created {
		t.Fatalf("first GetOrCreate: created=%v err=%v", created, err)
	}
	s2, created, err := h.GetOrCreate(ctx, "practice-alice")
	if err != nil || created {
		t.Fatalf("second GetOrCreate: created=%v err=%v", created, err)
	}
	s3, err := h.Get(ctx, "practice-alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if s1 == nil || s1 != s2 || s2 != s3 {
		t.Fatalf("expected same session pointer")
	}
	if *built != 1 {
		t.Fatalf("factory called %d times, want 1", *built)
	}
}

func TestHub_Get_Missing(t *testing.T) {
	ctx := context.Background()
	factory, _ := testFactory(t)
	h := NewHub(ctx, factory, nil)
	defer h.Shutdown()

	s, err := h.Get(ctx, "nope")
	if err != nil || s != nil {
		t.Fatalf("want nil session, got %v err=%v", s, err)
	}
}

func TestHub_Remove_StopsSession(t *testing.T) {
	ctx := context.Background()
	factory, _ := testFactory(t)
	h := NewHub(ctx, factory, nil)
	defer h.Shutdown()

	s, _, _ := h.GetOrCreate(ctx, "practice-alice")
	_, _, _ = h.GetOrCreate(ctx, "practice-bob")

	ok, err := h.Remove(ctx, "practice-alice")
	if err != nil || !ok {
		t.Fatalf("Remove: ok=%v err=%v", ok, err)
	}
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatalf("removed session still running")
	}

	ok, _ = h.Remove(ctx, "practice-alice")
	if ok {
		t.Fatalf("second Remove should report false")
	}

	channels, _ := h.Channels(ctx)
	if !slices.Equal(channels, []string{"practice-bob"}) {
		t.Fatalf("unexpected channels %v", channels)
	}
}

func TestHub_FactoryError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	h := NewHub(ctx, func(context.Context, string) (*session.Practice, error) { return nil, boom }, nil)
	defer h.Shutdown()

	_, _, err := h.GetOrCreate(ctx, "x")
	if !errors.Is(err, boom) {
		t.Fatalf("want factory error, got %v", err)
	}
	if s, _ := h.Get(ctx, "x"); s != nil {
		t.Fatalf("failed creation must not register a session")
	}
}

func TestHub_Shutdown_StopsAll(t *testing.T) {
	ctx := context.Background()
	factory, _ := testFactory(t)
	h := NewHub(ctx, factory, nil)

	a, _, _ := h.GetOrCreate(ctx, "a")
	b, _, _ := h.GetOrCreate(ctx, "b")
	h.Shutdown()

	for _, s := range []*session.Practice{a, b} {
		select {
		case <-s.Done():
		case <-time.After(time.Second):
			t.Fatalf("session %s still running after shutdown", s.Channel())
		}
	}
	if _, err := h.Get(ctx, "a"); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("want ErrHubClosed, got %v", err)
	}
}
