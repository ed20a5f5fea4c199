// Package arena wires sessions to the chat platform: it runs race countdowns
// and submission windows, provisions practice channels and serves stats.
package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/chat"
	"github.com/DoyleJ11/typrr/internal/engine"
	"github.com/DoyleJ11/typrr/internal/hub"
	"github.com/DoyleJ11/typrr/internal/session"
	"github.com/DoyleJ11/typrr/internal/store"
	"github.com/DoyleJ11/typrr/internal/words"
)

const PracticePrefix = "practice-"

var ErrInvalidRequest = errors.New("invalid request")
var ErrPracticeExists = errors.New("practice channel already exists")
var ErrNotPractice = errors.New("not a practice channel")

var validate = validator.New(validator.WithRequiredStructEnabled())

// RaceRequest is what a moderator supplies to start a race.
type RaceRequest struct {
	Channel     string `json:"channel" validate:"required"`
	DelaySec    int    `json:"delay" validate:"min=5,max=60"`
	Words       int    `json:"words" validate:"min=1,max=100"`
	DurationSec int    `json:"duration" validate:"min=1,max=300"`
}

// Stats is the read side of the result store.
type Stats interface {
	Leaderboard(ctx context.Context, key store.SortKey) ([]store.LeaderboardEntry, error)
	Profile(ctx context.Context, userID string) (store.Profile, error)
	RecentRaces(ctx context.Context, userID string) ([]store.TypeStat, error)
}

type Deps struct {
	Platform chat.Platform
	Race     *session.Race
	Prompts  *words.Generator
	Stats    Stats
	Log      *zap.Logger
	// Sleep paces the race countdown; nil sleeps on real timers.
	Sleep func(ctx context.Context, d time.Duration) error
	// Session options for practice actors.
	Session session.Options
	// RaceWords and RaceDuration fill requests that leave them zero.
	RaceWords    int
	RaceDuration int
}

type Arena struct {
	ctx      context.Context
	platform chat.Platform
	race     *session.Race
	prompts  *words.Generator
	stats    Stats
	log      *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
	opts     session.Options
	practice session.PracticeSettings
	hub      *hub.Hub

	raceWords    int
	raceDuration int
}

func New(ctx context.Context, deps Deps, practice session.PracticeSettings) *Arena {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Sleep == nil {
		deps.Sleep = sleep
	}
	a := &Arena{
		ctx:      ctx,
		platform: deps.Platform,
		race:     deps.Race,
		prompts:  deps.Prompts,
		stats:    deps.Stats,
		log:      deps.Log.Named("arena"),
		sleep:    deps.Sleep,
		opts:     deps.Session,
		practice: practice,

		raceWords:    deps.RaceWords,
		raceDuration: deps.RaceDuration,
	}
	if a.opts.Log == nil {
		a.opts.Log = deps.Log
	}
	a.hub = hub.NewHub(ctx, a.newPractice, deps.Log)
	return a
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Arena) Hub() *hub.Hub { return a.hub }

// Close stops every practice session.
func (a *Arena) Close() { a.hub.Shutdown() }

// ---- races ----

// StartRace claims the race slot, posts the countdown and runs the race in the
// background. While another race is active it reports that race's channel
// and returns an error wrapping engine.ErrAlreadyActive.
func (a *Arena) StartRace(ctx context.Context, req RaceRequest) error {
	if req.Words == 0 {
		req.Words = a.raceWords
	}
	if req.DurationSec == 0 {
		req.DurationSec = a.raceDuration
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	prompt, err := a.prompts.Generate(req.Words, words.RaceCategories...)
	if err != nil {
		return err
	}

	run, err := a.race.Start(ctx, req.Channel, prompt, req.DurationSec)
	if err != nil {
		if !errors.Is(err, engine.ErrAlreadyActive) {
			return err
		}
		active, serr := a.race.ActiveGame(ctx)
		if serr != nil {
			return err
		}
		if _, aerr := a.platform.Announce(ctx, req.Channel, session.RaceAlreadyActive(active.Channel)); aerr != nil {
			a.log.Warn("announce already active", zap.Error(aerr))
		}
		return fmt.Errorf("%w: race running in %s", err, active.Channel)
	}

	ref, err := a.platform.Announce(ctx, req.Channel, session.RaceCountdown(req.DelaySec))
	if err != nil {
		_, _ = a.race.Finish(ctx, run)
		return fmt.Errorf("announce race: %w", err)
	}

	log := a.log.With(zap.String("channel", req.Channel))
	log.Info("race announced",
		zap.Int("delay", req.DelaySec),
		zap.Int("words", req.Words),
		zap.Int("duration", req.DurationSec),
	)
	go a.runRace(log, run, ref, req, prompt)
	return nil
}

// countdownStep is the wait before the next countdown edit: align to a
// multiple of five, then five at a time, then one second at a time.
func countdownStep(remaining int) int {
	if remaining > 5 {
		if r := remaining % 5; r != 0 {
			return r
		}
		return 5
	}
	return 1
}

func (a *Arena) runRace(log *zap.Logger, run uint64, ref chat.MessageRef, req RaceRequest, prompt words.Prompt) {
	ctx := a.ctx
	abort := func(err error) {
		log.Error("race aborted", zap.Error(err))
		_, _ = a.race.Finish(context.WithoutCancel(ctx), run)
		if _, aerr := a.platform.Announce(context.WithoutCancel(ctx), req.Channel, session.RaceAborted); aerr != nil {
			log.Warn("announce abort", zap.Error(aerr))
		}
	}

	for remaining := req.DelaySec; remaining > 0; {
		step := countdownStep(remaining)
		if err := a.sleep(ctx, time.Duration(step)*time.Second); err != nil {
			abort(err)
			return
		}
		remaining -= step
		if remaining > 0 {
			a.edit(log, ref, session.RaceCountdown(remaining))
		}
	}
	a.edit(log, ref, session.RaceBegun(prompt.String()))

	if err := a.race.Arm(ctx); err != nil {
		abort(err)
		return
	}
	window, err := a.platform.OpenWindow(ctx, req.Channel, time.Duration(req.DurationSec)*time.Second)
	if err != nil {
		abort(err)
		return
	}
	defer window.Close()

	var results chat.MessageRef
	for m := range window.C() {
		if err := a.platform.DeleteMessage(ctx, m.Ref); err != nil {
			log.Debug("delete race message", zap.Error(err))
		}
		if strings.TrimSpace(m.Text) != prompt.String() {
			continue
		}
		if _, err := a.race.Submit(ctx, m.Author, m.Text); err != nil {
			log.Debug("race submission rejected", zap.String("participant", m.Author.ID), zap.Error(err))
			continue
		}
		state, err := a.race.ActiveGame(ctx)
		if err != nil {
			abort(err)
			return
		}
		text := session.RaceResults(session.CurrentResults, engine.Ranked(state))
		if results.ID == "" {
			if results, err = a.platform.Announce(ctx, req.Channel, text); err != nil {
				log.Warn("announce results", zap.Error(err))
			}
		} else {
			a.edit(log, results, text)
		}
	}

	state, err := a.race.Finish(ctx, run)
	if err != nil {
		log.Warn("end race", zap.Error(err))
		return
	}
	ranked := engine.Ranked(state)
	final := session.RaceResults(session.FinalResults, ranked)
	switch {
	case len(ranked) > 0 && results.ID != "":
		a.edit(log, results, final)
	default:
		if _, err := a.platform.Announce(ctx, req.Channel, final); err != nil {
			log.Warn("announce final results", zap.Error(err))
		}
	}
	log.Info("race finished", zap.Int("winners", len(ranked)))
}

func (a *Arena) edit(log *zap.Logger, ref chat.MessageRef, text string) {
	if err := a.platform.UpdateAnnouncement(a.ctx, ref, text); err != nil {
		log.Warn("update announcement", zap.Error(err))
	}
}

// ---- practice ----

func (a *Arena) newPractice(ctx context.Context, channel string) (*session.Practice, error) {
	deps := session.PracticeDeps{
		Announcer:     a.platform,
		Deleter:       a.platform,
		Prompts:       a.prompts,
		DeleteChannel: a.ClosePractice,
	}
	return session.NewPractice(ctx, channel, deps, a.practice, a.opts), nil
}

// attach registers the channel's session and starts feeding it messages.
func (a *Arena) attach(ctx context.Context, channel string) (*session.Practice, error) {
	s, created, err := a.hub.GetOrCreate(ctx, channel)
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.Listen(a.ctx, a.platform); err != nil {
			_, _ = a.hub.Remove(ctx, channel)
			return nil, fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	return s, nil
}

// PracticeChannelName is the channel owned by a participant.
func PracticeChannelName(owner chat.Participant) string {
	return PracticePrefix + strings.ToLower(owner.Name)
}

// OpenPractice creates owner's practice channel and its session.
func (a *Arena) OpenPractice(ctx context.Context, owner chat.Participant) (chat.ChannelInfo, error) {
	name := PracticeChannelName(owner)
	existing, err := a.platform.ListChannels(ctx, name)
	if err != nil {
		return chat.ChannelInfo{}, err
	}
	for _, c := range existing {
		if c.Name == name {
			return c, fmt.Errorf("%w: %s", ErrPracticeExists, c.ID)
		}
	}

	info, err := a.platform.CreateChannel(ctx, name, owner)
	if err != nil {
		return chat.ChannelInfo{}, fmt.Errorf("create practice channel: %w", err)
	}
	if _, err := a.platform.Announce(ctx, info.ID, session.PracticeWelcome(owner.Name)); err != nil {
		a.log.Warn("announce welcome", zap.Error(err))
	}
	if _, err := a.attach(ctx, info.ID); err != nil {
		return chat.ChannelInfo{}, err
	}
	a.log.Info("practice channel opened", zap.String("channel", info.ID), zap.String("owner", owner.ID))
	return info, nil
}

// ClosePractice deletes the channel and forgets its session. Channels without
// a practice session are left alone and reported with ErrNotPractice.
func (a *Arena) ClosePractice(ctx context.Context, channel string) error {
	removed, err := a.hub.Remove(ctx, channel)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s: %w", channel, ErrNotPractice)
	}
	if err := a.platform.DeleteChannel(ctx, channel); err != nil {
		return fmt.Errorf("delete practice channel: %w", err)
	}
	a.log.Info("practice channel closed", zap.String("channel", channel))
	return nil
}

// Rehydrate registers a session for every existing practice channel.
func (a *Arena) Rehydrate(ctx context.Context) (int, error) {
	channels, err := a.platform.ListChannels(ctx, PracticePrefix)
	if err != nil {
		return 0, err
	}
	for _, c := range channels {
		if _, err := a.attach(ctx, c.ID); err != nil {
			return 0, err
		}
	}
	a.log.Info("practice channels rehydrated", zap.Int("count", len(channels)))
	return len(channels), nil
}

// ---- stats ----

func (a *Arena) Leaderboard(ctx context.Context, sort string) ([]store.LeaderboardEntry, error) {
	key, err := store.ParseSortKey(sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return a.stats.Leaderboard(ctx, key)
}

// Profile returns the user's stats and recent races.
func (a *Arena) Profile(ctx context.Context, userID string) (store.Profile, []store.TypeStat, error) {
	p, err := a.stats.Profile(ctx, userID)
	if err != nil {
		return store.Profile{}, nil, err
	}
	recent, err := a.stats.RecentRaces(ctx, userID)
	if err != nil {
		return store.Profile{}, nil, err
	}
	return p, recent, nil
}
