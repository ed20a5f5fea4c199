package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/chat"
	"github.com/DoyleJ11/typrr/internal/engine"
	"github.com/DoyleJ11/typrr/internal/words"
)

// ErrRaceReplaced is returned by Finish when a later race has already taken
// the slot and the requested run's final state is gone.
var ErrRaceReplaced = errors.New("race replaced by a newer run")

// ErrNotCredited wraps a persistence failure: the submission was valid but
// the participant is not added to the winners.
var ErrNotCredited = errors.New("submission not credited")

// Recorder persists accepted race results.
type Recorder interface {
	RecordResult(ctx context.Context, p chat.Participant, wpm, accuracy, wordCount int) error
}

type raceStart struct {
	Channel     string
	Prompt      words.Prompt
	DurationSec int
	Reply       chan raceStartReply
}

type raceStartReply struct {
	Run uint64
	Err error
}

func (raceStart) isSessionMsg() {}

type raceArm struct{ Reply chan error }

func (raceArm) isSessionMsg() {}

type raceSubmit struct {
	Participant chat.Participant
	Text        string
	Reply       chan submitReply
}

func (raceSubmit) isSessionMsg() {}

// raceEnd ends Run, or whatever is current when Run is zero.
type raceEnd struct {
	Run   uint64
	Reply chan raceEndReply
}

type raceEndReply struct {
	State engine.State
	Err   error
}

func (raceEnd) isSessionMsg() {}

type submitReply struct {
	Winner engine.Winner
	Err    error
}

// Race is the process-wide competitive session. Construct one at startup and
// hand it to whatever needs it; Start is the only gate guarding the slot.
type Race struct {
	base
	recorder       Recorder
	persistTimeout time.Duration

	// run numbers successful starts; prev holds the final state of run-1.
	run  uint64
	prev engine.State
}

func NewRace(parent context.Context, recorder Recorder, persistTimeout time.Duration, opts Options) *Race {
	r := &Race{
		base:           newBase(parent, engine.KindRace, opts),
		recorder:       recorder,
		persistTimeout: persistTimeout,
	}
	r.log = r.log.Named("race")
	if r.persistTimeout <= 0 {
		r.persistTimeout = 5 * time.Second
	}
	go r.loop()
	return r
}

func (r *Race) loop() {
	defer r.shutdown()
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.join(msg, r.snapshot())

			case Leave:
				delete(r.observers, msg.ClientID)

			case raceStart:
				msg.Reply <- r.start(msg)

			case raceArm:
				msg.Reply <- r.arm()

			case raceSubmit:
				msg.Reply <- r.submit(msg)

			case raceEnd:
				msg.Reply <- r.end(msg.Run)

			case timerFired:
				if !r.current(msg.gen) {
					break
				}
				r.task = nil
				if _, err := r.apply(engine.Command{Type: engine.CmdTimeout}); err != nil {
					r.log.Debug("stale race timeout", zap.Error(err))
				}

			case GetState:
				msg.Reply <- View{Version: r.version, NumObservers: len(r.observers), State: r.state}

			case Shutdown:
				return
			}
		}
	}
}

func (r *Race) start(msg raceStart) raceStartReply {
	prev := r.state
	if _, err := r.apply(engine.Command{
		Type:        engine.CmdStart,
		Channel:     msg.Channel,
		Prompt:      msg.Prompt.String(),
		DurationSec: msg.DurationSec,
	}); err != nil {
		return raceStartReply{Err: err}
	}
	r.prev = prev
	r.run++
	return raceStartReply{Run: r.run}
}

func (r *Race) arm() error {
	if _, err := r.apply(engine.Command{Type: engine.CmdArm}); err != nil {
		return err
	}
	r.schedule(time.Duration(r.state.DurationSec)*time.Second, func(gen uint64) Msg {
		return timerFired{gen: gen}
	})
	return nil
}

// submit validates, persists, then commits. Persistence runs inside the actor
// so one participant can never be persisted or credited twice.
func (r *Race) submit(msg raceSubmit) submitReply {
	events, next, err := engine.Apply(r.state, engine.Command{
		Type:        engine.CmdSubmit,
		Participant: msg.Participant.ID,
		Name:        msg.Participant.Name,
		Text:        msg.Text,
		At:          r.now(),
	})
	if err != nil {
		r.log.Debug("submission rejected",
			zap.String("participant", msg.Participant.Name),
			zap.Error(err),
		)
		return submitReply{Err: err}
	}
	w := events[0].Winner

	if r.recorder != nil {
		ctx, cancel := context.WithTimeout(r.ctx, r.persistTimeout)
		err := r.recorder.RecordResult(ctx, msg.Participant, w.WPM, w.Accuracy, r.state.WordCount)
		cancel()
		if err != nil {
			r.log.Warn("failed to record result",
				zap.String("participant", msg.Participant.ID),
				zap.Error(err),
			)
			return submitReply{Err: fmt.Errorf("%w: %w", ErrNotCredited, err)}
		}
	}

	r.commit(next)
	r.log.Info("submission credited",
		zap.String("participant", msg.Participant.Name),
		zap.Float64("elapsed", w.ElapsedSeconds),
		zap.Int("wpm", w.WPM),
	)
	return submitReply{Winner: w}
}

func (r *Race) end(run uint64) raceEndReply {
	switch {
	case run == 0 || run == r.run:
	case run == r.run-1:
		return raceEndReply{State: r.prev}
	default:
		return raceEndReply{Err: ErrRaceReplaced}
	}
	r.cancelTask()
	if _, err := r.apply(engine.Command{Type: engine.CmdEnd}); err != nil {
		r.log.Warn("end race", zap.Error(err))
	}
	return raceEndReply{State: r.state}
}

// Start claims the global slot and returns the run number of the new race.
// It fails with engine.ErrAlreadyActive while a race is announcing or in
// progress, leaving that race untouched.
func (r *Race) Start(ctx context.Context, channel string, prompt words.Prompt, durationSec int) (uint64, error) {
	rep, err := request(ctx, &r.base, func(reply chan raceStartReply) Msg {
		return raceStart{Channel: channel, Prompt: prompt, DurationSec: durationSec, Reply: reply}
	})
	if err != nil {
		return 0, err
	}
	return rep.Run, rep.Err
}

// Arm opens the race: submissions are timed from now and the race ends after
// its duration.
func (r *Race) Arm(ctx context.Context) error {
	err, cerr := request(ctx, &r.base, func(reply chan error) Msg {
		return raceArm{Reply: reply}
	})
	if cerr != nil {
		return cerr
	}
	return err
}

// Submit evaluates one candidate. Any error means nothing was recorded.
func (r *Race) Submit(ctx context.Context, p chat.Participant, text string) (engine.Winner, error) {
	rep, err := request(ctx, &r.base, func(reply chan submitReply) Msg {
		return raceSubmit{Participant: p, Text: text, Reply: reply}
	})
	if err != nil {
		return engine.Winner{}, err
	}
	return rep.Winner, rep.Err
}

// End ends the current race and returns its final state. It is idempotent.
func (r *Race) End(ctx context.Context) (engine.State, error) {
	return r.Finish(ctx, 0)
}

// Finish ends run if it still holds the slot and returns its final state.
// A run that already ended and was followed by one newer start still reports
// its own final state; older runs fail with ErrRaceReplaced.
func (r *Race) Finish(ctx context.Context, run uint64) (engine.State, error) {
	rep, err := request(ctx, &r.base, func(reply chan raceEndReply) Msg {
		return raceEnd{Run: run, Reply: reply}
	})
	if err != nil {
		return engine.State{}, err
	}
	return rep.State, rep.Err
}

func (r *Race) ActiveGame(ctx context.Context) (engine.State, error) {
	v, err := request(ctx, &r.base, func(reply chan View) Msg {
		return GetState{Reply: reply}
	})
	return v.State, err
}

func (r *Race) IsActive(ctx context.Context) bool {
	s, err := r.ActiveGame(ctx)
	return err == nil && s.Active()
}
