package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/chat"
	"github.com/DoyleJ11/typrr/internal/engine"
	"github.com/DoyleJ11/typrr/internal/words"
)

// PromptSource draws practice prompts.
type PromptSource interface {
	ForLanguage(count int, lang words.Language, categories ...words.Category) (words.Prompt, error)
}

// PracticeDeps are the collaborators of a practice session.
type PracticeDeps struct {
	Announcer chat.Announcer
	Deleter   chat.MessageDeleter
	Prompts   PromptSource
	// DeleteChannel is called when a run asked for its channel to be removed.
	DeleteChannel func(ctx context.Context, channel string) error
}

type PracticeSettings struct {
	DefaultDuration int
	DefaultWords    int
	MaxDuration     int
	MaxWords        int
	// MaxAutoDelete caps the auto-delete delay, in minutes.
	MaxAutoDelete int
	Countdown     int
	ReplyTTL      time.Duration
}

func DefaultPracticeSettings() PracticeSettings {
	return PracticeSettings{
		DefaultDuration: 60,
		DefaultWords:    5,
		MaxDuration:     300,
		MaxWords:        100,
		MaxAutoDelete:   24 * 60,
		Countdown:       3,
		ReplyTTL:        2 * time.Second,
	}
}

type practiceStart struct {
	Prompt        words.Prompt
	DurationSec   int
	AutoDeleteMin int
	Reply         chan error
}

func (practiceStart) isSessionMsg() {}

type practiceSubmit struct {
	Participant chat.Participant
	Text        string
	Reply       chan submitReply
}

func (practiceSubmit) isSessionMsg() {}

type practiceDeliver struct{ Message chat.Message }

func (practiceDeliver) isSessionMsg() {}

type practiceLanguage struct {
	Lang  words.Language
	Reply chan struct{}
}

func (practiceLanguage) isSessionMsg() {}

type practiceEnd struct{ Reply chan struct{} }

func (practiceEnd) isSessionMsg() {}

type countdownTick struct {
	gen       uint64
	remaining int
}

func (countdownTick) isSessionMsg() {}

// Practice is a per-channel session driven by the messages posted in its
// channel.
type Practice struct {
	base
	channel  string
	deps     PracticeDeps
	settings PracticeSettings

	tracked      []chat.MessageRef
	countdownRef chat.MessageRef
	stopDelete   func() bool
}

func NewPractice(parent context.Context, channel string, deps PracticeDeps, settings PracticeSettings, opts Options) *Practice {
	p := &Practice{
		base:     newBase(parent, engine.KindPractice, opts),
		channel:  channel,
		deps:     deps,
		settings: settings,
	}
	p.lang = words.LangEN
	p.log = p.log.Named("practice").With(zap.String("channel", channel))
	go p.loop()
	return p
}

func (p *Practice) Channel() string { return p.channel }

func (p *Practice) loop() {
	defer func() {
		if p.stopDelete != nil {
			p.stopDelete()
		}
		p.shutdown()
	}()
	for {
		select {
		case <-p.ctx.Done():
			return

		case m := <-p.inbox:
			switch msg := m.(type) {
			case Join:
				p.join(msg, p.snapshot())

			case Leave:
				delete(p.observers, msg.ClientID)

			case practiceStart:
				msg.Reply <- p.start(msg.Prompt, msg.DurationSec, msg.AutoDeleteMin)

			case practiceSubmit:
				msg.Reply <- p.submit(msg.Participant, msg.Text)

			case practiceDeliver:
				p.deliver(msg.Message)

			case practiceLanguage:
				p.lang = msg.Lang
				msg.Reply <- struct{}{}

			case practiceEnd:
				p.cancelTask()
				if _, err := p.apply(engine.Command{Type: engine.CmdEnd}); err != nil {
					p.log.Warn("end practice", zap.Error(err))
				}
				p.cleanup()
				p.countdownRef = chat.MessageRef{}
				msg.Reply <- struct{}{}

			case countdownTick:
				if !p.current(msg.gen) {
					break
				}
				p.tick(msg.remaining)

			case timerFired:
				if !p.current(msg.gen) {
					break
				}
				p.task = nil
				if _, err := p.apply(engine.Command{Type: engine.CmdTimeout}); err != nil {
					break
				}
				p.finish()

			case GetState:
				msg.Reply <- View{
					Version:      p.version,
					NumObservers: len(p.observers),
					State:        p.state,
					Language:     p.lang,
					Tracked:      len(p.tracked),
				}

			case Shutdown:
				return
			}
		}
	}
}

func (p *Practice) start(prompt words.Prompt, durationSec, autoDeleteMin int) error {
	if _, err := p.apply(engine.Command{
		Type:        engine.CmdStart,
		Channel:     p.channel,
		Prompt:      prompt.String(),
		DurationSec: durationSec,
	}); err != nil {
		return err
	}
	p.tracked = p.tracked[:0]
	if autoDeleteMin = min(autoDeleteMin, p.settings.MaxAutoDelete); autoDeleteMin > 0 {
		p.scheduleChannelDelete(time.Duration(autoDeleteMin) * time.Minute)
	}

	if p.settings.Countdown <= 0 {
		p.countdownRef = chat.MessageRef{}
		p.tick(0)
		return nil
	}
	ref, err := p.deps.Announcer.Announce(p.ctx, p.channel, PracticeCountdown(p.settings.Countdown))
	if err != nil {
		p.log.Warn("announce countdown", zap.Error(err))
	} else {
		p.track(ref)
	}
	p.countdownRef = ref
	p.scheduleTick(p.settings.Countdown - 1)
	return nil
}

func (p *Practice) scheduleTick(remaining int) {
	p.schedule(time.Second, func(gen uint64) Msg {
		return countdownTick{gen: gen, remaining: remaining}
	})
}

// tick advances the countdown; at zero the prompt is shown and the run is armed.
func (p *Practice) tick(remaining int) {
	p.task = nil
	if remaining > 0 {
		p.show(PracticeCountdown(remaining))
		p.scheduleTick(remaining - 1)
		return
	}
	p.show(PracticeGo(p.state.Prompt))
	if _, err := p.apply(engine.Command{Type: engine.CmdArm}); err != nil {
		p.log.Error("arm practice", zap.Error(err))
		return
	}
	p.schedule(time.Duration(p.state.DurationSec)*time.Second, func(gen uint64) Msg {
		return timerFired{gen: gen}
	})
}

// show edits the countdown message, posting a new one if there is none.
func (p *Practice) show(text string) {
	if p.countdownRef.ID != "" {
		if err := p.deps.Announcer.UpdateAnnouncement(p.ctx, p.countdownRef, text); err != nil {
			p.log.Warn("update countdown", zap.Error(err))
		}
		return
	}
	ref, err := p.deps.Announcer.Announce(p.ctx, p.channel, text)
	if err != nil {
		p.log.Warn("announce", zap.Error(err))
		return
	}
	p.countdownRef = ref
	p.track(ref)
}

func (p *Practice) scheduleChannelDelete(d time.Duration) {
	if p.deps.DeleteChannel == nil {
		return
	}
	if p.stopDelete != nil {
		p.stopDelete()
	}
	ctx, log, channel := p.ctx, p.log, p.channel
	p.stopDelete = p.sched.AfterFunc(d, func() {
		if err := p.deps.DeleteChannel(context.WithoutCancel(ctx), channel); err != nil {
			log.Warn("auto delete channel", zap.Error(err))
		}
	})
}

func (p *Practice) submit(who chat.Participant, text string) submitReply {
	events, err := p.apply(engine.Command{
		Type:        engine.CmdSubmit,
		Participant: who.ID,
		Name:        who.Name,
		Text:        text,
	})
	if err != nil {
		return submitReply{Err: err}
	}
	var w engine.Winner
	for _, e := range events {
		if e.Type == engine.EvtPracticeCompleted {
			w = e.Winner
		}
	}
	p.finish()
	return submitReply{Winner: w}
}

// finish runs after the run reached Ended: it cleans up the channel and posts
// the summary.
func (p *Practice) finish() {
	p.cancelTask()
	p.cleanup()
	p.countdownRef = chat.MessageRef{}

	text := PracticeTimeout(p.state.DurationSec, p.state.Prompt, p.now())
	if w, ok := engine.PracticeResult(p.state); ok {
		text = PracticeSummary(w, p.state.WordCount, p.state.Prompt, p.now())
	}
	if _, err := p.deps.Announcer.Announce(p.ctx, p.channel, text); err != nil {
		p.log.Warn("announce practice summary", zap.Error(err))
	}
	p.log.Info("practice finished",
		zap.Bool("completed", p.state.Completed),
		zap.Bool("timed_out", p.state.TimedOut),
	)
}

func (p *Practice) track(ref chat.MessageRef) {
	if ref.ID == "" {
		return
	}
	p.tracked = append(p.tracked, ref)
}

// cleanup deletes every tracked message. Failures are logged once and
// otherwise ignored.
func (p *Practice) cleanup() {
	var errs error
	for _, ref := range p.tracked {
		errs = multierr.Append(errs, p.deps.Deleter.DeleteMessage(p.ctx, ref))
	}
	if errs != nil {
		p.log.Debug("cleanup practice messages",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Error(errs),
		)
	}
	p.tracked = nil
}

// deliver handles one message observed in the channel.
func (p *Practice) deliver(m chat.Message) {
	args := strings.Fields(strings.ToLower(m.Text))

	if p.state.Active() {
		p.track(m.Ref)
		if len(args) > 0 && args[0] == "start" {
			ref, err := p.deps.Announcer.Announce(p.ctx, p.channel, PracticeActiveText)
			if err != nil {
				p.log.Warn("announce already active", zap.Error(err))
				return
			}
			p.track(ref)
			return
		}
		if p.state.Phase != engine.PhaseInProgress {
			return
		}
		rep := p.submit(m.Author, m.Text)
		if rep.Err != nil && !errors.Is(rep.Err, engine.ErrPromptMismatch) {
			p.log.Debug("practice submission rejected", zap.Error(rep.Err))
		}
		return
	}

	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "start":
		p.startFromCommand(m, args[1:])
	case "language", "lang":
		p.languageCommand(m, args[1:])
	}
}

func (p *Practice) startFromCommand(m chat.Message, args []string) {
	duration := min(argOr(args, 0, p.settings.DefaultDuration), p.settings.MaxDuration)
	count := min(argOr(args, 1, p.settings.DefaultWords), p.settings.MaxWords)
	autoDelete := argOr(args, 2, 0)

	cats := words.PracticeCategories
	prompt, err := p.deps.Prompts.ForLanguage(count, p.lang, cats...)
	if err != nil {
		p.log.Debug("practice prompt", zap.Error(err))
		if _, aerr := p.deps.Announcer.Announce(p.ctx, p.channel, "Cannot start: "+err.Error()); aerr != nil {
			p.log.Warn("announce prompt error", zap.Error(aerr))
		}
		return
	}
	if err := p.start(prompt, duration, autoDelete); err != nil {
		p.log.Warn("start practice", zap.Error(err))
		return
	}
	p.tracked = append([]chat.MessageRef{m.Ref}, p.tracked...)
}

func (p *Practice) languageCommand(m chat.Message, args []string) {
	text := LanguageHelp
	if len(args) > 0 {
		if lang, ok := words.ParseLanguage(args[0]); ok {
			p.lang = lang
			text = LanguageSet(lang)
			p.log.Debug("language set", zap.String("language", string(lang)))
		}
	}
	ref, err := p.deps.Announcer.Announce(p.ctx, p.channel, text)
	if err != nil {
		p.log.Warn("announce language reply", zap.Error(err))
	}
	refs := []chat.MessageRef{m.Ref}
	if ref.ID != "" {
		refs = append(refs, ref)
	}
	ctx, deleter := context.WithoutCancel(p.ctx), p.deps.Deleter
	p.sched.AfterFunc(p.settings.ReplyTTL, func() {
		for _, r := range refs {
			_ = deleter.DeleteMessage(ctx, r)
		}
	})
}

// argOr reads a positive integer argument; anything else yields def.
func argOr(args []string, i, def int) int {
	if i >= len(args) {
		return def
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Start begins a run with the given prompt. autoDeleteMin > 0 also schedules
// the channel for deletion, independent of the run.
func (p *Practice) Start(ctx context.Context, prompt words.Prompt, durationSec, autoDeleteMin int) error {
	err, cerr := request(ctx, &p.base, func(reply chan error) Msg {
		return practiceStart{Prompt: prompt, DurationSec: durationSec, AutoDeleteMin: autoDeleteMin, Reply: reply}
	})
	if cerr != nil {
		return cerr
	}
	return err
}

// Submit completes the run when text matches the prompt.
func (p *Practice) Submit(ctx context.Context, who chat.Participant, text string) (engine.Winner, error) {
	rep, err := request(ctx, &p.base, func(reply chan submitReply) Msg {
		return practiceSubmit{Participant: who, Text: text, Reply: reply}
	})
	if err != nil {
		return engine.Winner{}, err
	}
	return rep.Winner, rep.Err
}

// Deliver hands a channel message to the session without waiting.
func (p *Practice) Deliver(ctx context.Context, m chat.Message) error {
	return p.send(ctx, practiceDeliver{Message: m})
}

// Listen forwards every message of an untimed window until it closes.
func (p *Practice) Listen(ctx context.Context, c chat.Collector) error {
	w, err := c.OpenWindow(ctx, p.channel, 0)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-p.done:
				return
			case m, ok := <-w.C():
				if !ok {
					return
				}
				if err := p.Deliver(ctx, m); err != nil {
					return
				}
			}
		}
	}()
	return nil
}

func (p *Practice) SetLanguage(ctx context.Context, lang words.Language) error {
	_, err := request(ctx, &p.base, func(reply chan struct{}) Msg {
		return practiceLanguage{Lang: lang, Reply: reply}
	})
	return err
}

func (p *Practice) Language(ctx context.Context) (words.Language, error) {
	v, err := p.State(ctx)
	return v.Language, err
}

// End stops the current run without a summary. It is idempotent.
func (p *Practice) End(ctx context.Context) error {
	_, err := request(ctx, &p.base, func(reply chan struct{}) Msg {
		return practiceEnd{Reply: reply}
	})
	return err
}

func (p *Practice) State(ctx context.Context) (View, error) {
	return request(ctx, &p.base, func(reply chan View) Msg {
		return GetState{Reply: reply}
	})
}
