package engine

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/DoyleJ11/typrr/internal/scoring"
)

var ErrAlreadyActive = errors.New("session already active")
var ErrNotAnnouncing = errors.New("session not announcing")
var ErrNotInProgress = errors.New("session not in progress")
var ErrDuplicateParticipant = errors.New("participant already credited")
var ErrPromptMismatch = errors.New("submission does not match prompt")
var ErrInvalidStart = errors.New("invalid start request")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Kind string

const (
	KindRace     Kind = "race"
	KindPractice Kind = "practice"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnnouncing Phase = "announcing"
	PhaseInProgress Phase = "in_progress"
	PhaseEnded      Phase = "ended"
)

type Winner struct {
	Participant    string  `json:"participant"`
	Name           string  `json:"name"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	scoring.Result
}

type State struct {
	Kind          Kind      `json:"kind"`
	Phase         Phase     `json:"phase"`
	Channel       string    `json:"channel,omitempty"`
	Prompt        string    `json:"prompt,omitempty"`
	WordCount     int       `json:"word_count,omitempty"`
	DurationSec   int       `json:"duration_sec,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	RaceStartedAt time.Time `json:"race_started_at"`
	EndedAt       time.Time `json:"ended_at"`
	// Winners is in acceptance order; see Ranked for reporting order.
	Winners   []Winner `json:"winners,omitempty"`
	Completed bool     `json:"completed,omitempty"`
	TimedOut  bool     `json:"timed_out,omitempty"`
}

// Active reports whether the session holds its slot (Announcing or InProgress).
func (s State) Active() bool {
	return s.Phase == PhaseAnnouncing || s.Phase == PhaseInProgress
}

type CommandType string

const (
	CmdStart   CommandType = "Start"
	CmdArm     CommandType = "Arm"
	CmdSubmit  CommandType = "Submit"
	CmdTimeout CommandType = "Timeout"
	CmdEnd     CommandType = "End"
)

/*
	CmdStart   -> EvtSessionStarted
	CmdArm     -> EvtRaceArmed
	CmdSubmit  -> EvtSubmissionAccepted (race)
	           -> EvtSubmissionAccepted -> EvtPracticeCompleted -> EvtSessionEnded (practice)
	CmdTimeout -> EvtSessionTimedOut -> EvtSessionEnded
	CmdEnd     -> EvtSessionEnded, or nothing when already ended
*/

type Command struct {
	Type        CommandType
	Channel     string
	Prompt      string
	DurationSec int
	Participant string
	Name        string
	Text        string
	At          time.Time
}

type EventType string

const (
	EvtSessionStarted     EventType = "SessionStarted"
	EvtRaceArmed          EventType = "RaceArmed"
	EvtSubmissionAccepted EventType = "SubmissionAccepted"
	EvtPracticeCompleted  EventType = "PracticeCompleted"
	EvtSessionTimedOut    EventType = "SessionTimedOut"
	EvtSessionEnded       EventType = "SessionEnded"
)

type Event struct {
	Type   EventType
	Winner Winner
}

// Apply validates cmd against s and returns the resulting events and state.
// On error the returned state is s unchanged.
func Apply(s State, cmd Command) ([]Event, State, error) {
	newState := s

	switch cmd.Type {
	case CmdStart:
		if s.Active() {
			return nil, s, ErrAlreadyActive
		}
		prompt := strings.TrimSpace(cmd.Prompt)
		if prompt == "" || cmd.DurationSec <= 0 {
			return nil, s, ErrInvalidStart
		}
		newState = State{
			Kind:        s.Kind,
			Phase:       PhaseAnnouncing,
			Channel:     cmd.Channel,
			Prompt:      prompt,
			WordCount:   len(strings.Fields(prompt)),
			DurationSec: cmd.DurationSec,
			StartedAt:   cmd.At,
		}
		return []Event{{Type: EvtSessionStarted}}, newState, nil

	case CmdArm:
		if s.Phase != PhaseAnnouncing {
			return nil, s, ErrNotAnnouncing
		}
		newState.Phase = PhaseInProgress
		newState.RaceStartedAt = cmd.At
		return []Event{{Type: EvtRaceArmed}}, newState, nil

	case CmdSubmit:
		if s.Phase != PhaseInProgress {
			return nil, s, ErrNotInProgress
		}
		elapsed := cmd.At.Sub(s.RaceStartedAt).Seconds()
		if elapsed > float64(s.DurationSec) {
			return nil, s, ErrNotInProgress
		}
		if HasWinner(s, cmd.Participant) {
			return nil, s, ErrDuplicateParticipant
		}
		if s.Kind == KindRace && elapsed < scoring.MinimumLegitimateSeconds(s.WordCount) {
			return nil, s, scoring.ErrTooFast
		}
		if strings.TrimSpace(cmd.Text) != s.Prompt {
			return nil, s, ErrPromptMismatch
		}

		result := scoring.Score(s.Prompt, cmd.Text, elapsed)
		if s.Kind == KindRace {
			if err := scoring.Check(s.Prompt, elapsed, result); err != nil {
				return nil, s, err
			}
		}

		w := Winner{Participant: cmd.Participant, Name: cmd.Name, ElapsedSeconds: elapsed, Result: result}
		newState.Winners = append(slices.Clip(s.Winners), w)
		events := []Event{{Type: EvtSubmissionAccepted, Winner: w}}

		// A practice run completes on its first exact match.
		if s.Kind == KindPractice {
			newState.Completed = true
			newState.Phase = PhaseEnded
			newState.EndedAt = cmd.At
			events = append(events,
				Event{Type: EvtPracticeCompleted, Winner: w},
				Event{Type: EvtSessionEnded},
			)
		}
		return events, newState, nil

	case CmdTimeout:
		if s.Phase != PhaseInProgress {
			return nil, s, ErrNotInProgress
		}
		newState.Phase = PhaseEnded
		newState.EndedAt = cmd.At
		newState.TimedOut = true
		return []Event{{Type: EvtSessionTimedOut}, {Type: EvtSessionEnded}}, newState, nil

	case CmdEnd:
		if !s.Active() {
			return nil, s, nil
		}
		newState.Phase = PhaseEnded
		newState.EndedAt = cmd.At
		return []Event{{Type: EvtSessionEnded}}, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func HasWinner(s State, participant string) bool {
	return slices.ContainsFunc(s.Winners, func(w Winner) bool {
		return w.Participant == participant
	})
}

// Ranked orders winners fastest first; ties keep acceptance order.
func Ranked(s State) []Winner {
	out := slices.Clone(s.Winners)
	slices.SortStableFunc(out, func(a, b Winner) int {
		switch {
		case a.ElapsedSeconds < b.ElapsedSeconds:
			return -1
		case a.ElapsedSeconds > b.ElapsedSeconds:
			return 1
		default:
			return 0
		}
	})
	return out
}
