// Package scoring computes typing speed and accuracy and applies the
// anti-automation thresholds. The thresholds are best-effort heuristics, not a
// security boundary.
package scoring

import (
	"errors"
	"math"
	"strings"
)

var ErrTooFast = errors.New("submission faster than humanly plausible")
var ErrImplausibleSpeed = errors.New("submission exceeds max wpm")

const (
	// MaxWPM is the net WPM ceiling above which a submission is discarded.
	MaxWPM = 200

	charsPerWord    = 5.0
	secondsPerWord  = 60.0 / 216.0
	reactionSeconds = 0.2
)

// Result is the score of a single submission.
type Result struct {
	WPM      int `json:"wpm"`
	RawWPM   int `json:"raw_wpm"`
	Accuracy int `json:"accuracy"`
}

// MinimumLegitimateSeconds is the floor on elapsed time for a prompt of
// wordCount words: 216 wpm plus reaction time.
func MinimumLegitimateSeconds(wordCount int) float64 {
	return float64(wordCount)*secondsPerWord + reactionSeconds
}

// Score compares text to prompt rune by rune. Both are trimmed first; the
// prompt's rune count is the denominator for accuracy and the basis for raw WPM.
func Score(prompt, text string, elapsedSeconds float64) Result {
	target := []rune(strings.TrimSpace(prompt))
	typed := []rune(strings.TrimSpace(text))
	if len(target) == 0 {
		return Result{}
	}

	matching := 0
	for i := 0; i < len(target) && i < len(typed); i++ {
		if target[i] == typed[i] {
			matching++
		}
	}
	accuracy := 100 * float64(matching) / float64(len(target))

	var gross float64
	if elapsedSeconds > 0 {
		gross = (float64(len(target)) / charsPerWord) / (elapsedSeconds / 60)
	}

	return Result{
		WPM:      int(math.Round(gross * accuracy / 100)),
		RawWPM:   int(math.Round(gross)),
		Accuracy: int(math.Round(accuracy)),
	}
}

// Check returns ErrTooFast or ErrImplausibleSpeed when a scored submission
// should be discarded.
func Check(prompt string, elapsedSeconds float64, r Result) error {
	if elapsedSeconds < MinimumLegitimateSeconds(len(strings.Fields(prompt))) {
		return ErrTooFast
	}
	if r.WPM > MaxWPM {
		return ErrImplausibleSpeed
	}
	return nil
}

// IsAcceptable reports whether Check passes.
func IsAcceptable(prompt string, elapsedSeconds float64, r Result) bool {
	return Check(prompt, elapsedSeconds, r) == nil
}
