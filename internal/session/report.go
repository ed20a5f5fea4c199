package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/DoyleJ11/typrr/internal/engine"
	"github.com/DoyleJ11/typrr/internal/words"
)

const (
	RaceBegunHeader    = "The race has begun! Type the following words:"
	CurrentResults     = "🏁 Current Results:"
	FinalResults       = "🏁 Race finished! Final results:"
	NobodyFinished     = "Time's up! Nobody completed the race."
	RaceAborted        = "The race was cancelled because of an internal error."
	PracticeGoHeader   = "GO! Type the following words:"
	PracticeActiveText = "A practice session is already active! Wait for it to finish."
)

func codeBlock(s string) string {
	return "```" + s + "```"
}

// RaceCountdown is the announcement text while a race is announcing.
func RaceCountdown(seconds int) string {
	return fmt.Sprintf("@everyone Type race event starts in %d seconds!", seconds)
}

func RaceBegun(prompt string) string {
	return RaceBegunHeader + "\n" + codeBlock(prompt)
}

// RaceAlreadyActive reports the channel holding the race slot.
func RaceAlreadyActive(channel string) string {
	return fmt.Sprintf("There's already an active type race in #%s! Please wait for it to finish.", channel)
}

// RaceResults renders ranked winners under header. Names are padded to a
// common display width so the columns line up in a code block.
func RaceResults(header string, ranked []engine.Winner) string {
	if len(ranked) == 0 {
		return NobodyFinished
	}
	width := 0
	for _, w := range ranked {
		width = max(width, runewidth.StringWidth(displayName(w)))
	}
	var b strings.Builder
	b.WriteString(header)
	for i, w := range ranked {
		fmt.Fprintf(&b, "\n%d. %s %.1fs | WPM: %d",
			i+1,
			runewidth.FillRight(displayName(w)+":", width+1),
			w.ElapsedSeconds,
			w.WPM,
		)
	}
	return b.String()
}

func displayName(w engine.Winner) string {
	if w.Name != "" {
		return w.Name
	}
	return w.Participant
}

func PracticeCountdown(seconds int) string {
	return fmt.Sprintf("Race starts in %d seconds!\nGet ready to type:", seconds)
}

func PracticeGo(prompt string) string {
	return PracticeGoHeader + "\n" + codeBlock(prompt)
}

// PracticeSummary is posted when a practice run completes.
func PracticeSummary(w engine.Winner, wordCount int, prompt string, at time.Time) string {
	var b strings.Builder
	b.WriteString("📊 **Practice Complete!** Here's your summary:\n")
	fmt.Fprintf(&b, "Practice Summary for %s\n", displayName(w))
	fmt.Fprintf(&b, "Date: %s\n", at.Format(time.DateTime))
	b.WriteString("------------------------------------------\n\n")
	fmt.Fprintf(&b, "Words Typed: %d\n", wordCount)
	fmt.Fprintf(&b, "Time Taken: %.1f seconds\n", w.ElapsedSeconds)
	fmt.Fprintf(&b, "WPM (Words Per Minute): %d\n", w.WPM)
	fmt.Fprintf(&b, "Raw WPM: %d\n", w.RawWPM)
	fmt.Fprintf(&b, "Accuracy: %d%%\n\n", w.Accuracy)
	fmt.Fprintf(&b, "Text Prompt: %q\n", prompt)
	return b.String()
}

func PracticeTimeout(durationSec int, prompt string, at time.Time) string {
	var b strings.Builder
	b.WriteString("⏱️ **Time's up!** Practice session summary:\n")
	b.WriteString("Incomplete Practice Session\n")
	fmt.Fprintf(&b, "Date: %s\n", at.Format(time.DateOnly))
	b.WriteString("------------------------------------------\n\n")
	fmt.Fprintf(&b, "Session timed out after %d seconds\n", durationSec)
	fmt.Fprintf(&b, "Words to type: %q\n", prompt)
	return b.String()
}

func LanguageSet(lang words.Language) string {
	return fmt.Sprintf("Your language preference has been set to: %s", lang)
}

const LanguageHelp = "Available languages: EN (English), TR (Turkish), RU (Russian)"

// PracticeWelcome is the usage message posted into a new practice channel.
func PracticeWelcome(owner string) string {
	return "Welcome to your personal practice channel, " + owner + "! 🎯\n\n" +
		"**How to use this channel:**\n" +
		"1. Set your preferred language (optional):\n" +
		"   `language [EN|TR|RU]`\n" +
		"2. Type `start` followed by your preferences:\n" +
		"   `start {duration} {words} {autoDeleteMinutes}`\n\n" +
		"**Parameters:**\n" +
		"• duration: Seconds to finish (1-300, default: 60)\n" +
		"• words: Number of words (1-100, default: 5)\n" +
		"**Examples:**\n" +
		"• `language TR` - Switch to Turkish words\n" +
		"• `start 30 5` - 30 seconds to type 5 words\n" +
		"• `start 60 15` - 60 seconds to type 15 words\n\n" +
		"Your practice results won't be saved to the global leaderboard. Happy practicing! 🚀"
}
