package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/typrr/internal/store"
)

func TestPrintLeaderboard_AlignsWideNames(t *testing.T) {
	var buf bytes.Buffer
	printLeaderboard(&buf, []store.LeaderboardEntry{
		{Username: "アリス", BestWPM: 120, AverageWPM: 98.5, TotalRaces: 12},
		{Username: "bob", BestWPM: 80, AverageWPM: 70, TotalRaces: 3},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#   Name     Best  Average  Races", lines[0])
	assert.Equal(t, "1   アリス    120     98.5     12", lines[1])
	assert.Equal(t, "2   bob        80     70.0      3", lines[2])
}

func TestPrintLeaderboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	printLeaderboard(&buf, nil)
	assert.Equal(t, "No races recorded yet.\n", buf.String())
}

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := store.Profile{User: store.User{Username: "alice", TotalRaces: 2, BestWPM: 90, AverageWPM: 85, TotalChars: 50}}
	recent := []store.TypeStat{{WPM: 90, Accuracy: 100, WordCount: 5, Timestamp: time.Date(2024, 12, 1, 20, 5, 0, 0, time.UTC)}}
	printProfile(&buf, p, recent)

	out := buf.String()
	assert.Contains(t, out, "Average:  85.0 WPM")
	assert.Contains(t, out, "2024-12-01 20:05   90 WPM  100%  5 words")
}
