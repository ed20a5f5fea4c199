package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/typrr/internal/chat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2024, 12, 1, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestRecordResult_Aggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := chat.Participant{ID: "u1", Name: "alice"}

	require.NoError(t, s.RecordResult(ctx, alice, 50, 100, 5))
	require.NoError(t, s.RecordResult(ctx, chat.Participant{ID: "u1", Name: "alice2"}, 70, 98, 10))

	p, err := s.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username, "display name follows the latest result")
	assert.Equal(t, 2, p.TotalRaces)
	assert.Equal(t, 70, p.BestWPM)
	assert.InDelta(t, 60.0, p.AverageWPM, 1e-9)
	assert.Equal(t, 75, p.TotalChars)
	require.NotNil(t, p.Latest)
	assert.Equal(t, 70, p.Latest.WPM)
	assert.Equal(t, 98, p.Latest.Accuracy)
}

func TestProfile_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Profile(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLeaderboard_Sorting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []struct {
		who chat.Participant
		wpm int
	}{
		{chat.Participant{ID: "a", Name: "ann"}, 100},
		{chat.Participant{ID: "a", Name: "ann"}, 20},
		{chat.Participant{ID: "b", Name: "ben"}, 80},
		{chat.Participant{ID: "b", Name: "ben"}, 70},
		{chat.Participant{ID: "c", Name: "cid"}, 65},
	}
	for _, r := range results {
		require.NoError(t, s.RecordResult(ctx, r.who, r.wpm, 100, 5))
	}

	cases := []struct {
		name string
		key  SortKey
		want []string
	}{
		{name: "best", key: SortBest, want: []string{"a", "b", "c"}},
		{name: "time uses best", key: SortTime, want: []string{"a", "b", "c"}},
		{name: "average", key: SortAverage, want: []string{"b", "c", "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := s.Leaderboard(ctx, tc.key)
			require.NoError(t, err)
			var got []string
			for _, e := range entries {
				got = append(got, e.UserID)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	entries, err := s.Leaderboard(ctx, SortAverage)
	require.NoError(t, err)
	assert.Equal(t, LeaderboardEntry{UserID: "b", Username: "ben", BestWPM: 80, AverageWPM: 75, TotalRaces: 2}, entries[0])
}

func TestLeaderboard_TopTen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		p := chat.Participant{ID: fmt.Sprintf("u%02d", i), Name: fmt.Sprintf("user%d", i)}
		require.NoError(t, s.RecordResult(ctx, p, 40+i, 100, 5))
	}

	entries, err := s.Leaderboard(ctx, SortBest)
	require.NoError(t, err)
	require.Len(t, entries, LeaderboardSize)
	assert.Equal(t, "u11", entries[0].UserID)
}

func TestRecentRaces_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := chat.Participant{ID: "u1", Name: "alice"}
	for i := 0; i < 12; i++ {
		require.NoError(t, s.RecordResult(ctx, p, 30+i, 100, 5))
	}

	races, err := s.RecentRaces(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, races, RecentRaceCount)
	assert.Equal(t, 41, races[0].WPM)
	assert.Equal(t, 32, races[len(races)-1].WPM)
}

func TestParseSortKey(t *testing.T) {
	cases := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{in: "", want: SortBest},
		{in: "AVG", want: SortAverage},
		{in: "time", want: SortTime},
		{in: "fastest", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseSortKey(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidSort)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/typrr"))
	assert.True(t, IsPostgres("postgresql://localhost/typrr"))
	assert.False(t, IsPostgres("file:typrr.db"))
}
