package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typrr/internal/store"
)

var leaderboardSort string

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top ten racers",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&leaderboardSort, "sort", string(store.SortBest), "wpm, avg or time")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	key, err := store.ParseSortKey(leaderboardSort)
	if err != nil {
		return err
	}
	_, log, st, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("close store", zap.Error(cerr))
		}
	}()

	entries, err := st.Leaderboard(cmd.Context(), key)
	if err != nil {
		return err
	}
	printLeaderboard(cmd.OutOrStdout(), entries)
	return nil
}

func printLeaderboard(w io.Writer, entries []store.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No races recorded yet.")
		return
	}
	width := len("Name")
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(e.Username))
	}
	fmt.Fprintf(w, "#   %s  %5s  %7s  %5s\n", runewidth.FillRight("Name", width), "Best", "Average", "Races")
	for i, e := range entries {
		fmt.Fprintf(w, "%-3d %s  %5d  %7.1f  %5d\n",
			i+1, runewidth.FillRight(e.Username, width), e.BestWPM, e.AverageWPM, e.TotalRaces)
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Print a racer's stats and recent races",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileCmd,
	}
}

func runProfileCmd(cmd *cobra.Command, args []string) error {
	_, log, st, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("close store", zap.Error(cerr))
		}
	}()

	p, err := st.Profile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	recent, err := st.RecentRaces(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), p, recent)
	return nil
}

func printProfile(w io.Writer, p store.Profile, recent []store.TypeStat) {
	fmt.Fprintf(w, "%s\n", p.Username)
	fmt.Fprintf(w, "  Races:    %d\n", p.TotalRaces)
	fmt.Fprintf(w, "  Best:     %d WPM\n", p.BestWPM)
	fmt.Fprintf(w, "  Average:  %.1f WPM\n", p.AverageWPM)
	fmt.Fprintf(w, "  Chars:    %d\n", p.TotalChars)
	if len(recent) == 0 {
		return
	}
	fmt.Fprintln(w, "Recent races:")
	for _, r := range recent {
		fmt.Fprintf(w, "  %s  %3d WPM  %3d%%  %d words\n",
			r.Timestamp.Format("2006-01-02 15:04"), r.WPM, r.Accuracy, r.WordCount)
	}
}
