package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/tonearm/internal/core"
	toneerrors "github.com/tessro/tonearm/internal/errors"
	"github.com/tessro/tonearm/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Long: `List listens recorded by 'tonearm play', newest first.

A track is recorded once per play after the commit threshold
(playback.commit_threshold) of it has elapsed.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

type historyJSON struct {
	ID       string      `json:"id"`
	PlayedAt time.Time   `json:"played_at"`
	Track    *core.Track `json:"track"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		return toneerrors.WithSuggestion(toneerrors.ErrHistoryUnavailable,
			"Enable it with 'tonearm config set history.enabled true'")
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	entries, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	if JSONOutput() {
		out := make([]historyJSON, len(entries))
		for i, e := range entries {
			out[i] = historyJSON{ID: e.ID, PlayedAt: e.PlayedAt, Track: e.Track}
		}
		return printJSON(out)
	}

	if len(entries) == 0 {
		fmt.Println("No listens recorded yet.")
		return nil
	}

	table := NewTable("PLAYED", "TITLE", "ARTIST", "ALBUM", "LENGTH")
	for _, e := range entries {
		t := e.Track
		table.Row(
			humanize.Time(e.PlayedAt),
			TruncateString(t.Title, 40),
			TruncateString(t.Artist, 24),
			TruncateString(t.Album, 24),
			FormatDuration(int(t.Duration)),
		)
	}
	table.Flush()

	if Verbose() {
		total, err := store.Count(ctx)
		if err == nil {
			fmt.Printf("\n%s listens in %s\n", humanize.Comma(int64(total)), store.Path())
		}
	}
	return nil
}
