package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/library"
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>...",
	Short: "List playable tracks without playing them",
	Long:  `Scan files and directories and print the tracks 'tonearm play' would queue.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	result := library.NewScanner(nil).Scan(args...)
	tracks := result.Data

	if JSONOutput() {
		return printJSON(map[string]any{
			"title":  library.AlbumTitle(args, tracks),
			"tracks": tracks,
			"errors": lo.Map(result.Errors, func(err error, _ int) string { return err.Error() }),
		})
	}

	if len(tracks) == 0 {
		return result.Err()
	}

	table := NewTable("#", "TITLE", "ALBUM", "LENGTH")
	for _, t := range tracks {
		table.Row(fmt.Sprint(t.ID), TruncateString(t.Title, 48), TruncateString(t.Album, 32), FormatDuration(int(t.Duration)))
	}
	table.Flush()

	total := lo.SumBy(tracks, func(t *core.Track) float64 { return t.Duration })
	fmt.Printf("\n%s: %s tracks, %s\n",
		library.AlbumTitle(args, tracks),
		humanize.Comma(int64(len(tracks))),
		time.Duration(total*float64(time.Second)).Round(time.Second))

	if result.HasErrors() {
		fmt.Printf("\n%s\n", result.ErrorSummary())
	}
	return nil
}
