package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/state"
	"github.com/tessro/tonearm/internal/tui/styles"
)

// NowPlaying displays the currently playing track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap state.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if snap.Track == nil {
		content = lipgloss.JoinVertical(lipgloss.Left,
			styles.Muted.Render("No track playing"),
			"",
			n.renderStatus(snap),
		)
	} else {
		content = n.renderTrack(snap, width-4)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(snap state.Snapshot, width int) string {
	track := snap.Track

	// Status icon and track title
	icon := styles.StatusIcon(snap.Playing)
	if snap.State == core.StateLoading {
		icon = styles.Dim.Render("…")
	}
	titleStyle := styles.Title.Width(max(width-4, 1))
	title := titleStyle.Render(track.Title)

	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	// Progress bar
	progressWidth := width - 14 // Account for times on either side
	if progressWidth < 10 {
		progressWidth = 10
	}
	progressBar := styles.ProgressBar(ProgressPercent(snap.Position, track.Duration), progressWidth)
	progress := fmt.Sprintf("%s %s %s",
		FormatSeconds(float64(snap.Position)),
		progressBar,
		FormatSeconds(track.Duration))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
		"",
		n.renderStatus(snap),
	)
}

func (n *NowPlaying) renderStatus(snap state.Snapshot) string {
	volume := int(math.Round(snap.Volume * 100))
	mode := snap.RepeatMode.String()

	status := fmt.Sprintf("🔊 %d%%  %s %s  %s", volume, styles.RepeatIcon(mode), mode, snap.StateName)
	return styles.Muted.Render(status)
}

// ProgressPercent returns position as a percentage of duration.
func ProgressPercent(position uint64, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return math.Min(100, float64(position)/duration*100)
}

// FormatSeconds renders seconds as m:ss.
func FormatSeconds(s float64) string {
	if s < 0 {
		s = 0
	}
	total := int(math.Round(s))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
