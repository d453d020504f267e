package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/tui/styles"
)

// History displays recently recorded listens
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []core.HistoryEntry, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, now, width-4, height-4)
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

func (h *History) renderHistory(entries []core.HistoryEntry, now time.Time, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	// Fixed overhead: icon (2) + " — " (3) + gap (1)
	const overhead = 6

	for _, entry := range entries {
		if len(lines) >= maxLines {
			break
		}

		track := entry.Track
		if track == nil {
			continue
		}

		timeAgo := FormatTimeAgo(entry.PlayedAt, now)
		title, artist := fit(track.Title, track.Artist, width-overhead-len(timeAgo))

		trackInfo := fmt.Sprintf("%s — %s", title, artist)
		trackInfoLen := len(title) + 3 + len(artist)

		padding := width - 2 - trackInfoLen - len(timeAgo)
		if padding < 1 {
			padding = 1
		}

		line := fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render("✓"),
			trackInfo,
			styles.Repeat(" ", padding),
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// FormatTimeAgo renders t relative to now in a compact form.
func FormatTimeAgo(t, now time.Time) string {
	d := now.Sub(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
