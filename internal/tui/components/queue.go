package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/tui/styles"
)

// Queue displays the playback queue
type Queue struct {
	offset   int
	selected int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// SelectNext moves the selection down, bounded by n tracks
func (q *Queue) SelectNext(n int) {
	if q.selected < n-1 {
		q.selected++
	}
}

// SelectPrev moves the selection up
func (q *Queue) SelectPrev() {
	if q.selected > 0 {
		q.selected--
	}
}

// Select sets the selected index
func (q *Queue) Select(i int) {
	if i >= 0 {
		q.selected = i
	}
}

// Selected returns the selected index
func (q *Queue) Selected() int {
	return q.selected
}

// Clamp keeps the selection inside a queue of n tracks
func (q *Queue) Clamp(n int) {
	if q.selected >= n {
		q.selected = n - 1
	}
	if q.selected < 0 {
		q.selected = 0
	}
}

// Render renders the queue panel
func (q *Queue) Render(queue *core.Queue, title string, remaining float64, width, height int, focused bool) string {
	heading := styles.PanelTitle(title, focused)
	if remaining > 0 {
		heading += styles.Dim.Render(FormatSeconds(remaining) + " left")
	}

	var content string
	if queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(queue, width-4, height-4, focused)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		heading,
		"",
		content,
	))
}

func (q *Queue) renderQueue(queue *core.Queue, width, maxLines int, focused bool) string {
	tracks := queue.Tracks

	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	// Keep the selection on screen
	if q.selected < q.offset {
		q.offset = q.selected
	}
	if q.selected >= q.offset+visibleCount {
		q.offset = q.selected - visibleCount + 1
	}
	if q.offset >= len(tracks) {
		q.offset = 0
	}

	start := q.offset
	end := min(start+visibleCount, len(tracks))

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " (4) + "▶ " or "  " (2) + " — " (3) = 9 chars
	const overhead = 9

	for i := start; i < end; i++ {
		track := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)
		title, artist := fit(track.Title, track.Artist, width-overhead)

		var line string
		switch {
		case i == queue.CurrentIndex:
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist))
		case focused && i == q.selected:
			line = styles.Selected.Render(fmt.Sprintf("%s › %s — %s", num, title, artist))
		default:
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}

		lines = append(lines, line)
	}

	if end < len(tracks) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit truncates title and artist to share available columns, giving the
// artist at least a third.
func fit(title, artist string, available int) (string, string) {
	if len(title)+len(artist) <= available {
		return title, artist
	}

	minArtist := max(available/3, 10)
	if minArtist > available-10 {
		minArtist = available - 10
	}

	artistSpace := min(minArtist, len(artist))
	titleSpace := available - artistSpace

	return truncate(title, titleSpace), truncate(artist, artistSpace)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
