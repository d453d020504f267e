package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors - a pleasant color palette
var (
	// Primary colors
	Primary = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#7C3AED"} // Purple
	Accent  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"} // Amber

	// Status colors
	Success = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"} // Green
	Warning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"} // Amber
	Error   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"} // Red

	// Neutral colors
	Border    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
	Text      = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	TextMuted = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	TextDim   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Success)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
		Foreground(Error)

	Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)

	NoBorder = lipgloss.NewStyle().
		Border(lipgloss.HiddenBorder())
)

// Panel creates a styled panel with optional focus
func Panel(title string, focused bool) lipgloss.Style {
	style := BorderStyle.Padding(0, 1)

	if focused {
		style = FocusedBorder.Padding(0, 1)
	}

	return style
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	bar := filledStyle.Render(Repeat("━", filled)) +
		emptyStyle.Render(Repeat("─", width-filled))

	return bar
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// RepeatIcon returns an icon for a repeat mode name
func RepeatIcon(mode string) string {
	switch mode {
	case "loop":
		return "🔁"
	case "loop-song":
		return "🔂"
	case "shuffle":
		return "🔀"
	default:
		return "➡"
	}
}

// Repeat repeats a string n times
func Repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}

// SetTheme forces the light or dark palette. "auto" leaves detection to
// the terminal.
func SetTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}
