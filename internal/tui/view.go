package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tonearm/internal/tui/styles"
)

var searchTabs = []string{"All", "Titles", "Artists", "Albums"}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.search.active {
		return m.renderSearch()
	}

	// Left: Now Playing (top), History (bottom). Right: Queue.
	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 2
	bodyHeight := m.height - 2
	topHeight := bodyHeight * 50 / 100
	bottomHeight := bodyHeight - topHeight - 2

	nowPlaying := m.nowPlaying.Render(m.snap, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	historyView := m.historyView.Render(m.history, m.now, leftWidth-2, bottomHeight, m.focusedPanel == PanelHistory)
	queueView := m.queueView.Render(m.snap.Queue, m.snap.QueueTitle, m.snap.QueueTimeRemaining,
		rightWidth-2, bodyHeight-2, m.focusedPanel == PanelQueue)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, historyView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, queueView)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.lastError != nil {
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Tonearm - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	body := m.help.FullHelpView(m.keys.FullHelp())

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		divider,
		"",
		body,
		"",
		styles.Dim.Render("Search: enter play  ctrl+a play album  ctrl+q queue  ctrl+t filter"),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(content))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.search.input.View())
	b.WriteString("\n\n")

	// Field filter tabs
	activeTab := lipgloss.NewStyle().Padding(0, 1).Background(styles.Primary).Foreground(styles.Text)
	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(styles.TextMuted)
	for i, name := range searchTabs {
		if SearchType(i) == m.search.kind {
			b.WriteString(activeTab.Render(name))
		} else {
			b.WriteString(tab.Render(name))
		}
	}
	b.WriteString("\n\n")

	switch {
	case len(m.app.library) == 0:
		b.WriteString(styles.Muted.Render("Library is empty"))
	case len(m.search.results) == 0 && m.search.input.Value() != "":
		b.WriteString(styles.Muted.Render("No results found"))
	default:
		for i, t := range m.search.results {
			line := t.Title
			if t.Artist != "" || t.Album != "" {
				line += " " + styles.Muted.Render(strings.TrimPrefix(t.Artist+" · "+t.Album, " · "))
			}
			if i == m.search.cursor {
				b.WriteString(styles.Selected.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("ctrl+t:filter  ↑/↓:nav  enter:play  ctrl+a:album  ctrl+q:queue  esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}
