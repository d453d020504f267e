package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/tessro/tonearm/internal/core"
)

// SearchType represents which track field search matches against
type SearchType int

const (
	SearchAll SearchType = iota
	SearchTitles
	SearchArtists
	SearchAlbums
	searchTypeCount
)

const maxSearchResults = 10

type searchState struct {
	active  bool
	input   textinput.Model
	results []*core.Track
	cursor  int
	kind    SearchType
}

func (m *Model) openSearch() tea.Cmd {
	m.search.active = true
	m.search.input.SetValue("")
	m.search.input.Focus()
	m.search.results = nil
	m.search.cursor = 0
	m.search.kind = SearchAll
	return textinput.Blink
}

func (m *Model) closeSearch() {
	m.search.active = false
	m.search.input.Blur()
}

func (m Model) selectedResult() *core.Track {
	if m.search.cursor < len(m.search.results) {
		return m.search.results[m.search.cursor]
	}
	return nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.app.controller

	switch msg.String() {
	case "esc":
		m.closeSearch()
		return m, nil

	case "enter":
		if t := m.selectedResult(); t != nil {
			m.closeSearch()
			ctl.ClearPlayTrack(t)
		}
		return m, nil

	case "ctrl+a":
		// Play the whole album of the selected track
		if t := m.selectedResult(); t != nil {
			m.closeSearch()
			ctl.ClearPlayAlbum(albumTracks(m.app.library, t.Album), t.Album)
		}
		return m, nil

	case "ctrl+q":
		if t := m.selectedResult(); t != nil {
			m.closeSearch()
			ctl.AddTrack(t)
		}
		return m, nil

	case "up", "ctrl+p":
		if m.search.cursor > 0 {
			m.search.cursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.search.cursor < len(m.search.results)-1 {
			m.search.cursor++
		}
		return m, nil

	case "ctrl+t":
		m.search.kind = (m.search.kind + 1) % searchTypeCount
		m.runSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	m.runSearch()
	return m, cmd
}

func (m *Model) runSearch() {
	m.search.results = searchLibrary(m.app.library, m.search.input.Value(), m.search.kind)
	m.search.cursor = 0
}

// searchLibrary returns up to maxSearchResults tracks whose fields contain
// query, case-insensitively.
func searchLibrary(library []*core.Track, query string, kind SearchType) []*core.Track {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matches := lo.Filter(library, func(t *core.Track, _ int) bool {
		fields := []string{t.Title, t.Artist, t.Album}
		switch kind {
		case SearchTitles:
			fields = fields[:1]
		case SearchArtists:
			fields = fields[1:2]
		case SearchAlbums:
			fields = fields[2:]
		}
		return lo.SomeBy(fields, func(f string) bool {
			return strings.Contains(strings.ToLower(f), query)
		})
	})

	if len(matches) > maxSearchResults {
		matches = matches[:maxSearchResults]
	}
	return matches
}

func albumTracks(library []*core.Track, album string) []*core.Track {
	return lo.Filter(library, func(t *core.Track, _ int) bool {
		return t.Album == album
	})
}
