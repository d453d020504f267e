package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/state"
)

// fakeController records every call as a string.
type fakeController struct {
	calls []string
}

func (f *fakeController) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeController) Play()                           { f.record("play") }
func (f *fakeController) Pause()                          { f.record("pause") }
func (f *fakeController) Stop()                           { f.record("stop") }
func (f *fakeController) Prev()                           { f.record("prev") }
func (f *fakeController) Next()                           { f.record("next") }
func (f *fakeController) TogglePlayPause()                { f.record("toggle") }
func (f *fakeController) SetTrackPosition(s float64)      { f.record("seek %.0f", s) }
func (f *fakeController) SetVolume(r float64)             { f.record("volume %.2f", r) }
func (f *fakeController) ClearPlayTrack(t *core.Track)    { f.record("clear-play %s", t.Title) }
func (f *fakeController) AddTrack(t *core.Track)          { f.record("add %s", t.Title) }
func (f *fakeController) AddAlbum(ts []*core.Track)       { f.record("add-album %d", len(ts)) }
func (f *fakeController) GoToPlaylistPosition(i uint64)   { f.record("goto %d", i) }
func (f *fakeController) RemoveTrack(i int)               { f.record("remove %d", i) }
func (f *fakeController) ReorderTrack(a, b int)           { f.record("reorder %d %d", a, b) }
func (f *fakeController) SetRepeatMode(m core.RepeatMode) { f.record("repeat %s", m) }
func (f *fakeController) ClearPlayAlbum(ts []*core.Track, title string) {
	f.record("clear-play-album %s %d", title, len(ts))
}

var _ core.Controller = (*fakeController)(nil)

var library = []*core.Track{
	{ID: 1, Title: "Intro", Artist: "Band", Album: "First", Duration: 60},
	{ID: 2, Title: "Middle", Artist: "Band", Album: "First", Duration: 120},
	{ID: 3, Title: "Other", Artist: "Solo", Album: "Second", Duration: 90},
}

func newTestModel(t *testing.T) (Model, *fakeController, *state.PlayerState) {
	t.Helper()
	ctl := &fakeController{}
	ps := state.New()
	app := NewApp(ctl, ps, WithLibrary(library))
	m := NewModel(app)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), ctl, ps
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

// refresh delivers a state change the way the subscription would.
func refresh(m Model) Model {
	updated, _ := m.Update(changedMsg{})
	return updated.(Model)
}

func lastCall(t *testing.T, ctl *fakeController) string {
	t.Helper()
	if len(ctl.calls) == 0 {
		t.Fatal("no controller calls")
	}
	return ctl.calls[len(ctl.calls)-1]
}

func TestPlaybackKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want string
	}{
		{"toggle", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, "toggle"},
		{"next", runes("n"), "next"},
		{"prev", runes("p"), "prev"},
		{"stop", runes("s"), "stop"},
		{"repeat", runes("r"), "repeat loop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ctl, _ := newTestModel(t)
			press(m, tt.key)
			if got := lastCall(t, ctl); got != tt.want {
				t.Errorf("call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVolumeKeysUsePerceptualVolume(t *testing.T) {
	m, ctl, ps := newTestModel(t)
	ps.SetVolume(0.5)
	m = refresh(m)

	press(m, runes("+"))
	if got := lastCall(t, ctl); got != "volume 0.55" {
		t.Errorf("volume up = %q", got)
	}
	press(m, runes("-"))
	if got := lastCall(t, ctl); got != "volume 0.45" {
		t.Errorf("volume down = %q", got)
	}

	ps.SetVolume(1)
	m = refresh(m)
	press(m, runes("+"))
	if got := lastCall(t, ctl); got != "volume 1.00" {
		t.Errorf("volume up at max = %q", got)
	}
}

func TestSeekKeysNeedTrack(t *testing.T) {
	m, ctl, ps := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if len(ctl.calls) != 0 {
		t.Fatalf("seek without track issued %v", ctl.calls)
	}

	ps.SetCurrentTrack(library[1])
	ps.SetPosition(30)
	m = refresh(m)

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := lastCall(t, ctl); got != "seek 35" {
		t.Errorf("seek forward = %q", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := lastCall(t, ctl); got != "seek 25" {
		t.Errorf("seek back = %q", got)
	}
}

func TestNextRepeatMode(t *testing.T) {
	tests := []struct {
		current, want core.RepeatMode
	}{
		{core.RepeatNormal, core.RepeatLoop},
		{core.RepeatLoop, core.RepeatLoopSong},
		{core.RepeatLoopSong, core.RepeatShuffle},
		{core.RepeatShuffle, core.RepeatShuffle},
	}
	for _, tt := range tests {
		if got := nextRepeatMode(tt.current); got != tt.want {
			t.Errorf("nextRepeatMode(%s) = %s, want %s", tt.current, got, tt.want)
		}
	}
}

func TestQueuePanelKeys(t *testing.T) {
	m, ctl, ps := newTestModel(t)
	ps.QueueUpdate(&core.Queue{Tracks: library, CurrentIndex: 0})
	m = refresh(m)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focusedPanel != PanelQueue {
		t.Fatalf("focused = %v, want queue", m.focusedPanel)
	}

	m = press(m, runes("j"), runes("j"), runes("j")) // clamps at last
	if m.queueView.Selected() != 2 {
		t.Fatalf("selected = %d, want 2", m.queueView.Selected())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := lastCall(t, ctl); got != "goto 2" {
		t.Errorf("enter = %q", got)
	}

	m = press(m, runes("K"))
	if got := lastCall(t, ctl); got != "reorder 2 1" {
		t.Errorf("move up = %q", got)
	}
	if m.queueView.Selected() != 1 {
		t.Errorf("selection should follow moved track, got %d", m.queueView.Selected())
	}

	press(m, runes("d"))
	if got := lastCall(t, ctl); got != "remove 1" {
		t.Errorf("remove = %q", got)
	}
}

func TestQueueKeysIgnoredOutsidePanel(t *testing.T) {
	m, ctl, ps := newTestModel(t)
	ps.QueueUpdate(&core.Queue{Tracks: library})
	m = refresh(m)

	press(m, runes("d"), tea.KeyMsg{Type: tea.KeyEnter})
	if len(ctl.calls) != 0 {
		t.Errorf("calls = %v, want none", ctl.calls)
	}
}

func TestSearch(t *testing.T) {
	m, ctl, _ := newTestModel(t)

	m = press(m, runes("/"))
	if !m.search.active {
		t.Fatal("search should be open")
	}

	m = press(m, runes("b"), runes("a"), runes("n"), runes("d"))
	if len(m.search.results) != 2 {
		t.Fatalf("results = %d, want 2", len(m.search.results))
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if got := lastCall(t, ctl); got != "clear-play Middle" {
		t.Errorf("enter = %q", got)
	}
	if m.search.active {
		t.Error("search should close after playing")
	}
}

func TestSearchPlayAlbum(t *testing.T) {
	m, ctl, _ := newTestModel(t)
	m = press(m, runes("/"), runes("i"), runes("n"), runes("t"), runes("r"), runes("o"))
	press(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	if got := lastCall(t, ctl); got != "clear-play-album First 2" {
		t.Errorf("ctrl+a = %q", got)
	}
}

func TestSearchLibraryFilters(t *testing.T) {
	tests := []struct {
		query string
		kind  SearchType
		want  int
	}{
		{"", SearchAll, 0},
		{"SOLO", SearchAll, 1},
		{"first", SearchAll, 2},
		{"first", SearchTitles, 0},
		{"band", SearchArtists, 2},
		{"second", SearchAlbums, 1},
	}
	for _, tt := range tests {
		if got := searchLibrary(library, tt.query, tt.kind); len(got) != tt.want {
			t.Errorf("searchLibrary(%q, %d) = %d results, want %d", tt.query, tt.kind, len(got), tt.want)
		}
	}
}

func TestViewShowsTrack(t *testing.T) {
	m, _, ps := newTestModel(t)
	ps.SetCurrentTrack(library[0])
	ps.SetPlaybackState(core.StatePlaying)
	m = refresh(m)

	view := m.View()
	for _, want := range []string{"Now Playing", "Intro", "Band", "Playlist"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestErrorShownInStatusBar(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, _ := m.Update(errMsg(fmt.Errorf("disk full")))
	m = updated.(Model)
	if !strings.Contains(m.View(), "disk full") {
		t.Error("status bar should show the error")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).quitting {
		t.Error("model should be quitting")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
