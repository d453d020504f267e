package tui

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/state"
	"github.com/tessro/tonearm/internal/tui/components"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelHistory
	panelCount
)

const (
	volumeStep  = 0.05
	seekStep    = 5.0
	historySize = 20
)

// HistorySource provides recently recorded listens.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]core.HistoryEntry, error)
}

// App wires the UI to a running player.
type App struct {
	controller  core.Controller
	state       *state.PlayerState
	history     HistorySource
	library     []*core.Track
	refreshRate time.Duration

	// changes is signalled, without blocking, on every state notification.
	changes chan struct{}
}

// AppOption configures an App.
type AppOption func(*App)

// WithHistory enables the history panel.
func WithHistory(h HistorySource) AppOption {
	return func(a *App) { a.history = h }
}

// WithLibrary sets the tracks offered by search.
func WithLibrary(tracks []*core.Track) AppOption {
	return func(a *App) { a.library = tracks }
}

// WithRefreshRate sets how often relative times and errors are refreshed.
func WithRefreshRate(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.refreshRate = d
		}
	}
}

// NewApp creates a new TUI application
func NewApp(controller core.Controller, ps *state.PlayerState, opts ...AppOption) *App {
	a := &App{
		controller:  controller,
		state:       ps,
		refreshRate: time.Second,
		changes:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// watch subscribes to state changes. The returned func unsubscribes.
func (a *App) watch() func() {
	return a.state.SubscribeAll(func(state.Notification) {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	})
}

// Model is the main TUI model
type Model struct {
	app          *App
	keys         keyMap
	help         help.Model
	width        int
	height       int
	focusedPanel Panel

	// State
	snap    state.Snapshot
	history []core.HistoryEntry
	now     time.Time

	// Components
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	historyView *components.History

	// Overlays
	showHelp bool
	search   searchState

	// Error handling
	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search titles, artists, albums..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		app:          app,
		keys:         defaultKeyMap(),
		help:         help.New(),
		focusedPanel: PanelNowPlaying,
		snap:         app.state.Snapshot(),
		now:          time.Now(),
		nowPlaying:   components.NewNowPlaying(),
		queueView:    components.NewQueue(),
		historyView:  components.NewHistory(),
		search:       searchState{input: ti},
	}
}

// Messages
type tickMsg time.Time
type changedMsg struct{}
type historyMsg []core.HistoryEntry
type errMsg error

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.app.changes
	return func() tea.Msg {
		<-changes
		return changedMsg{}
	}
}

func (m Model) fetchHistory() tea.Cmd {
	source := m.app.history
	if source == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := source.Recent(ctx, historySize)
		if err != nil {
			return errMsg(err)
		}
		return historyMsg(entries)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForChange(),
		m.fetchHistory(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if m.now.After(m.errorExpiry) {
			m.lastError = nil
		}
		return m, m.tick()

	case changedMsg:
		oldTrack := m.snap.Track
		m.snap = m.app.state.Snapshot()
		m.queueView.Clamp(m.snap.Queue.Len())

		cmds := []tea.Cmd{m.waitForChange()}
		// A listen may have been recorded for the previous track.
		if m.snap.Track != oldTrack {
			cmds = append(cmds, m.fetchHistory())
		}
		return m, tea.Batch(cmds...)

	case historyMsg:
		m.history = msg
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second) // Show error for 5 seconds
		return m, nil
	}

	// Forward other messages to textinput when search is active
	if m.search.active {
		var cmd tea.Cmd
		m.search.input, cmd = m.search.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.search.active {
		return m.handleSearchKeyPress(msg)
	}

	ctl := m.app.controller

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Search):
		return m, m.openSearch()
	case key.Matches(msg, m.keys.NextPanel):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil
	case key.Matches(msg, m.keys.PrevPanel):
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchHistory()

	// Playback controls
	case key.Matches(msg, m.keys.Toggle):
		ctl.TogglePlayPause()
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		ctl.Stop()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		ctl.Next()
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		ctl.Prev()
		return m, nil
	case key.Matches(msg, m.keys.SeekBack):
		if m.snap.Track != nil {
			ctl.SetTrackPosition(float64(m.snap.Position) - seekStep)
		}
		return m, nil
	case key.Matches(msg, m.keys.SeekFwd):
		if m.snap.Track != nil {
			ctl.SetTrackPosition(float64(m.snap.Position) + seekStep)
		}
		return m, nil
	case key.Matches(msg, m.keys.VolumeUp):
		ctl.SetVolume(math.Min(1, m.snap.Volume+volumeStep))
		return m, nil
	case key.Matches(msg, m.keys.VolumeDown):
		ctl.SetVolume(math.Max(0, m.snap.Volume-volumeStep))
		return m, nil
	case key.Matches(msg, m.keys.Repeat):
		ctl.SetRepeatMode(nextRepeatMode(m.snap.RepeatMode))
		return m, nil
	}

	if m.focusedPanel == PanelQueue {
		m.handleQueueKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleQueueKeyPress(msg tea.KeyMsg) {
	n := m.snap.Queue.Len()
	sel := m.queueView.Selected()
	ctl := m.app.controller

	switch {
	case key.Matches(msg, m.keys.Down):
		m.queueView.SelectNext(n)
	case key.Matches(msg, m.keys.Up):
		m.queueView.SelectPrev()
	case key.Matches(msg, m.keys.PlayHere):
		if sel < n {
			ctl.GoToPlaylistPosition(uint64(sel))
		}
	case key.Matches(msg, m.keys.Remove):
		if sel < n {
			ctl.RemoveTrack(sel)
		}
	case key.Matches(msg, m.keys.MoveUp):
		if sel > 0 && sel < n {
			ctl.ReorderTrack(sel, sel-1)
			m.queueView.Select(sel - 1)
		}
	case key.Matches(msg, m.keys.MoveDown):
		if sel < n-1 {
			ctl.ReorderTrack(sel, sel+1)
			m.queueView.Select(sel + 1)
		}
	}
}

// nextRepeatMode cycles normal, loop, loop-song, shuffle. Requesting the
// active mode turns it off, which is how shuffle returns to normal.
func nextRepeatMode(current core.RepeatMode) core.RepeatMode {
	switch current {
	case core.RepeatNormal:
		return core.RepeatLoop
	case core.RepeatLoop:
		return core.RepeatLoopSong
	case core.RepeatLoopSong:
		return core.RepeatShuffle
	default:
		return current
	}
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, app *App) error {
	unsubscribe := app.watch()
	defer unsubscribe()

	p := tea.NewProgram(NewModel(app), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
