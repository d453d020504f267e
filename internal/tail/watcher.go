package tail

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/state"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventStop
	EventVolumeChange
	EventRepeatChange
	EventQueueEnd
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Track     *core.Track
	Previous  *core.Track
	Position  uint64 // seconds into Previous when it ended
	Volume    int    // percent
	Repeat    core.RepeatMode
}

// Source is the observable state a Watcher follows.
type Source interface {
	SubscribeAll(fn func(state.Notification)) func()
	CurrentTrack() *core.Track
}

// Watcher turns PlayerState notifications into tail events.
type Watcher struct {
	source    Source
	threshold float64
	events    chan Event
	now       func() time.Time
	started   chan struct{}

	mu       sync.Mutex
	closed   bool
	track    *core.Track
	position uint64
	playback core.PlaybackState
	volume   int
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithCompletionThreshold sets the fraction of a track that must elapse for
// a track change to count as a completion rather than a skip.
func WithCompletionThreshold(threshold float64) WatcherOption {
	return func(w *Watcher) {
		if threshold > 0 && threshold <= 1 {
			w.threshold = threshold
		}
	}
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) WatcherOption {
	return func(w *Watcher) {
		if n > 0 {
			w.events = make(chan Event, n)
		}
	}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:    source,
		threshold: 0.95,
		events:    make(chan Event, 16),
		now:       time.Now,
		started:   make(chan struct{}),
		volume:    -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Events returns the channel of playback events. It is closed when Start
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Ready is closed once Start is receiving notifications.
func (w *Watcher) Ready() <-chan struct{} {
	return w.started
}

// Start follows the source until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	current := w.source.CurrentTrack()
	w.mu.Lock()
	w.track = current
	w.mu.Unlock()

	if current != nil {
		w.emit(Event{Type: EventTrackChange, Track: current})
	}

	unsubscribe := w.source.SubscribeAll(w.handle)
	close(w.started)
	<-ctx.Done()
	unsubscribe()

	w.mu.Lock()
	w.closed = true
	close(w.events)
	w.mu.Unlock()

	return ctx.Err()
}

func (w *Watcher) handle(n state.Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	switch n := n.(type) {
	case state.PositionChanged:
		if w.track != nil {
			w.position = n.Seconds
		}

	case state.SongChanged:
		// A repeated track restarts from zero; anything else is a duplicate.
		if n.Track == w.track && w.position == 0 {
			return
		}
		if w.track != nil {
			typ := EventTrackSkip
			if w.completed() {
				typ = EventTrackComplete
			}
			w.send(Event{Type: typ, Previous: w.track, Position: w.position})
		}
		if n.Track != nil {
			w.send(Event{Type: EventTrackChange, Track: n.Track, Previous: w.track})
		}
		w.track = n.Track
		w.position = 0

	case state.StateChanged:
		prev := w.playback
		w.playback = n.State
		switch {
		case n.State == core.StatePaused && prev == core.StatePlaying:
			w.send(Event{Type: EventPause, Track: w.track})
		case n.State == core.StatePlaying && prev == core.StatePaused:
			w.send(Event{Type: EventResume, Track: w.track})
		case n.State == core.StateStopped:
			w.send(Event{Type: EventStop, Track: w.track})
		}

	case state.VolumeChanged:
		pct := int(math.Round(n.Volume * 100))
		if pct == w.volume {
			return
		}
		w.volume = pct
		w.send(Event{Type: EventVolumeChange, Track: w.track, Volume: pct})

	case state.RepeatModeChanged:
		w.send(Event{Type: EventRepeatChange, Track: w.track, Repeat: n.Mode})

	case state.QueueEmptied:
		w.send(Event{Type: EventQueueEnd})
	}
}

func (w *Watcher) emit(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.send(e)
	}
}

// send must be called with mu held.
func (w *Watcher) send(e Event) {
	e.Timestamp = w.now()
	select {
	case w.events <- e:
	default:
		// Drop event if channel is full
	}
}

// completed reports whether the current track played far enough to count as
// finished. Must be called with mu held.
func (w *Watcher) completed() bool {
	if w.track == nil || w.track.Duration <= 0 {
		return false
	}
	return float64(w.position) >= w.track.Duration*w.threshold
}
