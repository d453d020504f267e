// Package state holds the externally visible playback state and notifies
// observers of every change.
//
// Only the player engine mutates a PlayerState. Reads are safe from any
// goroutine. Subscribers run synchronously on the mutating goroutine, after
// the change is applied, and must not block.
package state

import (
	"math"
	"sync"

	"github.com/tessro/tonearm/internal/core"
)

// DefaultQueueTitle is used when the queue has no title.
const DefaultQueueTitle = "Playlist"

// Snapshot is a consistent copy of PlayerState.
type Snapshot struct {
	Track              *core.Track        `json:"track,omitempty"`
	Position           uint64             `json:"position"`
	Volume             float64            `json:"volume"`
	State              core.PlaybackState `json:"-"`
	StateName          string             `json:"state"`
	Playing            bool               `json:"playing"`
	RepeatMode         core.RepeatMode    `json:"repeat_mode"`
	QueueTitle         string             `json:"queue_title"`
	QueueTimeRemaining float64            `json:"queue_time_remaining"`
	QueuePosition      uint64             `json:"queue_position"`
	Empty              bool               `json:"empty"`
	Queue              *core.Queue        `json:"queue,omitempty"`
}

type subscriber struct {
	id   uint64
	name string // empty for all notifications
	fn   func(Notification)
}

// PlayerState is the observable playback state.
type PlayerState struct {
	mu sync.RWMutex

	track         *core.Track
	position      uint64
	volume        float64
	playback      core.PlaybackState
	repeat        core.RepeatMode
	queueTitle    string
	timeRemaining float64
	queuePosition uint64
	empty         bool
	queue         *core.Queue

	subMu  sync.Mutex
	subs   []subscriber
	nextID uint64
}

// New creates a PlayerState with no track and an empty queue.
func New() *PlayerState {
	return &PlayerState{
		volume:     -1,
		playback:   core.StateStopped,
		queueTitle: DefaultQueueTitle,
		empty:      true,
	}
}

// Subscribe registers fn for notifications with the given name. The returned
// func removes the subscription.
func (s *PlayerState) Subscribe(name string, fn func(Notification)) func() {
	return s.subscribe(name, fn)
}

// SubscribeAll registers fn for every notification.
func (s *PlayerState) SubscribeAll(fn func(Notification)) func() {
	return s.subscribe("", fn)
}

func (s *PlayerState) subscribe(name string, fn func(Notification)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, name: name, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *PlayerState) notify(ns ...Notification) {
	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()

	for _, n := range ns {
		name := n.Name()
		for _, sub := range subs {
			if sub.name == "" || sub.name == name {
				sub.fn(n)
			}
		}
	}
}

// SetCurrentTrack replaces the current track and resets the position.
func (s *PlayerState) SetCurrentTrack(track *core.Track) {
	s.mu.Lock()
	s.track = track
	s.position = 0
	s.mu.Unlock()

	var (
		title, artist, album string
		duration             float64
		cover                *int64
	)
	if track != nil {
		title, artist, album = track.Title, track.Artist, track.Album
		duration = track.Duration
		cover = track.CoverArt
	}

	s.notify(
		SongChanged{Track: track},
		TitleChanged{Title: title},
		ArtistChanged{Artist: artist},
		AlbumChanged{Album: album},
		DurationChanged{Seconds: duration},
		CoverChanged{CoverArt: cover},
		PositionChanged{Seconds: 0},
	)
}

// SetPosition sets the elapsed seconds of the current track.
func (s *PlayerState) SetPosition(seconds uint64) {
	s.mu.Lock()
	s.position = seconds
	s.mu.Unlock()

	s.notify(PositionChanged{Seconds: seconds})
}

// SetVolume stores the perceptual volume. Observers are notified only when
// the value changes at two decimal places.
func (s *PlayerState) SetVolume(volume float64) {
	s.mu.Lock()
	changed := round2(volume) != round2(s.volume)
	s.volume = volume
	s.mu.Unlock()

	if changed {
		s.notify(VolumeChanged{Volume: volume})
	}
}

// SetPlaybackState stores the playback state, notifying only on change.
func (s *PlayerState) SetPlaybackState(state core.PlaybackState) {
	s.mu.Lock()
	if s.playback == state {
		s.mu.Unlock()
		return
	}
	s.playback = state
	s.mu.Unlock()

	s.notify(
		PlayingChanged{Playing: state == core.StatePlaying},
		StateChanged{State: state},
	)
}

// SetRepeatMode stores the repeat mode.
func (s *PlayerState) SetRepeatMode(mode core.RepeatMode) {
	s.mu.Lock()
	s.repeat = mode
	s.mu.Unlock()

	s.notify(RepeatModeChanged{Mode: mode})
}

// SetQueueTitle sets the queue title. An empty title resets it to the
// default.
func (s *PlayerState) SetQueueTitle(title string) {
	if title == "" {
		title = DefaultQueueTitle
	}

	s.mu.Lock()
	s.queueTitle = title
	s.mu.Unlock()

	s.notify(QueueTitleChanged{Title: title})
}

// SetQueueTimeRemaining sets the seconds left from the cursor to the end.
func (s *PlayerState) SetQueueTimeRemaining(seconds float64) {
	s.mu.Lock()
	s.timeRemaining = seconds
	s.mu.Unlock()

	s.notify(QueueTimeRemainingChanged{Seconds: seconds})
}

// QueueUpdate stores a new queue snapshot.
func (s *PlayerState) QueueUpdate(queue *core.Queue) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()

	s.notify(QueueUpdated{Queue: queue})
}

// QueueEmpty marks the queue as empty.
func (s *PlayerState) QueueEmpty() {
	s.mu.Lock()
	s.empty = true
	s.queue = nil
	s.mu.Unlock()

	s.notify(QueueEmptied{})
}

// QueueNonEmpty marks the queue as holding tracks.
func (s *PlayerState) QueueNonEmpty() {
	s.mu.Lock()
	s.empty = false
	s.mu.Unlock()

	s.notify(QueueFilled{})
}

// QueuePosition stores the queue cursor.
func (s *PlayerState) QueuePosition(position uint64) {
	s.mu.Lock()
	s.queuePosition = position
	if s.queue != nil {
		s.queue = &core.Queue{Tracks: s.queue.Tracks, CurrentIndex: int(position)}
	}
	s.mu.Unlock()

	s.notify(QueuePositionChanged{Position: position})
}

// QueueRepeatModeUpdate stores the queue's effective repeat mode.
func (s *PlayerState) QueueRepeatModeUpdate(mode core.RepeatMode) {
	s.mu.Lock()
	s.repeat = mode
	s.mu.Unlock()

	s.notify(QueueRepeatModeChanged{Mode: mode}, RepeatModeChanged{Mode: mode})
}

func (s *PlayerState) CurrentTrack() *core.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track
}

func (s *PlayerState) Position() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// Volume returns the perceptual volume, or 0 if it was never set.
func (s *PlayerState) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return math.Max(0, s.volume)
}

func (s *PlayerState) PlaybackState() core.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playback
}

func (s *PlayerState) Playing() bool {
	return s.PlaybackState() == core.StatePlaying
}

func (s *PlayerState) RepeatMode() core.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repeat
}

func (s *PlayerState) QueueTitle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queueTitle
}

func (s *PlayerState) QueueTimeRemaining() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRemaining
}

func (s *PlayerState) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.empty
}

// Title returns the current track's title, or "".
func (s *PlayerState) Title() string {
	if t := s.CurrentTrack(); t != nil {
		return t.Title
	}
	return ""
}

// Artist returns the current track's artist, or "".
func (s *PlayerState) Artist() string {
	if t := s.CurrentTrack(); t != nil {
		return t.Artist
	}
	return ""
}

// Album returns the current track's album, or "".
func (s *PlayerState) Album() string {
	if t := s.CurrentTrack(); t != nil {
		return t.Album
	}
	return ""
}

// Duration returns the current track's nominal duration in seconds.
func (s *PlayerState) Duration() float64 {
	if t := s.CurrentTrack(); t != nil {
		return t.Duration
	}
	return 0
}

// Cover returns the current track's cover-art id, if any.
func (s *PlayerState) Cover() *int64 {
	if t := s.CurrentTrack(); t != nil {
		return t.CoverArt
	}
	return nil
}

// Snapshot returns a consistent copy of all fields.
func (s *PlayerState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Track:              s.track,
		Position:           s.position,
		Volume:             math.Max(0, s.volume),
		State:              s.playback,
		StateName:          s.playback.String(),
		Playing:            s.playback == core.StatePlaying,
		RepeatMode:         s.repeat,
		QueueTitle:         s.queueTitle,
		QueueTimeRemaining: s.timeRemaining,
		QueuePosition:      s.queuePosition,
		Empty:              s.empty,
	}
	if s.queue != nil {
		snap.Queue = &core.Queue{
			Tracks:       append([]*core.Track(nil), s.queue.Tracks...),
			CurrentIndex: s.queue.CurrentIndex,
		}
	}
	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
