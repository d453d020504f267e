package core

import "time"

// Controller defines the operations the UI and input layers use to drive
// playback. Implementations must be safe to call from any goroutine.
type Controller interface {
	// Transport
	Play()
	Pause()
	Stop()
	Prev()
	Next()
	TogglePlayPause()
	SetTrackPosition(seconds float64)
	SetVolume(ratio float64)

	// Queue manipulation
	ClearPlayTrack(track *Track)
	AddTrack(track *Track)
	ClearPlayAlbum(tracks []*Track, title string)
	AddAlbum(tracks []*Track)
	GoToPlaylistPosition(index uint64)
	RemoveTrack(index int)
	ReorderTrack(oldIndex, newIndex int)
	SetRepeatMode(mode RepeatMode)
}

// Recorder persists genuine listens.
type Recorder interface {
	RecordPlay(track *Track, at time.Time) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(track *Track, at time.Time) error

// RecordPlay calls f(track, at).
func (f RecorderFunc) RecordPlay(track *Track, at time.Time) error {
	return f(track, at)
}

// HistoryEntry represents a recorded listen.
type HistoryEntry struct {
	ID       string
	Track    *Track
	PlayedAt time.Time
}
