package player

import "github.com/tessro/tonearm/internal/core"

// The methods below are safe to call from any goroutine. Each one enqueues
// an action that Run applies in order.

func (e *Engine) Play()            { e.send(core.Play{}) }
func (e *Engine) Pause()           { e.send(core.Pause{}) }
func (e *Engine) Stop()            { e.send(core.Stop{}) }
func (e *Engine) Prev()            { e.send(core.SkipPrevious{}) }
func (e *Engine) Next()            { e.send(core.SkipNext{}) }
func (e *Engine) TogglePlayPause() { e.send(core.TogglePlayPause{}) }
func (e *Engine) Raise()           { e.send(core.Raise{}) }

// SetTrackPosition seeks within the current track.
func (e *Engine) SetTrackPosition(seconds float64) {
	e.send(core.Seek{Seconds: seconds})
}

// SetVolume sets the perceptual volume in [0,1].
func (e *Engine) SetVolume(ratio float64) {
	e.send(core.SetVolume{Ratio: ratio})
}

// ClearPlayTrack replaces the queue with track and plays it.
func (e *Engine) ClearPlayTrack(track *core.Track) {
	e.send(core.ClearPlayTrack{Track: track})
}

// AddTrack appends track to the queue.
func (e *Engine) AddTrack(track *core.Track) {
	e.send(core.AddTrack{Track: track})
}

// ClearPlayAlbum replaces the queue with tracks, titles it, and plays the
// first track.
func (e *Engine) ClearPlayAlbum(tracks []*core.Track, title string) {
	e.send(core.ClearPlayAlbum{Tracks: tracks, Title: title})
}

// AddAlbum appends tracks to the queue.
func (e *Engine) AddAlbum(tracks []*core.Track) {
	e.send(core.AddAlbum{Tracks: tracks})
}

// GoToPlaylistPosition plays the track at index.
func (e *Engine) GoToPlaylistPosition(index uint64) {
	e.send(core.GoToPosition{Index: index})
}

func (e *Engine) RemoveTrack(index int) {
	e.send(core.RemoveTrack{Index: index})
}

func (e *Engine) ReorderTrack(oldIndex, newIndex int) {
	e.send(core.ReorderTrack{Old: oldIndex, New: newIndex})
}

// SetRepeatMode requests mode. Requesting the active mode returns to normal.
func (e *Engine) SetRepeatMode(mode core.RepeatMode) {
	e.send(core.QueueRepeatMode{Mode: mode})
}

func (e *Engine) SetShuffleLoop(enabled bool) {
	e.send(core.SetShuffleLoop{Enabled: enabled})
}

// SetCommitThreshold sets the fraction of a track that counts as a listen.
func (e *Engine) SetCommitThreshold(fraction float64) {
	e.send(core.SetCommitThreshold{Fraction: fraction})
}
