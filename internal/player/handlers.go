package player

import (
	"github.com/tessro/tonearm/internal/core"
)

func (e *Engine) handlePlayback(action core.PlaybackAction) {
	switch a := action.(type) {
	case core.Play:
		e.play()
	case core.Pause:
		e.backend.SetState(core.StatePaused)
	case core.Stop:
		e.stop()
	case core.TogglePlayPause:
		e.togglePlayPause()
	case core.SkipPrevious:
		e.queue.Previous()
		e.play()
	case core.SkipNext:
		e.skipNext()
	case core.Raise:
		if e.onRaise != nil {
			e.onRaise()
		}
	case core.Seek:
		e.seek(a.Seconds)
	case core.SetVolume:
		e.state.SetVolume(e.backend.SetVolume(a.Ratio))
	case core.QueueRepeatMode:
		e.queue.OnRepeatChange(a.Mode)

	case core.Tick:
		e.tick(a.Seconds)
	case core.EOS:
		if e.current(a.Session, action) {
			e.backend.SetState(core.StateStopped)
			e.skipNext()
		}
	case core.Error:
		// The backend already flushed itself and reported Stopped.
		if e.current(a.Session, action) {
			e.log.Error().Err(a.Err).Msg("playback error")
		}
	case core.PlaybackStateChanged:
		if e.current(a.Session, action) {
			e.playbackState(a.State)
		}
	case core.StreamStarted:
		if e.current(a.Session, action) {
			e.backend.StartDurationPoll()
		}
	case core.ClockStarted:
		if e.current(a.Session, action) {
			e.backend.ResetClock()
		}
	case core.DurationDiscovered:
		if e.backend.SetDuration(a.Seconds, a.URI) {
			e.log.Debug().Float64("seconds", a.Seconds).Str("uri", a.URI).Msg("duration discovered")
		}

	case core.ClearPlayTrack:
		if a.Track == nil {
			return
		}
		e.queue.SetSong(a.Track)
		e.state.SetQueueTitle(a.Track.Title)
		e.play()
	case core.AddTrack:
		e.queue.AddTrack(a.Track)
		e.state.SetQueueTitle("")
	case core.ClearPlayAlbum:
		e.queue.SetAlbum(a.Tracks)
		e.state.SetQueueTitle(a.Title)
		e.play()
	case core.AddAlbum:
		e.queue.AddTracks(a.Tracks)
		e.state.SetQueueTitle("")
	case core.GoToPosition:
		e.queue.SetPosition(a.Index)
		e.play()
	case core.RemoveTrack:
		e.removeTrack(a.Index)
	case core.ReorderTrack:
		e.queue.ReorderTrack(a.Old, a.New)

	case core.SetShuffleLoop:
		e.queue.SetShuffleLoop(a.Enabled)
	case core.SetCommitThreshold:
		e.setCommitThreshold(a.Fraction)

	default:
		e.log.Warn().Type("action", action).Msg("unhandled playback action")
	}
}

func (e *Engine) handleQueue(action core.QueueAction) {
	switch a := action.(type) {
	case core.QueueUpdate:
		e.state.QueueUpdate(e.queue.Snapshot())
	case core.QueueEmpty:
		e.state.QueueEmpty()
		e.stop()
	case core.QueueNonEmpty:
		e.state.QueueNonEmpty()
	case core.QueuePositionUpdate:
		e.state.QueuePosition(a.Position)
	case core.QueueRepeatModeChanged:
		e.state.QueueRepeatModeUpdate(a.Mode)
	case core.QueueDuration:
		e.state.SetQueueTimeRemaining(a.Seconds)
	default:
		e.log.Warn().Type("action", action).Msg("unhandled queue action")
	}
}

// current reports whether a bus event belongs to the bound source. Events
// posted before the source was stopped or replaced are dropped.
func (e *Engine) current(session uint64, action core.PlaybackAction) bool {
	if e.backend.Current(session) {
		return true
	}
	e.log.Debug().
		Type("action", action).
		Uint64("session", session).
		Uint64("bound", e.backend.Session()).
		Msg("dropping stale bus event")
	return false
}

// play starts the track at the queue cursor from the beginning, or stops if
// there is none. Every call opens a new commit session.
func (e *Engine) play() {
	e.committed = false

	track := e.queue.CurrentTrack()
	if track == nil {
		e.stop()
		return
	}

	e.backend.SetState(core.StateStopped)
	e.backend.SetURI(track.URI)
	e.backend.SetState(core.StateLoading)
	e.backend.SetState(core.StatePlaying)
	e.state.SetCurrentTrack(track)

	e.log.Info().
		Str("title", track.Title).
		Str("artist", track.Artist).
		Msg("playing")
}

func (e *Engine) stop() {
	e.backend.SetState(core.StateStopped)
	e.playbackState(core.StateStopped)
}

func (e *Engine) skipNext() {
	e.queue.Next()
	e.play()
}

func (e *Engine) togglePlayPause() {
	if e.queue.IsEmpty() {
		return
	}

	if e.state.CurrentTrack() == nil {
		e.queue.SetPosition(0)
		if e.queue.CurrentTrack() != nil {
			e.play()
		}
		return
	}

	switch e.backend.State() {
	case core.StatePlaying:
		e.backend.SetState(core.StatePaused)
	case core.StatePaused, core.StateLoading:
		e.backend.SetState(core.StatePlaying)
	default:
		e.play()
	}
}

func (e *Engine) playbackState(s core.PlaybackState) {
	e.backend.ConfirmState(s)
	e.state.SetPlaybackState(s)

	if s == core.StateStopped {
		if e.state.CurrentTrack() != nil {
			e.state.SetCurrentTrack(nil)
		}
		e.committed = false
	}
}

// tick updates the position and records the listen once it crosses the
// commit threshold. It fires at most once per play session.
func (e *Engine) tick(seconds uint64) {
	track := e.state.CurrentTrack()
	if track == nil {
		return
	}

	position := float64(seconds)
	if p, ok := e.backend.PipelinePosition(); ok {
		position = p
	}
	e.state.SetPosition(uint64(position))

	if e.committed {
		return
	}

	duration := track.Duration
	if duration <= 0 {
		duration = e.backend.Duration()
	}
	if duration <= 0 || position/duration <= e.threshold {
		return
	}

	// Committed before recording: a failed write is logged, not retried
	// on later ticks of the same session.
	e.committed = true
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordPlay(track, e.now()); err != nil {
		e.log.Error().Err(err).Str("title", track.Title).Msg("recording play failed")
		return
	}
	e.log.Debug().Str("title", track.Title).Msg("play committed")
}

// seek clamps negative targets to zero and ignores targets past the end.
func (e *Engine) seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}

	duration := e.backend.Duration()
	if duration <= 0 {
		if track := e.queue.CurrentTrack(); track != nil {
			duration = track.Duration
		}
	}
	if duration <= 0 || seconds > duration {
		e.log.Debug().Float64("seconds", seconds).Float64("duration", duration).Msg("seek out of range")
		return
	}

	e.backend.Seek(seconds)
	if e.state.CurrentTrack() != nil {
		e.state.SetPosition(uint64(seconds))
	}
}

// removeTrack removes a queued track. If the playing track changes as a
// result, playback follows the new cursor when it was playing and stops
// otherwise.
func (e *Engine) removeTrack(index int) {
	before := e.queue.CurrentTrack()
	e.queue.RemoveTrack(index)

	after := e.queue.CurrentTrack()
	if after == before || after == nil || e.state.CurrentTrack() == nil {
		return
	}
	if e.backend.State() == core.StatePlaying {
		e.play()
		return
	}
	e.stop()
}

func (e *Engine) setCommitThreshold(fraction float64) {
	if fraction <= 0 || fraction > 1 {
		e.log.Warn().Float64("fraction", fraction).Msg("commit threshold out of range, ignoring")
		return
	}
	e.threshold = fraction
}
