package core

// PlaybackAction is a message on the playback channel. It is produced by the
// UI-facing API and by the audio backend's bus and clock goroutines, and
// consumed only by the player engine.
type PlaybackAction interface {
	playbackAction()
}

// QueueAction is a message emitted by the queue on every transition.
type QueueAction interface {
	queueAction()
}

// Transport actions.
type (
	Play            struct{}
	Pause           struct{}
	TogglePlayPause struct{}
	Stop            struct{}
	SkipPrevious    struct{}
	SkipNext        struct{}
	Raise           struct{}

	// Seek moves the playhead of the current track.
	Seek struct{ Seconds float64 }

	// SetVolume sets the perceptual volume in [0,1].
	SetVolume struct{ Ratio float64 }

	// QueueRepeatMode requests a repeat mode change (toggle semantics).
	QueueRepeatMode struct{ Mode RepeatMode }
)

// Backend events. Events that come off the pipeline bus carry the session
// of the source they were posted for.
type (
	// Tick is emitted once per second by the pipeline clock while playing.
	Tick struct{ Seconds uint64 }

	// EOS signals the end of the current stream.
	EOS struct{ Session uint64 }

	// Error signals a playback error. The backend has already stopped.
	Error struct {
		Err     error
		Session uint64
	}

	// PlaybackStateChanged reports a confirmed pipeline state transition.
	PlaybackStateChanged struct {
		State   PlaybackState
		Session uint64
	}

	// StreamStarted is emitted when a new stream begins decoding.
	StreamStarted struct{ Session uint64 }

	// ClockStarted is emitted when the pipeline selects a new clock.
	ClockStarted struct{ Session uint64 }

	// DurationDiscovered carries the stream duration once the pipeline knows it.
	DurationDiscovered struct {
		Seconds float64
		URI     string
	}
)

// Queue commands.
type (
	ClearPlayTrack struct{ Track *Track }
	AddTrack       struct{ Track *Track }
	ClearPlayAlbum struct {
		Tracks []*Track
		Title  string
	}
	AddAlbum     struct{ Tracks []*Track }
	GoToPosition struct{ Index uint64 }
	RemoveTrack  struct{ Index int }
	ReorderTrack struct{ Old, New int }
)

// Settings.
type (
	SetShuffleLoop     struct{ Enabled bool }
	SetCommitThreshold struct{ Fraction float64 }
)

func (Play) playbackAction()                 {}
func (Pause) playbackAction()                {}
func (TogglePlayPause) playbackAction()      {}
func (Stop) playbackAction()                 {}
func (SkipPrevious) playbackAction()         {}
func (SkipNext) playbackAction()             {}
func (Raise) playbackAction()                {}
func (Seek) playbackAction()                 {}
func (SetVolume) playbackAction()            {}
func (QueueRepeatMode) playbackAction()      {}
func (Tick) playbackAction()                 {}
func (EOS) playbackAction()                  {}
func (Error) playbackAction()                {}
func (PlaybackStateChanged) playbackAction() {}
func (StreamStarted) playbackAction()        {}
func (ClockStarted) playbackAction()         {}
func (DurationDiscovered) playbackAction()   {}
func (ClearPlayTrack) playbackAction()       {}
func (AddTrack) playbackAction()             {}
func (ClearPlayAlbum) playbackAction()       {}
func (AddAlbum) playbackAction()             {}
func (GoToPosition) playbackAction()         {}
func (RemoveTrack) playbackAction()          {}
func (ReorderTrack) playbackAction()         {}
func (SetShuffleLoop) playbackAction()       {}
func (SetCommitThreshold) playbackAction()   {}

// Queue events.
type (
	QueueUpdate            struct{}
	QueueEmpty             struct{}
	QueueNonEmpty          struct{}
	QueuePositionUpdate    struct{ Position uint64 }
	QueueRepeatModeChanged struct{ Mode RepeatMode }

	// QueueDuration is the time remaining from the cursor to the end, in seconds.
	QueueDuration struct{ Seconds float64 }
)

func (QueueUpdate) queueAction()            {}
func (QueueEmpty) queueAction()             {}
func (QueueNonEmpty) queueAction()          {}
func (QueuePositionUpdate) queueAction()    {}
func (QueueRepeatModeChanged) queueAction() {}
func (QueueDuration) queueAction()          {}
