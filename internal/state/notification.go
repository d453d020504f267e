package state

import "github.com/tessro/tonearm/internal/core"

// Notification names. Observers depend on these verbatim.
const (
	NameSong               = "song"
	NameTitle              = "title"
	NameArtist             = "artist"
	NameAlbum              = "album"
	NameDuration           = "duration"
	NameCover              = "cover"
	NamePosition           = "position"
	NamePlaying            = "playing"
	NameVolume             = "volume"
	NameState              = "state"
	NameRepeatMode         = "repeat-mode"
	NameQueueTitle         = "queue-title"
	NameQueueTimeRemaining = "queue-time-remaining"
	NameQueueUpdate        = "queue-update"
	NameQueueEmpty         = "queue-empty"
	NameQueueNonEmpty      = "queue-nonempty"
	NameQueuePosition      = "queue-position"
	NameQueueRepeatMode    = "queue-repeat-mode"
)

// Notification describes a single PlayerState change.
type Notification interface {
	Name() string
}

type (
	SongChanged     struct{ Track *core.Track }
	TitleChanged    struct{ Title string }
	ArtistChanged   struct{ Artist string }
	AlbumChanged    struct{ Album string }
	DurationChanged struct{ Seconds float64 }
	CoverChanged    struct{ CoverArt *int64 }

	// PositionChanged carries the elapsed seconds of the current track.
	PositionChanged struct{ Seconds uint64 }

	PlayingChanged    struct{ Playing bool }
	VolumeChanged     struct{ Volume float64 }
	StateChanged      struct{ State core.PlaybackState }
	RepeatModeChanged struct{ Mode core.RepeatMode }

	QueueTitleChanged         struct{ Title string }
	QueueTimeRemainingChanged struct{ Seconds float64 }
	QueueUpdated              struct{ Queue *core.Queue }
	QueueEmptied              struct{}
	QueueFilled               struct{}
	QueuePositionChanged      struct{ Position uint64 }
	QueueRepeatModeChanged    struct{ Mode core.RepeatMode }
)

func (SongChanged) Name() string               { return NameSong }
func (TitleChanged) Name() string              { return NameTitle }
func (ArtistChanged) Name() string             { return NameArtist }
func (AlbumChanged) Name() string              { return NameAlbum }
func (DurationChanged) Name() string           { return NameDuration }
func (CoverChanged) Name() string              { return NameCover }
func (PositionChanged) Name() string           { return NamePosition }
func (PlayingChanged) Name() string            { return NamePlaying }
func (VolumeChanged) Name() string             { return NameVolume }
func (StateChanged) Name() string              { return NameState }
func (RepeatModeChanged) Name() string         { return NameRepeatMode }
func (QueueTitleChanged) Name() string         { return NameQueueTitle }
func (QueueTimeRemainingChanged) Name() string { return NameQueueTimeRemaining }
func (QueueUpdated) Name() string              { return NameQueueUpdate }
func (QueueEmptied) Name() string              { return NameQueueEmpty }
func (QueueFilled) Name() string               { return NameQueueNonEmpty }
func (QueuePositionChanged) Name() string      { return NameQueuePosition }
func (QueueRepeatModeChanged) Name() string    { return NameQueueRepeatMode }
