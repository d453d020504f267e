// Package queue implements the ordered play queue with repeat and shuffle
// policies. A Queue is not safe for concurrent use; it is owned by the
// player engine and every transition is reported through an Emitter.
package queue

import (
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/tessro/tonearm/internal/core"
)

// Emitter receives the queue's transition events in order.
type Emitter func(core.QueueAction)

// Option configures a Queue.
type Option func(*Queue)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(q *Queue) {
		q.rng = r
	}
}

// WithShuffleLoop sets whether Shuffle mode wraps at the end of the queue.
func WithShuffleLoop(enabled bool) Option {
	return func(q *Queue) {
		q.shuffleLoop = enabled
	}
}

// WithLogger sets the queue's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(q *Queue) {
		q.log = log
	}
}

// Queue is the play queue.
type Queue struct {
	emit Emitter
	rng  *rand.Rand
	log  zerolog.Logger

	tracks     []*core.Track
	sequential []*core.Track // pre-shuffle order
	position   int
	current    *core.Track

	repeat      core.RepeatMode
	shuffleLoop bool
}

// New creates an empty queue in Normal repeat mode.
func New(emit Emitter, opts ...Option) *Queue {
	q := &Queue{
		emit: emit,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.emit == nil {
		q.emit = func(core.QueueAction) {}
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return q
}

// CurrentTrack returns the track at the cursor, or nil.
func (q *Queue) CurrentTrack() *core.Track {
	return q.current
}

// Position returns the cursor index.
func (q *Queue) Position() int {
	return q.position
}

// RepeatMode returns the active repeat mode.
func (q *Queue) RepeatMode() core.RepeatMode {
	return q.repeat
}

// ShuffleLoop reports whether Shuffle mode wraps at the end.
func (q *Queue) ShuffleLoop() bool {
	return q.shuffleLoop
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Tracks returns a copy of the queue in play order.
func (q *Queue) Tracks() []*core.Track {
	return append([]*core.Track(nil), q.tracks...)
}

// SequentialTracks returns a copy of the queue in its pre-shuffle order.
func (q *Queue) SequentialTracks() []*core.Track {
	return append([]*core.Track(nil), q.sequential...)
}

// TrackIDs returns the library ids of the queued tracks in play order.
func (q *Queue) TrackIDs() []int64 {
	return lo.Map(q.tracks, func(t *core.Track, _ int) int64 {
		return t.ID
	})
}

// Snapshot returns a read-only copy for observers.
func (q *Queue) Snapshot() *core.Queue {
	return &core.Queue{
		Tracks:       q.Tracks(),
		CurrentIndex: q.position,
	}
}

// SetShuffleLoop sets whether Shuffle mode wraps at the end.
func (q *Queue) SetShuffleLoop(enabled bool) {
	q.shuffleLoop = enabled
}

// SetSong replaces the queue with a single track.
func (q *Queue) SetSong(track *core.Track) {
	if track == nil {
		return
	}
	q.SetAlbum([]*core.Track{track})
}

// SetAlbum replaces the queue with tracks and moves the cursor to 0.
// An empty album ends the queue.
func (q *Queue) SetAlbum(tracks []*core.Track) {
	tracks = lo.Compact(tracks)
	if len(tracks) == 0 {
		q.EndQueue()
		return
	}

	q.tracks = append([]*core.Track(nil), tracks...)
	q.sequential = append([]*core.Track(nil), tracks...)
	q.position = 0
	if q.repeat == core.RepeatShuffle {
		q.shuffleSuffix()
	}

	q.emit(core.QueueNonEmpty{})
	q.emit(core.QueueUpdate{})
	q.refresh()
}

// AddTrack appends a single track.
func (q *Queue) AddTrack(track *core.Track) {
	if track == nil {
		return
	}
	q.AddTracks([]*core.Track{track})
}

// AddTracks appends tracks to the end of the queue. In Shuffle mode the
// unplayed suffix is reshuffled; tracks at or before the cursor keep their
// slots.
func (q *Queue) AddTracks(tracks []*core.Track) {
	tracks = lo.Compact(tracks)
	if len(tracks) == 0 {
		return
	}

	wasEmpty := q.IsEmpty()
	q.tracks = append(q.tracks, tracks...)
	q.sequential = append(q.sequential, tracks...)
	if wasEmpty {
		q.position = 0
	}
	if q.repeat == core.RepeatShuffle {
		q.shuffleSuffix()
	}

	q.emit(core.QueueNonEmpty{})
	q.emit(core.QueueUpdate{})
	q.refresh()
}

// SetPosition moves the cursor to index i. An index past the end ends the
// queue.
func (q *Queue) SetPosition(i uint64) {
	if q.IsEmpty() {
		q.current = nil
		return
	}
	if i >= uint64(len(q.tracks)) {
		q.EndQueue()
		return
	}

	q.position = int(i)
	q.refresh()
}

// RemoveTrack removes the track at index i. The cursor keeps pointing at the
// playing track when another track is removed. Removing the playing track
// leaves the cursor on its successor, or wraps to 0 when it was last.
func (q *Queue) RemoveTrack(i int) {
	if i < 0 || i >= len(q.tracks) {
		return
	}
	if len(q.tracks) <= 1 {
		q.EndQueue()
		return
	}

	removed := q.tracks[i]
	q.tracks = append(q.tracks[:i:i], q.tracks[i+1:]...)
	if idx := lo.IndexOf(q.sequential, removed); idx >= 0 {
		q.sequential = append(q.sequential[:idx:idx], q.sequential[idx+1:]...)
	}

	switch {
	case i < q.position:
		q.position--
	case q.position >= len(q.tracks):
		q.position = 0
	}

	q.emit(core.QueueUpdate{})
	q.refresh()
}

// ReorderTrack swaps the tracks at oldIndex and newIndex. The cursor follows
// the playing track: it moves only when the playing track is one of the two
// swapped. This departs from re-anchoring the cursor to newIndex on every
// reorder, which would change the playing position when two other tracks
// are swapped.
func (q *Queue) ReorderTrack(oldIndex, newIndex int) {
	n := len(q.tracks)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n || oldIndex == newIndex {
		return
	}

	q.tracks[oldIndex], q.tracks[newIndex] = q.tracks[newIndex], q.tracks[oldIndex]
	if q.repeat != core.RepeatShuffle {
		q.sequential[oldIndex], q.sequential[newIndex] = q.sequential[newIndex], q.sequential[oldIndex]
	}

	switch q.position {
	case oldIndex:
		q.position = newIndex
	case newIndex:
		q.position = oldIndex
	}

	q.emit(core.QueueUpdate{})
	q.refresh()
}

// Next advances the cursor according to the repeat mode.
func (q *Queue) Next() {
	if q.IsEmpty() {
		q.current = nil
		q.emit(core.QueueEmpty{})
		return
	}

	next := q.position + 1
	atEnd := next >= len(q.tracks)

	switch q.repeat {
	case core.RepeatLoopSong:
		q.emit(core.QueuePositionUpdate{Position: uint64(q.position)})
		q.CalculateTimeRemaining()
		return
	case core.RepeatLoop:
		if atEnd {
			next = 0
		}
	case core.RepeatShuffle:
		if atEnd {
			if !q.shuffleLoop {
				q.EndQueue()
				return
			}
			next = 0
		}
	default:
		if atEnd {
			q.EndQueue()
			return
		}
	}

	q.position = next
	q.refresh()
}

// Previous moves the cursor back according to the repeat mode.
func (q *Queue) Previous() {
	if q.IsEmpty() {
		q.current = nil
		q.emit(core.QueueEmpty{})
		return
	}

	prev := q.position - 1
	switch q.repeat {
	case core.RepeatLoopSong:
		q.emit(core.QueuePositionUpdate{Position: uint64(q.position)})
		q.CalculateTimeRemaining()
		return
	case core.RepeatLoop, core.RepeatShuffle:
		if prev < 0 {
			prev = len(q.tracks) - 1
		}
	default:
		if prev < 0 {
			prev = 0
		}
	}

	q.position = prev
	q.refresh()
}

// OnRepeatChange applies a repeat mode request with toggle semantics:
// requesting the active mode returns to Normal.
func (q *Queue) OnRepeatChange(requested core.RepeatMode) core.RepeatMode {
	mode := requested
	if mode == q.repeat {
		mode = core.RepeatNormal
	}

	previous := q.repeat
	q.repeat = mode

	switch {
	case mode == core.RepeatShuffle:
		q.shuffleSuffix()
		q.emit(core.QueueUpdate{})
	case previous == core.RepeatShuffle:
		q.log.Debug().Msg("restoring queue from sequential order")
		q.tracks = append([]*core.Track(nil), q.sequential...)
		if q.current != nil {
			if idx := lo.IndexOf(q.tracks, q.current); idx >= 0 {
				q.position = idx
			}
		}
		q.emit(core.QueueUpdate{})
		if !q.IsEmpty() {
			q.refresh()
		}
	}

	q.emit(core.QueueRepeatModeChanged{Mode: mode})
	return mode
}

// CalculateTimeRemaining sums the durations from the cursor to the end,
// inclusive, and emits the result.
func (q *Queue) CalculateTimeRemaining() float64 {
	var total float64
	if q.position < len(q.tracks) {
		total = lo.SumBy(q.tracks[q.position:], func(t *core.Track) float64 {
			return t.Duration
		})
	}
	q.emit(core.QueueDuration{Seconds: total})
	return total
}

// EndQueue clears the queue and emits QueueEmpty.
func (q *Queue) EndQueue() {
	q.tracks = nil
	q.sequential = nil
	q.position = 0
	q.current = nil
	q.emit(core.QueueEmpty{})
}

func (q *Queue) refresh() {
	q.current = q.tracks[q.position]
	q.emit(core.QueuePositionUpdate{Position: uint64(q.position)})
	q.CalculateTimeRemaining()
}

// shuffleSuffix permutes the tracks strictly after the cursor.
func (q *Queue) shuffleSuffix() {
	start := q.position + 1
	if start >= len(q.tracks) {
		q.log.Debug().Msg("nothing left to shuffle")
		return
	}

	suffix := q.tracks[start:]
	q.rng.Shuffle(len(suffix), func(i, j int) {
		suffix[i], suffix[j] = suffix[j], suffix[i]
	})
	q.log.Debug().Int("shuffled", len(suffix)).Msg("shuffled upcoming tracks")
}
