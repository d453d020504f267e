package backend

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/tonearm/internal/core"
)

const (
	// DefaultTickInterval is how often Tick is emitted while playing.
	DefaultTickInterval = time.Second

	// DefaultPollInterval is how often the duration query is retried after a
	// stream starts.
	DefaultPollInterval = 10 * time.Millisecond

	// volumeDeadZone is the perceptual volume at or below which output is muted.
	volumeDeadZone = 0.05

	volumeEpsilon = 1e-4
)

// Sink receives actions produced by the backend's goroutines.
type Sink interface {
	Send(action core.PlaybackAction) bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Backend) {
		b.log = log
	}
}

// WithTickInterval sets the clock tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.tickInterval = d
		}
	}
}

// WithPollInterval sets the duration poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// Backend owns a Pipeline and the playback state cached from it.
//
// All methods except Watch must be called from the engine's consumer
// goroutine. The goroutines Backend starts (bus watcher, clock, duration
// poll) only send actions to the Sink.
type Backend struct {
	pipeline Pipeline
	sink     Sink
	log      zerolog.Logger

	tickInterval time.Duration
	pollInterval time.Duration

	uri      string
	session  uint64 // pipeline session of the bound source
	state    core.PlaybackState
	volume   float64 // linear
	duration float64 // seconds, 0 until discovered

	stopClock context.CancelFunc
	stopPoll  context.CancelFunc
}

// New creates a Backend around pipeline. Actions are delivered to sink.
func New(pipeline Pipeline, sink Sink, opts ...Option) *Backend {
	b := &Backend{
		pipeline:     pipeline,
		sink:         sink,
		log:          zerolog.Nop(),
		tickInterval: DefaultTickInterval,
		pollInterval: DefaultPollInterval,
		state:        core.StateStopped,
		volume:       1.0,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// URI returns the bound source.
func (b *Backend) URI() string {
	return b.uri
}

// Session returns the pipeline session of the bound source.
func (b *Backend) Session() uint64 {
	return b.session
}

// Current reports whether a bus event posted in session belongs to the bound
// source. Events posted before the source was stopped or replaced do not.
func (b *Backend) Current(session uint64) bool {
	return session == b.session
}

// State returns the last confirmed or requested state.
func (b *Backend) State() core.PlaybackState {
	return b.state
}

// Volume returns the cached linear volume.
func (b *Backend) Volume() float64 {
	return b.volume
}

// Duration returns the discovered duration of the current stream in
// seconds, or 0 if it is not known yet.
func (b *Backend) Duration() float64 {
	return b.duration
}

// SetURI binds a new source. Any running clock or duration poll is stopped.
func (b *Backend) SetURI(uri string) {
	b.cancelClock()
	b.cancelPoll()
	b.uri = uri
	b.duration = 0
	b.pipeline.SetURI(uri)
	b.session = b.pipeline.Session()
	b.log.Debug().Str("uri", uri).Uint64("session", b.session).Msg("source bound")
}

// SetState requests a pipeline transition. Failures are logged and leave the
// cached state unchanged.
func (b *Backend) SetState(state core.PlaybackState) {
	target := toPipelineState(state)
	if err := b.pipeline.SetState(target); err != nil {
		b.log.Error().Err(err).
			Stringer("from", b.state).
			Stringer("to", state).
			Msg("pipeline state change failed")
		return
	}

	b.state = state
	if state != core.StatePlaying {
		b.cancelClock()
	}
	if state == core.StateStopped {
		b.cancelPoll()
		b.session = b.pipeline.Session()
	}
	b.log.Debug().Stringer("state", state).Msg("state requested")
}

// ConfirmState records a transition reported by the pipeline bus. Entering
// Playing re-asserts the cached volume if the pipeline drifted and starts the
// clock; any other state stops it.
func (b *Backend) ConfirmState(state core.PlaybackState) {
	b.state = state
	if state != core.StatePlaying {
		b.cancelClock()
		if state == core.StateStopped {
			b.cancelPoll()
		}
		return
	}

	if current := b.pipeline.Volume(); math.Abs(current-b.volume) > volumeEpsilon {
		b.log.Debug().
			Float64("pipeline", current).
			Float64("cached", b.volume).
			Msg("re-asserting volume")
		b.pipeline.SetVolume(b.volume)
	}
	b.startClock()
}

// ResetClock restarts the tick clock if playing.
func (b *Backend) ResetClock() {
	if b.state == core.StatePlaying {
		b.startClock()
	}
}

// Seek repositions the current stream. Unsatisfiable seeks are ignored.
func (b *Backend) Seek(seconds float64) {
	if err := b.pipeline.Seek(secondsToDuration(seconds)); err != nil {
		b.log.Debug().Err(err).Float64("seconds", seconds).Msg("seek ignored")
	}
}

// SetVolume sets the perceptual volume. The ratio is clamped to [0,1],
// values in the dead zone are muted, and the result is cubed into the linear
// gain handed to the pipeline. It returns the effective perceptual volume.
func (b *Backend) SetVolume(ratio float64) float64 {
	v := PerceptualVolume(ratio)
	linear := v * v * v
	b.volume = linear
	b.pipeline.SetVolume(linear)
	return v
}

// PerceptualVolume clamps ratio to [0,1] and applies the mute dead zone.
func PerceptualVolume(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return 0
	}
	v := math.Max(0, math.Min(1, ratio))
	if v <= volumeDeadZone {
		return 0
	}
	return v
}

// PipelinePosition queries the pipeline for the playhead in seconds.
func (b *Backend) PipelinePosition() (float64, bool) {
	pos, ok := b.pipeline.QueryPosition()
	if !ok {
		return 0, false
	}
	return pos.Seconds(), true
}

// PipelineDuration queries the pipeline for the stream duration in seconds.
func (b *Backend) PipelineDuration() (float64, bool) {
	d, ok := b.pipeline.QueryDuration()
	if !ok || d <= 0 {
		return 0, false
	}
	return d.Seconds(), true
}

// StartDurationPoll retries the duration query until the pipeline answers,
// then sends DurationDiscovered and stops.
func (b *Backend) StartDurationPoll() {
	b.cancelPoll()

	ctx, cancel := context.WithCancel(context.Background())
	b.stopPoll = cancel
	uri := b.uri

	go func() {
		ticker := time.NewTicker(b.pollInterval)
		defer ticker.Stop()

		for {
			if d, ok := b.pipeline.QueryDuration(); ok && d > 0 {
				b.sink.Send(core.DurationDiscovered{Seconds: d.Seconds(), URI: uri})
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// SetDuration caches a discovered duration. Results for a source that is no
// longer bound are ignored.
func (b *Backend) SetDuration(seconds float64, uri string) bool {
	if uri != b.uri {
		return false
	}
	b.duration = seconds
	b.cancelPoll()
	return true
}

// Watch forwards bus messages to the sink until ctx is done or the bus is
// closed. It runs on its own goroutine and never touches cached state.
func (b *Backend) Watch(ctx context.Context) error {
	bus := b.pipeline.Bus()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-bus:
			if !ok {
				return nil
			}
			b.dispatch(msg)
		}
	}
}

func (b *Backend) dispatch(msg Message) {
	session := msg.session()
	switch m := msg.(type) {
	case StateChangedMessage:
		b.sink.Send(core.PlaybackStateChanged{State: toPlaybackState(m.Current), Session: session})
	case EOSMessage:
		b.sink.Send(core.EOS{Session: session})
	case ErrorMessage:
		b.log.Error().Err(m.Err).
			Str("source", m.Source).
			Str("debug", m.Debug).
			Msg("playback error")
		if err := b.pipeline.SetState(PipelineNull); err != nil {
			b.log.Error().Err(err).Msg("flush after error failed")
		}
		b.sink.Send(core.PlaybackStateChanged{State: core.StateStopped, Session: session})
		b.sink.Send(core.Error{Err: m.Err, Session: session})
	case StreamStartMessage:
		b.sink.Send(core.StreamStarted{Session: session})
	case NewClockMessage:
		b.sink.Send(core.ClockStarted{Session: session})
	}
}

// Close stops background work and releases the pipeline.
func (b *Backend) Close() error {
	b.cancelClock()
	b.cancelPoll()
	if err := b.pipeline.SetState(PipelineNull); err != nil {
		b.log.Debug().Err(err).Msg("flush on close failed")
	}
	b.state = core.StateStopped
	return b.pipeline.Close()
}

func (b *Backend) startClock() {
	b.cancelClock()

	ctx, cancel := context.WithCancel(context.Background())
	b.stopClock = cancel

	go func() {
		ticker := time.NewTicker(b.tickInterval)
		defer ticker.Stop()

		var elapsed uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			elapsed++
			seconds := elapsed
			if pos, ok := b.pipeline.QueryPosition(); ok {
				seconds = uint64(pos / time.Second)
			}
			b.sink.Send(core.Tick{Seconds: seconds})
		}
	}()
}

func (b *Backend) cancelClock() {
	if b.stopClock != nil {
		b.stopClock()
		b.stopClock = nil
	}
}

func (b *Backend) cancelPoll() {
	if b.stopPoll != nil {
		b.stopPoll()
		b.stopPoll = nil
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
