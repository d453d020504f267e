// Package player coordinates the audio backend, the play queue and the
// observable player state.
//
// An Engine is driven by two mailboxes: playback actions (from the public
// API and from the backend's bus, clock and poll goroutines) and queue
// actions (emitted by the queue itself). Run is the only goroutine that
// touches the backend, the queue or the session flags.
package player

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/tonearm/internal/backend"
	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/mailbox"
	"github.com/tessro/tonearm/internal/queue"
	"github.com/tessro/tonearm/internal/state"
)

// DefaultCommitThreshold is the fraction of a track that must be heard before
// the listen is recorded.
const DefaultCommitThreshold = 0.95

// Option configures an Engine.
type Option func(*options)

type options struct {
	log         zerolog.Logger
	recorder    core.Recorder
	threshold   float64
	shuffleLoop bool
	volume      *float64
	repeat      core.RepeatMode
	rng         *rand.Rand
	now         func() time.Time
	onRaise     func()
	backendOpts []backend.Option
}

// WithLogger sets the engine's logger. Components log with a "component"
// field derived from it.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRecorder sets where committed listens are recorded.
func WithRecorder(r core.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithCommitThreshold sets the initial commit threshold.
func WithCommitThreshold(fraction float64) Option {
	return func(o *options) {
		o.threshold = fraction
	}
}

// WithShuffleLoop sets whether Shuffle mode wraps.
func WithShuffleLoop(enabled bool) Option {
	return func(o *options) {
		o.shuffleLoop = enabled
	}
}

// WithVolume sets the initial perceptual volume.
func WithVolume(ratio float64) Option {
	return func(o *options) {
		o.volume = &ratio
	}
}

// WithRepeatMode sets the initial repeat mode.
func WithRepeatMode(mode core.RepeatMode) Option {
	return func(o *options) {
		o.repeat = mode
	}
}

// WithRand sets the shuffle random source.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithClock sets the time source for recorded listens.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRaiseHandler sets the callback run when a Raise action is processed.
func WithRaiseHandler(fn func()) Option {
	return func(o *options) {
		o.onRaise = fn
	}
}

// WithBackendOptions passes options through to the audio backend.
func WithBackendOptions(opts ...backend.Option) Option {
	return func(o *options) {
		o.backendOpts = append(o.backendOpts, opts...)
	}
}

// Engine is the player orchestrator.
type Engine struct {
	log      zerolog.Logger
	recorder core.Recorder
	now      func() time.Time
	onRaise  func()

	backend *backend.Backend
	queue   *queue.Queue
	state   *state.PlayerState

	playback *mailbox.Mailbox[core.PlaybackAction]
	queueBox *mailbox.Mailbox[core.QueueAction]

	committed bool
	threshold float64
}

var _ core.Controller = (*Engine)(nil)

// New creates an Engine that plays through pipeline.
func New(pipeline backend.Pipeline, opts ...Option) *Engine {
	o := options{
		log:       zerolog.Nop(),
		threshold: DefaultCommitThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		log:       o.log.With().Str("component", "player").Logger(),
		recorder:  o.recorder,
		now:       o.now,
		onRaise:   o.onRaise,
		state:     state.New(),
		playback:  mailbox.New[core.PlaybackAction](),
		queueBox:  mailbox.New[core.QueueAction](),
		threshold: DefaultCommitThreshold,
	}
	e.setCommitThreshold(o.threshold)

	backendOpts := append([]backend.Option{
		backend.WithLogger(o.log.With().Str("component", "backend").Logger()),
	}, o.backendOpts...)
	e.backend = backend.New(pipeline, e.playback, backendOpts...)

	queueOpts := []queue.Option{
		queue.WithShuffleLoop(o.shuffleLoop),
		queue.WithLogger(o.log.With().Str("component", "queue").Logger()),
	}
	if o.rng != nil {
		queueOpts = append(queueOpts, queue.WithRand(o.rng))
	}
	e.queue = queue.New(func(a core.QueueAction) { e.queueBox.Send(a) }, queueOpts...)

	if o.volume != nil {
		e.playback.Send(core.SetVolume{Ratio: *o.volume})
	}
	if o.repeat != core.RepeatNormal {
		e.playback.Send(core.QueueRepeatMode{Mode: o.repeat})
	}
	return e
}

// State returns the observable player state.
func (e *Engine) State() *state.PlayerState {
	return e.state
}

// Run drains both mailboxes until ctx is done, then releases the backend.
func (e *Engine) Run(ctx context.Context) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	go func() {
		if err := e.backend.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			e.log.Error().Err(err).Msg("bus watcher stopped")
		}
	}()

	for {
		e.drain()

		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		case <-e.playback.Ready():
		case <-e.queueBox.Ready():
		}
	}
}

func (e *Engine) shutdown() {
	e.playback.Close()
	e.queueBox.Close()
	if err := e.backend.Close(); err != nil {
		e.log.Debug().Err(err).Msg("closing backend")
	}
}

// drain processes pending actions until both mailboxes are empty. Queue
// actions produced by a playback action are applied before the next
// playback action is taken.
func (e *Engine) drain() {
	for {
		e.drainQueue()

		action, ok := e.playback.TryRecv()
		if !ok {
			return
		}
		e.handlePlayback(action)
	}
}

func (e *Engine) drainQueue() {
	for {
		action, ok := e.queueBox.TryRecv()
		if !ok {
			return
		}
		e.handleQueue(action)
	}
}

func (e *Engine) send(action core.PlaybackAction) {
	if !e.playback.Send(action) {
		e.log.Debug().Type("action", action).Msg("engine stopped, action dropped")
	}
}
