package history

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/mailbox"
)

// ErrClosed is returned by RecordPlay after Close.
var ErrClosed = errors.New("recorder closed")

type play struct {
	track *core.Track
	at    time.Time
}

// AsyncRecorder hands listens to a worker goroutine so callers never wait
// on the underlying Recorder. Errors from the worker are logged.
type AsyncRecorder struct {
	next core.Recorder
	log  zerolog.Logger

	pending *mailbox.Mailbox[play]
	done    chan struct{}
	stop    chan struct{}
	once    sync.Once
}

// NewAsyncRecorder starts a worker that forwards listens to next.
func NewAsyncRecorder(next core.Recorder, log zerolog.Logger) *AsyncRecorder {
	r := &AsyncRecorder{
		next:    next,
		log:     log,
		pending: mailbox.New[play](),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	go r.run()
	return r
}

// RecordPlay queues a listen. It only fails after Close.
func (r *AsyncRecorder) RecordPlay(track *core.Track, at time.Time) error {
	if !r.pending.Send(play{track: track, at: at}) {
		return ErrClosed
	}
	return nil
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for {
		r.flush()
		select {
		case <-r.pending.Ready():
		case <-r.stop:
			r.flush()
			return
		}
	}
}

func (r *AsyncRecorder) flush() {
	for {
		p, ok := r.pending.TryRecv()
		if !ok {
			return
		}
		if err := r.next.RecordPlay(p.track, p.at); err != nil {
			r.log.Error().Err(err).Str("uri", uriOf(p.track)).Msg("recording play failed")
		}
	}
}

// Close stops accepting listens and waits for queued ones to be written.
func (r *AsyncRecorder) Close() error {
	r.once.Do(func() {
		r.pending.Close()
		close(r.stop)
	})
	<-r.done
	return nil
}

func uriOf(t *core.Track) string {
	if t == nil {
		return ""
	}
	return t.URI
}
