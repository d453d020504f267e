//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"

	"github.com/tessro/tonearm/internal/backend"
	toneerrors "github.com/tessro/tonearm/internal/errors"
)

// Available indicates whether audio output is supported in this build.
const Available = true

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Pipeline is a backend.Pipeline that plays local files on the speaker.
type Pipeline struct {
	mu sync.Mutex

	log        zerolog.Logger
	sampleRate beep.SampleRate

	uri      string
	state    backend.PipelineState
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	linear   float64
	queued   bool   // chain handed to the speaker
	started  bool   // StreamStart posted for this source
	source   uint64 // advances on every teardown
	chain    uint64 // advances on every speaker hand-off

	bus  chan backend.Message
	done chan struct{}
	once sync.Once
}

// NewPipeline initializes the speaker and returns a Pipeline.
func NewPipeline(sampleRate int, buffer time.Duration, log zerolog.Logger) (*Pipeline, error) {
	sr := beep.SampleRate(sampleRate)
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sr, sr.N(buffer))
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("%w: %v", toneerrors.ErrAudioUnavailable, speakerErr)
	}

	return &Pipeline{
		log:        log,
		sampleRate: sr,
		linear:     1.0,
		bus:        make(chan backend.Message, 64),
		done:       make(chan struct{}),
	}, nil
}

func (p *Pipeline) SetURI(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.teardownLocked()
	p.uri = uri
	p.started = false
}

func (p *Pipeline) SetState(state backend.PipelineState) error {
	p.mu.Lock()
	msgs, err := p.setStateLocked(state)
	p.mu.Unlock()

	for _, m := range msgs {
		p.post(m)
	}
	return err
}

func (p *Pipeline) setStateLocked(state backend.PipelineState) ([]backend.Message, error) {
	old := p.state

	if state == backend.PipelineNull {
		p.teardownLocked()
		p.state = backend.PipelineNull
		return nil, nil
	}

	if p.uri == "" {
		return nil, fmt.Errorf("%w: no source bound", toneerrors.ErrPipelineState)
	}

	var msgs []backend.Message
	if p.streamer == nil {
		if err := p.openLocked(); err != nil {
			// Decode failures surface on the bus, like any other stream error.
			p.state = state
			return []backend.Message{
				backend.StateChangedMessage{Old: old, Current: state, Session: p.source},
				backend.ErrorMessage{Source: "decoder", Err: err, Debug: p.uri, Session: p.source},
			}, nil
		}
	}

	switch state {
	case backend.PipelinePaused:
		p.setPausedLocked(true)
	case backend.PipelinePlaying:
		if !p.queued {
			p.queueLocked()
		}
		p.setPausedLocked(false)
		if !p.started {
			p.started = true
			msgs = append(msgs,
				backend.StreamStartMessage{Session: p.source},
				backend.NewClockMessage{Session: p.source})
		}
	}

	p.state = state
	msgs = append(msgs, backend.StateChangedMessage{Old: old, Current: state, Session: p.source})
	return msgs, nil
}

func (p *Pipeline) openLocked() error {
	streamer, format, err := Decode(PathFromURI(p.uri))
	if err != nil {
		return err
	}

	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(4, format.SampleRate, p.sampleRate, streamer),
		Paused:   true,
	}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolumeLocked()
	return nil
}

func (p *Pipeline) queueLocked() {
	p.chain++
	chain, source := p.chain, p.source
	p.queued = true

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		go p.finished(chain, source)
	})))
}

func (p *Pipeline) finished(chain, source uint64) {
	p.mu.Lock()
	stale := chain != p.chain || !p.queued
	p.mu.Unlock()

	if stale {
		return
	}
	p.post(backend.EOSMessage{Session: source})
}

func (p *Pipeline) setPausedLocked(paused bool) {
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Pipeline) teardownLocked() {
	if p.queued {
		speaker.Clear()
		p.queued = false
	}
	if p.streamer != nil {
		if err := p.streamer.Close(); err != nil {
			p.log.Debug().Err(err).Msg("closing stream")
		}
	}
	p.chain++
	p.source++
	p.streamer = nil
	p.ctrl = nil
	p.volume = nil
	p.started = false
}

func (p *Pipeline) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return toneerrors.ErrNoCurrentTrack
	}

	sample := p.format.SampleRate.N(position)
	if sample < 0 || sample >= p.streamer.Len() {
		return toneerrors.ErrSeekOutOfRange
	}

	speaker.Lock()
	defer speaker.Unlock()
	return p.streamer.Seek(sample)
}

func (p *Pipeline) SetVolume(linear float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.linear = linear
	if p.volume == nil {
		return
	}
	speaker.Lock()
	p.applyVolumeLocked()
	speaker.Unlock()
}

// applyVolumeLocked maps the linear gain onto the base-2 volume effect.
func (p *Pipeline) applyVolumeLocked() {
	if p.linear <= 0 {
		p.volume.Silent = true
		p.volume.Volume = 0
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(p.linear)
}

func (p *Pipeline) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.linear
}

func (p *Pipeline) QueryPosition() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0, false
	}
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos), true
}

func (p *Pipeline) QueryDuration() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0, false
	}
	n := p.streamer.Len()
	if n <= 0 {
		return 0, false
	}
	return p.format.SampleRate.D(n), true
}

func (p *Pipeline) Session() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

func (p *Pipeline) Bus() <-chan backend.Message {
	return p.bus
}

func (p *Pipeline) post(msg backend.Message) {
	select {
	case p.bus <- msg:
	case <-p.done:
	}
}

// Close stops playback. The bus is left open; watchers stop on their own
// context.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.teardownLocked()
	p.state = backend.PipelineNull
	p.mu.Unlock()

	p.once.Do(func() { close(p.done) })
	return nil
}
