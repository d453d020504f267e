// Package backendtest provides an in-memory Pipeline for tests.
package backendtest

import (
	"errors"
	"sync"
	"time"

	"github.com/tessro/tonearm/internal/backend"
)

// ErrRejected is returned by a Pipeline configured to fail transitions.
var ErrRejected = errors.New("state change rejected")

// Pipeline is a scripted backend.Pipeline. State changes are recorded and,
// unless disabled, echoed on the bus the way a real pipeline would.
type Pipeline struct {
	mu sync.Mutex

	URIs     []string
	States   []backend.PipelineState
	Seeks    []time.Duration
	Volumes  []float64
	Rejected map[backend.PipelineState]bool

	// SeekErr, when set, is returned from Seek.
	SeekErr error

	// Silent disables the StateChangedMessage echo.
	Silent bool

	state    backend.PipelineState
	volume   float64
	position time.Duration
	duration time.Duration
	hasDur   bool
	closed   bool
	session  uint64

	bus chan backend.Message
}

// New returns a Pipeline with a buffered bus.
func New() *Pipeline {
	return &Pipeline{
		Rejected: map[backend.PipelineState]bool{},
		volume:   1.0,
		bus:      make(chan backend.Message, 64),
	}
}

func (p *Pipeline) SetURI(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.URIs = append(p.URIs, uri)
	p.session++
	p.position = 0
	p.hasDur = false
}

func (p *Pipeline) SetState(state backend.PipelineState) error {
	p.mu.Lock()
	if p.Rejected[state] {
		p.mu.Unlock()
		return ErrRejected
	}
	old := p.state
	p.state = state
	p.States = append(p.States, state)
	if state == backend.PipelineNull {
		p.session++
	}
	session := p.session
	silent := p.Silent
	p.mu.Unlock()

	if state != backend.PipelineNull && !silent {
		p.Post(backend.StateChangedMessage{Old: old, Current: state, Session: session})
	}
	return nil
}

func (p *Pipeline) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SeekErr != nil {
		return p.SeekErr
	}
	p.Seeks = append(p.Seeks, position)
	p.position = position
	return nil
}

func (p *Pipeline) SetVolume(linear float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = linear
	p.Volumes = append(p.Volumes, linear)
}

func (p *Pipeline) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// DriftVolume changes the reported volume without recording a SetVolume call.
func (p *Pipeline) DriftVolume(linear float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = linear
}

func (p *Pipeline) QueryPosition() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.state == backend.PipelinePlaying || p.state == backend.PipelinePaused
}

// SetPosition sets the reported playhead.
func (p *Pipeline) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = d
}

func (p *Pipeline) QueryDuration() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration, p.hasDur
}

// SetDuration makes the duration query succeed with d.
func (p *Pipeline) SetDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = d
	p.hasDur = true
}

// State returns the current pipeline state.
func (p *Pipeline) State() backend.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastVolume returns the most recent SetVolume argument.
func (p *Pipeline) LastVolume() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Volumes) == 0 {
		return 0, false
	}
	return p.Volumes[len(p.Volumes)-1], true
}

// StateHistory returns a copy of the requested states.
func (p *Pipeline) StateHistory() []backend.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]backend.PipelineState(nil), p.States...)
}

// URIHistory returns a copy of the bound URIs.
func (p *Pipeline) URIHistory() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.URIs...)
}

// SeekHistory returns a copy of the satisfied seeks.
func (p *Pipeline) SeekHistory() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.Seeks...)
}

// Reject makes transitions to state fail.
func (p *Pipeline) Reject(state backend.PipelineState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Rejected[state] = true
}

// Session returns the current source session.
func (p *Pipeline) Session() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Post places msg on the bus. A message without a session is stamped with
// the current one.
func (p *Pipeline) Post(msg backend.Message) {
	if backend.SessionOf(msg) == 0 {
		msg = backend.Stamp(msg, p.Session())
	}
	p.bus <- msg
}

func (p *Pipeline) Bus() <-chan backend.Message {
	return p.bus
}

func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.bus)
	}
	return nil
}
