// Package backend wraps a media pipeline behind the four-state playback
// machine used by the player engine.
package backend

import (
	"fmt"
	"time"

	"github.com/tessro/tonearm/internal/core"
)

// PipelineState is a media pipeline state.
type PipelineState int

const (
	PipelineNull PipelineState = iota
	PipelineReady
	PipelinePaused
	PipelinePlaying
)

func (s PipelineState) String() string {
	switch s {
	case PipelineNull:
		return "null"
	case PipelineReady:
		return "ready"
	case PipelinePaused:
		return "paused"
	case PipelinePlaying:
		return "playing"
	default:
		return fmt.Sprintf("PipelineState(%d)", int(s))
	}
}

// Pipeline is the external media pipeline that decodes and outputs audio.
//
// Implementations must be safe for concurrent use: the bus watcher may flush
// the pipeline while the engine is issuing commands. A transition to
// PipelineNull flushes the pipeline and never posts a StateChangedMessage.
//
// Session identifies the bound source. It advances on every SetURI and every
// transition to PipelineNull, and every message posted on the bus carries
// the session it was posted in.
type Pipeline interface {
	SetURI(uri string)
	SetState(state PipelineState) error
	Seek(position time.Duration) error
	SetVolume(linear float64)
	Volume() float64
	QueryPosition() (time.Duration, bool)
	QueryDuration() (time.Duration, bool)
	Session() uint64
	Bus() <-chan Message
	Close() error
}

// Message is posted on a pipeline's bus.
type Message interface {
	session() uint64
}

// StateChangedMessage reports a completed pipeline transition.
type StateChangedMessage struct {
	Old     PipelineState
	Current PipelineState
	Session uint64
}

// EOSMessage reports the end of the stream.
type EOSMessage struct {
	Session uint64
}

// ErrorMessage reports a fatal stream error.
type ErrorMessage struct {
	Source  string
	Err     error
	Debug   string
	Session uint64
}

// StreamStartMessage reports that a new stream started decoding.
type StreamStartMessage struct {
	Session uint64
}

// NewClockMessage reports that the pipeline selected a new clock.
type NewClockMessage struct {
	Session uint64
}

func (m StateChangedMessage) session() uint64 { return m.Session }
func (m EOSMessage) session() uint64          { return m.Session }
func (m ErrorMessage) session() uint64        { return m.Session }
func (m StreamStartMessage) session() uint64  { return m.Session }
func (m NewClockMessage) session() uint64     { return m.Session }

// SessionOf returns the session msg was posted in.
func SessionOf(msg Message) uint64 {
	return msg.session()
}

// Stamp returns msg tagged with session.
func Stamp(msg Message, session uint64) Message {
	switch m := msg.(type) {
	case StateChangedMessage:
		m.Session = session
		return m
	case EOSMessage:
		m.Session = session
		return m
	case ErrorMessage:
		m.Session = session
		return m
	case StreamStartMessage:
		m.Session = session
		return m
	case NewClockMessage:
		m.Session = session
		return m
	default:
		return msg
	}
}

func toPipelineState(s core.PlaybackState) PipelineState {
	switch s {
	case core.StateLoading:
		return PipelineReady
	case core.StatePaused:
		return PipelinePaused
	case core.StatePlaying:
		return PipelinePlaying
	default:
		return PipelineNull
	}
}

func toPlaybackState(s PipelineState) core.PlaybackState {
	switch s {
	case PipelineReady:
		return core.StateLoading
	case PipelinePaused:
		return core.StatePaused
	case PipelinePlaying:
		return core.StatePlaying
	default:
		return core.StateStopped
	}
}
