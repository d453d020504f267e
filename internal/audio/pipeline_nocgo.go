//go:build !((linux && cgo) || windows || darwin)

package audio

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/tonearm/internal/backend"
	toneerrors "github.com/tessro/tonearm/internal/errors"
)

// Available indicates whether audio output is supported in this build.
// Speaker output needs cgo on Linux.
const Available = false

// Pipeline is unavailable without cgo.
type Pipeline struct{}

// NewPipeline always fails when cgo is disabled.
func NewPipeline(sampleRate int, buffer time.Duration, log zerolog.Logger) (*Pipeline, error) {
	return nil, toneerrors.ErrAudioUnavailable
}

func (p *Pipeline) SetURI(string) {}
func (p *Pipeline) SetState(backend.PipelineState) error { return toneerrors.ErrAudioUnavailable }
func (p *Pipeline) Seek(time.Duration) error { return toneerrors.ErrAudioUnavailable }
func (p *Pipeline) SetVolume(float64) {}
func (p *Pipeline) Volume() float64 { return 0 }
func (p *Pipeline) QueryPosition() (time.Duration, bool) { return 0, false }
func (p *Pipeline) QueryDuration() (time.Duration, bool) { return 0, false }
func (p *Pipeline) Session() uint64 { return 0 }
func (p *Pipeline) Bus() <-chan backend.Message { return nil }
func (p *Pipeline) Close() error { return nil }
