package backend_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tessro/tonearm/internal/backend"
	"github.com/tessro/tonearm/internal/backend/backendtest"
	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/mailbox"
)

func newBackend(t *testing.T, opts ...backend.Option) (*backend.Backend, *backendtest.Pipeline, *mailbox.Mailbox[core.PlaybackAction]) {
	t.Helper()
	p := backendtest.New()
	mb := mailbox.New[core.PlaybackAction]()
	b := backend.New(p, mb, opts...)
	t.Cleanup(func() { _ = b.Close() })
	return b, p, mb
}

// waitFor receives actions until match returns true or the timeout elapses.
func waitFor(t *testing.T, mb *mailbox.Mailbox[core.PlaybackAction], match func(core.PlaybackAction) bool) core.PlaybackAction {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		for {
			a, ok := mb.TryRecv()
			if !ok {
				break
			}
			if match(a) {
				return a
			}
		}
		select {
		case <-mb.Ready():
		case <-deadline:
			t.Fatal("timed out waiting for action")
			return nil
		}
	}
}

func TestSetVolumeCurve(t *testing.T) {
	tests := []struct {
		name        string
		ratio       float64
		wantLinear  float64
		wantPercept float64
	}{
		{"dead zone", 0.03, 0, 0},
		{"dead zone edge", 0.05, 0, 0},
		{"half", 0.5, 0.125, 0.5},
		{"full", 1.0, 1.0, 1.0},
		{"above range", 1.7, 1.0, 1.0},
		{"negative", -0.2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, p, _ := newBackend(t)

			got := b.SetVolume(tt.ratio)

			if got != tt.wantPercept {
				t.Errorf("SetVolume() = %v, want %v", got, tt.wantPercept)
			}
			linear, ok := p.LastVolume()
			if !ok {
				t.Fatal("pipeline never received a volume")
			}
			if math.Abs(linear-tt.wantLinear) > 1e-9 {
				t.Errorf("pipeline volume = %v, want %v", linear, tt.wantLinear)
			}
			if math.Abs(b.Volume()-tt.wantLinear) > 1e-9 {
				t.Errorf("Volume() = %v, want %v", b.Volume(), tt.wantLinear)
			}
		})
	}
}

func TestSetStateFailureKeepsState(t *testing.T) {
	b, p, _ := newBackend(t)
	b.SetState(core.StatePaused)
	p.Reject(backend.PipelinePlaying)

	b.SetState(core.StatePlaying)

	if b.State() != core.StatePaused {
		t.Errorf("State() = %v, want paused", b.State())
	}
}

func TestSetStateMapsPipelineStates(t *testing.T) {
	b, p, _ := newBackend(t)

	b.SetState(core.StateLoading)
	b.SetState(core.StatePlaying)
	b.SetState(core.StatePaused)
	b.SetState(core.StateStopped)

	want := []backend.PipelineState{
		backend.PipelineReady,
		backend.PipelinePlaying,
		backend.PipelinePaused,
		backend.PipelineNull,
	}
	got := p.StateHistory()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("states[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if b.State() != core.StateStopped {
		t.Errorf("State() = %v, want stopped", b.State())
	}
}

func TestSeekFailureIsSilent(t *testing.T) {
	b, p, _ := newBackend(t)
	p.SeekErr = errors.New("not seekable")

	b.Seek(12)

	if len(p.SeekHistory()) != 0 {
		t.Errorf("seeks = %v, want none", p.SeekHistory())
	}

	p.SeekErr = nil
	b.Seek(12.5)
	if got := p.SeekHistory(); len(got) != 1 || got[0] != 12500*time.Millisecond {
		t.Errorf("seeks = %v, want [12.5s]", got)
	}
}

func TestWatchForwardsBusMessages(t *testing.T) {
	b, p, mb := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.Watch(ctx) }()

	p.Post(backend.StateChangedMessage{Old: backend.PipelineReady, Current: backend.PipelinePlaying})
	p.Post(backend.EOSMessage{})
	p.Post(backend.StreamStartMessage{})
	p.Post(backend.NewClockMessage{})

	want := []core.PlaybackAction{
		core.PlaybackStateChanged{State: core.StatePlaying},
		core.EOS{},
		core.StreamStarted{},
		core.ClockStarted{},
	}
	for _, w := range want {
		got := waitFor(t, mb, func(core.PlaybackAction) bool { return true })
		if got != w {
			t.Errorf("action = %#v, want %#v", got, w)
		}
	}
}

func TestWatchErrorFlushesPipeline(t *testing.T) {
	b, p, mb := newBackend(t)
	b.SetState(core.StatePlaying)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drain the echo of the Playing transition first.
	go func() { _ = b.Watch(ctx) }()
	waitFor(t, mb, func(a core.PlaybackAction) bool {
		return a == core.PlaybackStateChanged{State: core.StatePlaying}
	})

	decodeErr := errors.New("bad codec")
	p.Post(backend.ErrorMessage{Source: "decoder", Err: decodeErr})

	first := waitFor(t, mb, func(core.PlaybackAction) bool { return true })
	if first != (core.PlaybackStateChanged{State: core.StateStopped}) {
		t.Errorf("first action = %#v, want PlaybackStateChanged(stopped)", first)
	}
	second := waitFor(t, mb, func(core.PlaybackAction) bool { return true })
	if e, ok := second.(core.Error); !ok || !errors.Is(e.Err, decodeErr) {
		t.Errorf("second action = %#v, want Error(bad codec)", second)
	}
	if p.State() != backend.PipelineNull {
		t.Errorf("pipeline state = %v, want null", p.State())
	}
}

func TestConfirmPlayingReassertsVolumeAndTicks(t *testing.T) {
	b, p, mb := newBackend(t, backend.WithTickInterval(5*time.Millisecond))
	b.SetVolume(0.5)
	p.DriftVolume(1.0)
	b.SetState(core.StatePlaying)
	p.SetPosition(42 * time.Second)

	b.ConfirmState(core.StatePlaying)

	if got := p.Volume(); math.Abs(got-0.125) > 1e-9 {
		t.Errorf("pipeline volume = %v, want 0.125 after re-assert", got)
	}

	tick := waitFor(t, mb, func(a core.PlaybackAction) bool {
		_, ok := a.(core.Tick)
		return ok
	})
	if tick.(core.Tick).Seconds != 42 {
		t.Errorf("Tick = %d, want 42 from pipeline position", tick.(core.Tick).Seconds)
	}

	b.ConfirmState(core.StatePaused)
	time.Sleep(20 * time.Millisecond)
	for {
		if _, ok := mb.TryRecv(); !ok {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	for {
		a, ok := mb.TryRecv()
		if !ok {
			break
		}
		if _, isTick := a.(core.Tick); isTick {
			t.Fatal("Tick emitted after leaving Playing")
		}
	}
}

func TestDurationPollSelfCancels(t *testing.T) {
	b, p, mb := newBackend(t, backend.WithPollInterval(time.Millisecond))
	b.SetURI("file:///a.mp3")

	b.StartDurationPoll()
	time.Sleep(5 * time.Millisecond)
	p.SetDuration(183 * time.Second)

	got := waitFor(t, mb, func(a core.PlaybackAction) bool {
		_, ok := a.(core.DurationDiscovered)
		return ok
	}).(core.DurationDiscovered)

	if got.Seconds != 183 || got.URI != "file:///a.mp3" {
		t.Errorf("DurationDiscovered = %+v, want 183s for a.mp3", got)
	}
	if !b.SetDuration(got.Seconds, got.URI) {
		t.Fatal("SetDuration() rejected current URI")
	}
	if b.Duration() != 183 {
		t.Errorf("Duration() = %v, want 183", b.Duration())
	}

	time.Sleep(10 * time.Millisecond)
	for {
		a, ok := mb.TryRecv()
		if !ok {
			break
		}
		if _, dup := a.(core.DurationDiscovered); dup {
			t.Error("duration poll kept running after success")
		}
	}
}

func TestSetDurationIgnoresStaleURI(t *testing.T) {
	b, _, _ := newBackend(t)
	b.SetURI("file:///b.mp3")

	if b.SetDuration(90, "file:///a.mp3") {
		t.Error("SetDuration() accepted a stale URI")
	}
	if b.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", b.Duration())
	}
}

func TestPerceptualVolume(t *testing.T) {
	if got := backend.PerceptualVolume(math.NaN()); got != 0 {
		t.Errorf("PerceptualVolume(NaN) = %v, want 0", got)
	}
	if got := backend.PerceptualVolume(0.06); got != 0.06 {
		t.Errorf("PerceptualVolume(0.06) = %v, want 0.06", got)
	}
}

func TestSessionFollowsBoundSource(t *testing.T) {
	b, p, mb := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = b.Watch(ctx) }()

	b.SetURI("file:///a.mp3")
	first := b.Session()
	if !b.Current(first) {
		t.Fatal("bound session is not current")
	}

	b.SetState(core.StatePlaying)
	echo := waitFor(t, mb, func(a core.PlaybackAction) bool {
		_, ok := a.(core.PlaybackStateChanged)
		return ok
	})
	if got := echo.(core.PlaybackStateChanged).Session; got != first {
		t.Errorf("forwarded session = %d, want %d", got, first)
	}

	b.SetState(core.StateStopped)
	if b.Current(first) {
		t.Error("session still current after stop")
	}
	stopped := b.Session()

	b.SetURI("file:///b.mp3")
	if b.Current(stopped) || b.Session() != p.Session() {
		t.Errorf("session = %d after rebind, pipeline %d", b.Session(), p.Session())
	}
}

func TestFailedStopKeepsSession(t *testing.T) {
	b, p, _ := newBackend(t)
	b.SetURI("file:///a.mp3")
	bound := b.Session()

	p.Reject(backend.PipelineNull)
	b.SetState(core.StateStopped)
	if !b.Current(bound) {
		t.Error("rejected stop changed the session")
	}
}
