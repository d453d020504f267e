package state

import (
	"slices"
	"testing"

	"github.com/tessro/tonearm/internal/core"
)

func collect(s *PlayerState) *[]string {
	names := &[]string{}
	s.SubscribeAll(func(n Notification) {
		*names = append(*names, n.Name())
	})
	return names
}

func TestSetCurrentTrackBatch(t *testing.T) {
	s := New()
	s.SetPosition(30)
	names := collect(s)

	cover := int64(7)
	track := &core.Track{Title: "Blue", Artist: "Joni", Album: "Blue", Duration: 180, CoverArt: &cover}
	s.SetCurrentTrack(track)

	want := []string{NameSong, NameTitle, NameArtist, NameAlbum, NameDuration, NameCover, NamePosition}
	if !slices.Equal(*names, want) {
		t.Errorf("notifications = %v, want %v", *names, want)
	}
	if s.Position() != 0 {
		t.Errorf("Position() = %d, want 0 after track change", s.Position())
	}
	if s.Title() != "Blue" || s.Artist() != "Joni" || s.Duration() != 180 {
		t.Errorf("derived fields = %q/%q/%v", s.Title(), s.Artist(), s.Duration())
	}
	if s.Cover() == nil || *s.Cover() != 7 {
		t.Errorf("Cover() = %v, want 7", s.Cover())
	}
}

func TestClearCurrentTrack(t *testing.T) {
	s := New()
	s.SetCurrentTrack(&core.Track{Title: "x"})

	var title TitleChanged
	s.Subscribe(NameTitle, func(n Notification) {
		title = n.(TitleChanged)
	})
	s.SetCurrentTrack(nil)

	if title.Title != "" {
		t.Errorf("TitleChanged = %q, want empty", title.Title)
	}
	if s.CurrentTrack() != nil || s.Title() != "" {
		t.Error("current track not cleared")
	}
}

func TestPlaybackStateNotifiesOnChange(t *testing.T) {
	s := New()
	names := collect(s)

	s.SetPlaybackState(core.StateStopped)
	if len(*names) != 0 {
		t.Errorf("unchanged state notified: %v", *names)
	}

	s.SetPlaybackState(core.StatePlaying)
	want := []string{NamePlaying, NameState}
	if !slices.Equal(*names, want) {
		t.Errorf("notifications = %v, want %v", *names, want)
	}
	if !s.Playing() {
		t.Error("Playing() = false, want true")
	}
}

func TestVolumeNotifiesAtTwoDecimals(t *testing.T) {
	s := New()
	var got []float64
	s.Subscribe(NameVolume, func(n Notification) {
		got = append(got, n.(VolumeChanged).Volume)
	})

	s.SetVolume(0.5)
	s.SetVolume(0.501)
	s.SetVolume(0.52)

	if !slices.Equal(got, []float64{0.5, 0.52}) {
		t.Errorf("volume notifications = %v, want [0.5 0.52]", got)
	}
	if s.Volume() != 0.52 {
		t.Errorf("Volume() = %v, want 0.52", s.Volume())
	}
}

func TestInitialVolumeNotifiesZero(t *testing.T) {
	s := New()
	if s.Volume() != 0 {
		t.Errorf("Volume() = %v, want 0 before first set", s.Volume())
	}

	notified := false
	s.Subscribe(NameVolume, func(Notification) { notified = true })
	s.SetVolume(0)
	if !notified {
		t.Error("first SetVolume(0) did not notify")
	}
}

func TestQueueTitleDefault(t *testing.T) {
	s := New()
	if s.QueueTitle() != DefaultQueueTitle {
		t.Errorf("QueueTitle() = %q, want %q", s.QueueTitle(), DefaultQueueTitle)
	}

	s.SetQueueTitle("Kind of Blue")
	s.SetQueueTitle("")
	if s.QueueTitle() != DefaultQueueTitle {
		t.Errorf("QueueTitle() = %q after clearing, want default", s.QueueTitle())
	}
}

func TestQueueNotifications(t *testing.T) {
	s := New()
	names := collect(s)

	tracks := []*core.Track{{ID: 1}, {ID: 2}}
	s.QueueNonEmpty()
	s.QueueUpdate(&core.Queue{Tracks: tracks})
	s.QueuePosition(1)
	s.SetQueueTimeRemaining(90)
	s.QueueRepeatModeUpdate(core.RepeatLoop)
	s.QueueEmpty()

	want := []string{
		NameQueueNonEmpty,
		NameQueueUpdate,
		NameQueuePosition,
		NameQueueTimeRemaining,
		NameQueueRepeatMode,
		NameRepeatMode,
		NameQueueEmpty,
	}
	if !slices.Equal(*names, want) {
		t.Errorf("notifications = %v, want %v", *names, want)
	}
	if !s.Empty() || s.RepeatMode() != core.RepeatLoop || s.QueueTimeRemaining() != 90 {
		t.Errorf("state = empty %v mode %v remaining %v", s.Empty(), s.RepeatMode(), s.QueueTimeRemaining())
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	count := 0
	unsubscribe := s.Subscribe(NamePosition, func(Notification) { count++ })

	s.SetPosition(1)
	unsubscribe()
	s.SetPosition(2)

	if count != 1 {
		t.Errorf("callback count = %d, want 1", count)
	}
}

func TestSnapshot(t *testing.T) {
	s := New()
	track := &core.Track{ID: 3, Title: "So What"}
	s.SetCurrentTrack(track)
	s.SetPosition(12)
	s.SetPlaybackState(core.StatePaused)
	s.QueueNonEmpty()
	s.QueueUpdate(&core.Queue{Tracks: []*core.Track{track}})
	s.QueuePosition(0)

	snap := s.Snapshot()
	if snap.Track != track || snap.Position != 12 || snap.StateName != "paused" || snap.Playing {
		t.Errorf("Snapshot() = %+v", snap)
	}
	if snap.Empty || snap.Queue == nil || snap.Queue.Current() != track {
		t.Errorf("Snapshot().Queue = %+v, want current track", snap.Queue)
	}
}
