package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	toneerrors "github.com/tessro/tonearm/internal/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func fixedProbe(d time.Duration) ProbeFunc {
	return func(string) (time.Duration, error) { return d, nil }
}

func TestScanDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Kind of Blue")
	touch(t, filepath.Join(dir, "02_Freddie_Freeloader.mp3"))
	touch(t, filepath.Join(dir, "01_So_What.flac"))
	touch(t, filepath.Join(dir, "cover.jpg"))
	touch(t, filepath.Join(dir, ".hidden", "skip.mp3"))

	result := NewScanner(fixedProbe(3 * time.Minute)).Scan(dir)

	if result.HasErrors() {
		t.Fatalf("Scan() errors = %v", result.Errors)
	}
	if len(result.Data) != 2 {
		t.Fatalf("Scan() returned %d tracks, want 2", len(result.Data))
	}

	first := result.Data[0]
	if first.Title != "01 So What" {
		t.Errorf("Title = %q, want %q", first.Title, "01 So What")
	}
	if first.Album != "Kind of Blue" {
		t.Errorf("Album = %q, want %q", first.Album, "Kind of Blue")
	}
	if first.Duration != 180 {
		t.Errorf("Duration = %v, want 180", first.Duration)
	}
	if first.ID != 1 || result.Data[1].ID != 2 {
		t.Errorf("IDs = %d, %d; want 1, 2", first.ID, result.Data[1].ID)
	}

	if got := AlbumTitle([]string{dir}, result.Data); got != "Kind of Blue" {
		t.Errorf("AlbumTitle() = %q, want %q", got, "Kind of Blue")
	}
}

func TestScanPartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.mp3")
	bad := filepath.Join(dir, "bad.mp3")
	touch(t, good)
	touch(t, bad)

	probe := func(path string) (time.Duration, error) {
		if path == bad {
			return 0, errors.New("corrupt frame")
		}
		return time.Minute, nil
	}

	result := NewScanner(probe).Scan(good, bad, filepath.Join(dir, "missing.mp3"))

	if len(result.Data) != 1 {
		t.Errorf("Scan() returned %d tracks, want 1", len(result.Data))
	}
	if len(result.Errors) != 2 {
		t.Errorf("Scan() errors = %v, want 2", result.Errors)
	}
}

func TestScanUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	touch(t, path)

	result := NewScanner(fixedProbe(time.Second)).Scan(path)
	if !errors.Is(result.Err(), toneerrors.ErrUnsupportedFormat) {
		t.Errorf("Scan() error = %v, want ErrUnsupportedFormat", result.Err())
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	result := NewScanner(fixedProbe(time.Second)).Scan(t.TempDir())
	if !errors.Is(result.Err(), toneerrors.ErrNoTracks) {
		t.Errorf("Scan() error = %v, want ErrNoTracks", result.Err())
	}
}

func TestScanDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	touch(t, path)

	result := NewScanner(fixedProbe(time.Second)).Scan(path, path)
	if len(result.Data) != 1 {
		t.Errorf("Scan() returned %d tracks, want 1", len(result.Data))
	}
}
