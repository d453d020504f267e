// Package library turns audio files on disk into tracks.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tessro/tonearm/internal/audio"
	"github.com/tessro/tonearm/internal/core"
	toneerrors "github.com/tessro/tonearm/internal/errors"
)

// ProbeFunc returns the length of an audio file.
type ProbeFunc func(path string) (time.Duration, error)

// Scanner builds tracks from paths.
type Scanner struct {
	probe ProbeFunc
}

// NewScanner creates a Scanner. A nil probe uses audio.Probe.
func NewScanner(probe ProbeFunc) *Scanner {
	if probe == nil {
		probe = audio.Probe
	}
	return &Scanner{probe: probe}
}

// Scan expands directories and returns one track per playable file, in path
// order. Files that cannot be read are reported in the result's errors.
func (s *Scanner) Scan(paths ...string) *toneerrors.PartialResult[[]*core.Track] {
	result := &toneerrors.PartialResult[[]*core.Track]{}

	var files []string
	for _, p := range paths {
		found, err := expand(p)
		result.AddError(err)
		files = append(files, found...)
	}
	files = lo.Uniq(files)

	for i, f := range files {
		track, err := s.track(f, int64(i+1))
		if err != nil {
			result.AddError(err)
			continue
		}
		result.Data = append(result.Data, track)
	}

	if len(result.Data) == 0 && !result.HasErrors() {
		result.AddError(toneerrors.ErrNoTracks)
	}
	return result
}

// AlbumTitle picks a queue title for a scan of paths.
func AlbumTitle(paths []string, tracks []*core.Track) string {
	albums := lo.Uniq(lo.FilterMap(tracks, func(t *core.Track, _ int) (string, bool) {
		return t.Album, t.Album != ""
	}))
	if len(albums) == 1 {
		return albums[0]
	}
	if len(paths) == 1 {
		return filepath.Base(filepath.Clean(paths[0]))
	}
	return ""
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !audio.Supported(path) {
			return nil, fmt.Errorf("%s: %w", path, toneerrors.ErrUnsupportedFormat)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if audio.Supported(p) {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func (s *Scanner) track(path string, id int64) (*core.Track, error) {
	length, err := s.probe(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	return &core.Track{
		ID:       id,
		URI:      audio.URIFromPath(path),
		Title:    titleFromPath(path),
		Album:    filepath.Base(dir),
		Duration: length.Seconds(),
	}, nil
}

func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}
