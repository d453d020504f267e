package core

import (
	"fmt"
	"strings"
)

// PlaybackState is the state of the audio backend.
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StateLoading
	StatePaused
	StatePlaying
)

func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateLoading:
		return "loading"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return fmt.Sprintf("PlaybackState(%d)", int(s))
	}
}

// RepeatMode controls how the queue advances.
type RepeatMode int

const (
	RepeatNormal RepeatMode = iota
	RepeatLoop
	RepeatLoopSong
	RepeatShuffle
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatNormal:
		return "normal"
	case RepeatLoop:
		return "loop"
	case RepeatLoopSong:
		return "loop-song"
	case RepeatShuffle:
		return "shuffle"
	default:
		return fmt.Sprintf("RepeatMode(%d)", int(m))
	}
}

// ParseRepeatMode parses the string form of a repeat mode.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "off":
		return RepeatNormal, nil
	case "loop", "context":
		return RepeatLoop, nil
	case "loop-song", "loop_song", "track":
		return RepeatLoopSong, nil
	case "shuffle":
		return RepeatShuffle, nil
	default:
		return RepeatNormal, fmt.Errorf("invalid repeat mode: %s (must be normal, loop, loop-song, or shuffle)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RepeatMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RepeatMode) UnmarshalText(text []byte) error {
	mode, err := ParseRepeatMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
