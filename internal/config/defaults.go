package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			CommitThreshold: 0.95,
			ShuffleLoop:     false,
			Volume:          100,
			Repeat:          "normal",
		},
		Audio: AudioConfig{
			SampleRate:     44100,
			BufferMS:       100,
			DurationPollMS: 10,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    DefaultHistoryPath(),
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Playback
	if c.Playback.CommitThreshold == 0 {
		c.Playback.CommitThreshold = d.Playback.CommitThreshold
	}
	if c.Playback.Repeat == "" {
		c.Playback.Repeat = d.Playback.Repeat
	}

	// Audio
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.BufferMS == 0 {
		c.Audio.BufferMS = d.Audio.BufferMS
	}
	if c.Audio.DurationPollMS == 0 {
		c.Audio.DurationPollMS = d.Audio.DurationPollMS
	}

	// History
	if c.History.Path == "" {
		c.History.Path = d.History.Path
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// DefaultHistoryPath returns $XDG_DATA_HOME/tonearm/history.db.
func DefaultHistoryPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "history.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tonearm", "history.db")
}
