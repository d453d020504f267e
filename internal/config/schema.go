package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Playback PlaybackConfig `toml:"playback" json:"playback"`
	Audio    AudioConfig    `toml:"audio" json:"audio"`
	History  HistoryConfig  `toml:"history" json:"history"`
	TUI      TUIConfig      `toml:"tui" json:"tui"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// PlaybackConfig holds playback behaviour settings.
type PlaybackConfig struct {
	// CommitThreshold is the fraction of a track after which a listen is
	// recorded.
	CommitThreshold float64 `toml:"commit_threshold" json:"commit_threshold"`
	ShuffleLoop     bool    `toml:"shuffle_loop" json:"shuffle_loop"`
	Volume          int     `toml:"volume" json:"volume"`
	Repeat          string  `toml:"repeat" json:"repeat"`
}

// VolumeRatio returns Volume as a fraction of 1.
func (c *PlaybackConfig) VolumeRatio() float64 {
	return float64(c.Volume) / 100
}

// AudioConfig holds speaker output settings.
type AudioConfig struct {
	SampleRate     int `toml:"sample_rate" json:"sample_rate"`
	BufferMS       int `toml:"buffer_ms" json:"buffer_ms"`
	DurationPollMS int `toml:"duration_poll_ms" json:"duration_poll_ms"`
}

// Buffer returns the speaker buffer length.
func (c *AudioConfig) Buffer() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// DurationPoll returns the duration query retry interval.
func (c *AudioConfig) DurationPoll() time.Duration {
	return time.Duration(c.DurationPollMS) * time.Millisecond
}

// HistoryConfig holds play history settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}
