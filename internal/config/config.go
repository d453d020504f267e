package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	toneerrors "github.com/tessro/tonearm/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.tonearmrc, $XDG_CONFIG_HOME/tonearm/config.toml, ~/.config/tonearm/config.toml
func Load() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path. Keys missing from
// the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, toneerrors.ErrConfigNotFound)
		}
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the path used when creating a new config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tonearmrc"
	}
	return filepath.Join(home, ".tonearmrc")
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".tonearmrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "tonearm", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Playback
	if v := os.Getenv("TONEARM_PLAYBACK_COMMIT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Playback.CommitThreshold = f
		}
	}
	if v := os.Getenv("TONEARM_PLAYBACK_SHUFFLE_LOOP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Playback.ShuffleLoop = b
		}
	}
	if v := os.Getenv("TONEARM_PLAYBACK_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.Volume = i
		}
	}
	if v := os.Getenv("TONEARM_PLAYBACK_REPEAT"); v != "" {
		cfg.Playback.Repeat = v
	}

	// Audio
	if v := os.Getenv("TONEARM_AUDIO_SAMPLE_RATE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Audio.SampleRate = i
		}
	}
	if v := os.Getenv("TONEARM_AUDIO_BUFFER_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Audio.BufferMS = i
		}
	}

	// History
	if v := os.Getenv("TONEARM_HISTORY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.History.Enabled = b
		}
	}
	if v := os.Getenv("TONEARM_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// TUI
	if v := os.Getenv("TONEARM_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("TONEARM_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("TONEARM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TONEARM_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
