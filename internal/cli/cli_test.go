package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tessro/tonearm/internal/config"
	"github.com/tessro/tonearm/internal/core"
	"github.com/tessro/tonearm/internal/tail"
)

func TestConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"playback.commit_threshold", "0.5", 0.5, false},
		{"playback.commit_threshold", "half", nil, true},
		{"playback.volume", "60", 60, false},
		{"audio.sample_rate", "48k", nil, true},
		{"history.enabled", "false", false, false},
		{"playback.shuffle_loop", "maybe", nil, true},
		{"playback.repeat", "track", "loop-song", false},
		{"playback.repeat", "sideways", nil, true},
		{"tui.theme", "dark", "dark", false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := configValue(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("configValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConfigSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := writeConfigFile(path, config.Default()); err != nil {
		t.Fatal(err)
	}

	oldFile := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = oldFile })

	if err := runConfigSet(configSetCmd, []string{"playback.volume", "40"}); err != nil {
		t.Fatalf("set volume: %v", err)
	}
	if err := runConfigSet(configSetCmd, []string{"playback.volume", "140"}); err == nil {
		t.Error("out of range volume should be rejected")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Tonearm Configuration") {
		t.Error("config header missing")
	}

	loaded := config.Default()
	if _, err := toml.Decode(string(data), loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Playback.Volume != 40 {
		t.Errorf("volume = %d, want 40", loaded.Playback.Volume)
	}
}

func TestFollowRecord(t *testing.T) {
	track := &core.Track{Title: "Intro"}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := followRecord(tail.Event{Type: tail.EventRepeatChange, Timestamp: now, Track: track, Repeat: core.RepeatShuffle, Volume: 50})
	if rec.Event != "repeat_change" || rec.Repeat != "shuffle" || rec.Volume != 0 {
		t.Errorf("repeat record = %+v", rec)
	}

	rec = followRecord(tail.Event{Type: tail.EventVolumeChange, Timestamp: now, Volume: 35})
	if rec.Volume != 35 || rec.Repeat != "" {
		t.Errorf("volume record = %+v", rec)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"much too long", 8, "much ..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
