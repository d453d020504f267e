package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/tonearm/internal/config"
	"github.com/tessro/tonearm/internal/core"
)

const configHeader = "# Tonearm Configuration\n# https://github.com/tessro/tonearm\n\n"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing tonearm configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  playback.commit_threshold  Fraction of a track played before it counts as a listen
  playback.shuffle_loop      Start over when a shuffled queue ends (true/false)
  playback.volume            Initial volume (0-100)
  playback.repeat            Initial repeat mode (normal/loop/loop-song/shuffle)
  audio.sample_rate          Output sample rate in Hz
  audio.buffer_ms            Output buffer length in milliseconds
  history.enabled            Record listens (true/false)
  history.path               Listen history database
  tui.theme                  auto, dark or light
  log.level                  debug, info, warn or error

Examples:
  tonearm config set playback.volume 60
  tonearm config set playback.repeat loop`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetRepeatCmd = &cobra.Command{
	Use:   "set-repeat",
	Short: "Interactively select the default repeat mode",
	Long:  `Shows a picker to select the repeat mode used when playback starts.`,
	RunE:  runConfigSetRepeat,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetRepeatCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'tonearm config init' first", path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeConfigFile(path, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   path,
		})
	}
	fmt.Printf("Created config file: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review playback and audio settings with 'tonearm config show'")
	fmt.Println("  2. Run 'tonearm play <path>' to start listening")
	return nil
}

func writeConfigFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(configHeader); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// configValue converts a raw string to the type stored under key.
func configValue(key, value string) (any, error) {
	switch key {
	case "playback.commit_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number for %s", key)
		}
		return f, nil
	case "playback.volume", "audio.sample_rate", "audio.buffer_ms", "audio.duration_poll_ms", "tui.refresh_interval":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case "playback.shuffle_loop", "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	case "playback.repeat":
		mode, err := core.ParseRepeatMode(value)
		if err != nil {
			return nil, err
		}
		return mode.String(), nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'tonearm config init' first", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}

	section, field, ok := strings.Cut(key, ".")
	if !ok || field == "" || strings.Contains(field, ".") {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., playback.volume)")
	}

	typed, err := configValue(key, value)
	if err != nil {
		return err
	}

	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}
	sectionMap[field] = typed

	// Reject values the loader would refuse before touching the file.
	buf := new(strings.Builder)
	if err := toml.NewEncoder(buf).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	check := config.Default()
	if _, err := toml.Decode(buf.String(), check); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := check.Validate(); err != nil {
		return err
	}

	if err := writeConfigFile(path, raw); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigSetRepeat(cmd *cobra.Command, args []string) error {
	modes := []core.RepeatMode{core.RepeatNormal, core.RepeatLoop, core.RepeatLoopSong, core.RepeatShuffle}
	descriptions := map[core.RepeatMode]string{
		core.RepeatNormal:   "play the queue once",
		core.RepeatLoop:     "start over after the last track",
		core.RepeatLoopSong: "repeat the current track",
		core.RepeatShuffle:  "play in random order",
	}

	var options []huh.Option[string]
	for _, m := range modes {
		label := fmt.Sprintf("%s (%s)", m, descriptions[m])
		if m.String() == cfg.Playback.Repeat {
			label += " [current]"
		}
		options = append(options, huh.NewOption(label, m.String()))
	}

	selected := cfg.Playback.Repeat
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select default repeat mode").
				Description("Used when 'tonearm play' starts without --repeat").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	return runConfigSet(cmd, []string{"playback.repeat", selected})
}
