package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessro/tonearm/internal/audio"
	"github.com/tessro/tonearm/internal/backend"
	"github.com/tessro/tonearm/internal/config"
	"github.com/tessro/tonearm/internal/core"
	toneerrors "github.com/tessro/tonearm/internal/errors"
	"github.com/tessro/tonearm/internal/history"
	"github.com/tessro/tonearm/internal/library"
	"github.com/tessro/tonearm/internal/player"
	"github.com/tessro/tonearm/internal/tail"
	"github.com/tessro/tonearm/internal/tui"
	"github.com/tessro/tonearm/internal/tui/styles"
)

var (
	playRepeat      string
	playVolume      int
	playShuffleLoop bool
	playNoHistory   bool
	playFollow      bool
	playNoEmoji     bool
	playTimestamp   bool
	playFormat      string
	playWatchConfig bool
)

var playCmd = &cobra.Command{
	Use:   "play <path>...",
	Short: "Play audio files or directories",
	Long: `Queue the given files and directories and start playback.

Directories are scanned recursively for mp3, flac and wav files. By default
an interactive dashboard is shown; use --follow (or redirect stdout) for a
plain event log.

Examples:
  tonearm play ~/Music/album           # Play an album
  tonearm play a.mp3 b.flac --repeat loop
  tonearm play ~/Music --repeat shuffle --follow`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playRepeat, "repeat", "r", "", "repeat mode: normal, loop, loop-song, shuffle (default from config)")
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "initial volume 0-100 (default from config)")
	playCmd.Flags().BoolVar(&playShuffleLoop, "shuffle-loop", false, "start over when a shuffled queue ends")
	playCmd.Flags().BoolVar(&playNoHistory, "no-history", false, "do not record listens")
	playCmd.Flags().BoolVarP(&playFollow, "follow", "f", false, "print playback events instead of the dashboard")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji in --follow output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps in --follow output")
	playCmd.Flags().StringVar(&playFormat, "format", "", "custom --follow format template")
	playCmd.Flags().BoolVar(&playWatchConfig, "watch-config", false, "apply playback settings when the config file changes")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	opts, err := playSettings(cmd)
	if err != nil {
		return err
	}

	if !audio.Available {
		return toneerrors.ErrAudioUnavailable
	}

	scan := library.NewScanner(nil).Scan(args...)
	if len(scan.Data) == 0 {
		return scan.Err()
	}
	for _, err := range scan.Errors {
		logger.Warn().Err(err).Msg("skipping file")
	}
	tracks := scan.Data

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := audio.NewPipeline(cfg.Audio.SampleRate, cfg.Audio.Buffer(), logger.With().Str("component", "audio").Logger())
	if err != nil {
		return err
	}

	engineOpts := []player.Option{
		player.WithLogger(logger),
		player.WithCommitThreshold(cfg.Playback.CommitThreshold),
		player.WithShuffleLoop(opts.shuffleLoop),
		player.WithVolume(opts.volume),
		player.WithRepeatMode(opts.repeat),
		player.WithBackendOptions(backend.WithPollInterval(cfg.Audio.DurationPoll())),
	}

	var store *history.Store
	if cfg.History.Enabled && !playNoHistory {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("play history disabled")
		} else {
			defer func() { _ = store.Close() }()
			recorder := history.NewAsyncRecorder(store, logger.With().Str("component", "history").Logger())
			defer func() { _ = recorder.Close() }()
			engineOpts = append(engineOpts, player.WithRecorder(recorder))
		}
	}

	engine := player.New(pipeline, engineOpts...)

	engineDone := make(chan error, 1)
	engineCtx, cancelEngine := context.WithCancel(ctx)
	defer cancelEngine()
	go func() {
		engineDone <- engine.Run(engineCtx)
	}()

	if playWatchConfig {
		go watchConfig(engineCtx, engine)
	}

	title := library.AlbumTitle(args, tracks)
	start := func() { engine.ClearPlayAlbum(tracks, title) }

	// Without a terminal there is no dashboard to draw.
	if playFollow || JSONOutput() || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = followEngine(ctx, engine, start)
	} else {
		start()
		styles.SetTheme(cfg.TUI.Theme)
		appOpts := []tui.AppOption{
			tui.WithLibrary(tracks),
			tui.WithRefreshRate(time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond),
		}
		if store != nil {
			appOpts = append(appOpts, tui.WithHistory(store))
		}
		err = tui.Run(ctx, tui.NewApp(engine, engine.State(), appOpts...))
	}

	cancelEngine()
	if runErr := <-engineDone; runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error().Err(runErr).Msg("player stopped")
	}
	return err
}

type playOptions struct {
	repeat      core.RepeatMode
	volume      float64
	shuffleLoop bool
}

// playSettings merges command flags over the loaded config.
func playSettings(cmd *cobra.Command) (playOptions, error) {
	s := playOptions{
		volume:      cfg.Playback.VolumeRatio(),
		shuffleLoop: cfg.Playback.ShuffleLoop,
	}

	repeat := cfg.Playback.Repeat
	if cmd.Flags().Changed("repeat") {
		repeat = playRepeat
	}
	mode, err := core.ParseRepeatMode(repeat)
	if err != nil {
		return s, err
	}
	s.repeat = mode

	if cmd.Flags().Changed("volume") {
		if playVolume < 0 || playVolume > 100 {
			return s, fmt.Errorf("volume must be between 0 and 100")
		}
		s.volume = float64(playVolume) / 100
	}
	if cmd.Flags().Changed("shuffle-loop") {
		s.shuffleLoop = playShuffleLoop
	}
	return s, nil
}

// followEngine prints playback events until ctx is done or the queue ends.
// start is called once the watcher is subscribed.
func followEngine(ctx context.Context, engine *player.Engine, start func()) error {
	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := tail.NewWatcher(engine.State(),
		tail.WithCompletionThreshold(cfg.Playback.CommitThreshold),
		tail.WithBuffer(64),
	)
	go func() {
		_ = watcher.Start(watchCtx)
	}()
	<-watcher.Ready()
	start()

	for event := range watcher.Events() {
		if JSONOutput() {
			if err := printJSON(followRecord(event)); err != nil {
				return err
			}
		} else {
			fmt.Println(formatter.Format(event))
		}
		if event.Type == tail.EventQueueEnd {
			// Let the final stop and skip events through first.
			time.AfterFunc(200*time.Millisecond, cancel)
		}
	}
	return nil
}

type followJSON struct {
	Event    string      `json:"event"`
	Time     time.Time   `json:"time"`
	Track    *core.Track `json:"track,omitempty"`
	Previous *core.Track `json:"previous,omitempty"`
	Volume   int         `json:"volume,omitempty"`
	Repeat   string      `json:"repeat,omitempty"`
}

func followRecord(e tail.Event) followJSON {
	rec := followJSON{
		Event:    e.Type.String(),
		Time:     e.Timestamp,
		Track:    e.Track,
		Previous: e.Previous,
	}
	switch e.Type {
	case tail.EventVolumeChange:
		rec.Volume = e.Volume
	case tail.EventRepeatChange:
		rec.Repeat = e.Repeat.String()
	}
	return rec
}

// watchConfig applies live-tunable playback settings from the config file.
func watchConfig(ctx context.Context, engine *player.Engine) {
	path := configPath()
	if _, err := os.Stat(path); err != nil {
		logger.Debug().Str("path", path).Msg("no config file to watch")
		return
	}

	err := config.Watch(ctx, path, logger, func(next *config.Config) {
		engine.SetCommitThreshold(next.Playback.CommitThreshold)
		engine.SetShuffleLoop(next.Playback.ShuffleLoop)
		logger.Info().
			Float64("commit_threshold", next.Playback.CommitThreshold).
			Bool("shuffle_loop", next.Playback.ShuffleLoop).
			Msg("applied config change")
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("config watch stopped")
	}
}
