package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the config file at path whenever it changes and passes each
// valid result to fn. Invalid files are logged and skipped. Watch blocks
// until ctx is done.
//
// The parent directory is watched rather than the file so editors that
// replace the file on save are still seen.
func Watch(ctx context.Context, path string, log zerolog.Logger, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)

	// Editors often emit several events per save.
	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := LoadFrom(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload failed")
				continue
			}
			if err := cfg.Validate(); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("reloaded config is invalid")
				continue
			}
			log.Debug().Str("path", path).Msg("config reloaded")
			fn(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
