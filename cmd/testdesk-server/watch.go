package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// configWatcher reloads the config file when it changes on disk. Editors
// often replace files instead of writing them, so the parent directory is
// watched and events are filtered by name.
type configWatcher struct {
	path     string
	debounce time.Duration
	reload   func(*Config) error
	log      zerolog.Logger
}

func newConfigWatcher(path string, reload func(*Config) error, log zerolog.Logger) *configWatcher {
	return &configWatcher{
		path:     filepath.Clean(path),
		debounce: 250 * time.Millisecond,
		reload:   reload,
		log:      log.With().Str("component", "config_watcher").Logger(),
	}
}

// Run blocks until ctx is canceled.
func (w *configWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info().Str("path", w.path).Msg("watching config file")

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.apply()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}

func (w *configWatcher) apply() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.log.Warn().Err(err).Msg("config reload skipped")
		return
	}
	if err := w.reload(cfg); err != nil {
		w.log.Warn().Err(err).Msg("config reload incomplete")
		return
	}
	w.log.Info().Msg("config reloaded")
}
