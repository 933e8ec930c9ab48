package config

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collects the burst of fsnotify events an editor save produces
// into one reload.
const reloadDebounce = 250 * time.Millisecond

// Watch reloads the runtime tunables whenever the config file changes.
// Startup settings (device, logging, sockets) are ignored on reload; a
// file with out-of-range tunables is logged and the running values are
// kept. The returned stop function releases the watcher.
func Watch(path string, cfg *Config, log *slog.Logger) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors replace files, which drops a watch
	// placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		timer := time.NewTimer(reloadDebounce)
		timer.Stop()
		pending := false

		for {
			select {
			case <-done:
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if !pending {
					pending = true
					timer.Reset(reloadDebounce)
				}

			case <-timer.C:
				if !pending {
					continue
				}
				pending = false
				reload(path, cfg, log)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watch error", "error", err)
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

func reload(path string, cfg *Config, log *slog.Logger) {
	fresh, err := Load(path)
	if err != nil {
		log.Warn("config reload rejected", "path", path, "error", err)
		return
	}
	if err := cfg.ApplyTunables(fresh); err != nil {
		log.Warn("config reload partially applied", "error", err)
		return
	}
	x, y := cfg.MouseSpeed()
	log.Info("config reloaded",
		"mouse_speed_x", x,
		"mouse_speed_y", y,
		"poll_interval", cfg.PollInterval(),
	)
}
