//go:build !linux

package suspend

import "log/slog"

// Watcher is a no-op on platforms without logind.
type Watcher struct{}

// NewWatcher creates a sleep watcher. Call Start to begin listening.
func NewWatcher(Hooks, *slog.Logger) *Watcher {
	return &Watcher{}
}

// Start is a no-op.
func (w *Watcher) Start() error { return nil }

// Stop is a no-op.
func (w *Watcher) Stop() {}
