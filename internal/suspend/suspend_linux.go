//go:build linux

package suspend

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	login1Path      = "/org/freedesktop/login1"
	login1Interface = "org.freedesktop.login1.Manager"
	sleepSignal     = "PrepareForSleep"
)

// Watcher listens for logind's PrepareForSleep signal on the system
// bus.
type Watcher struct {
	hooks Hooks
	log   *slog.Logger

	conn  *dbus.Conn
	stopc chan struct{}
	done  chan struct{}
}

// NewWatcher creates a sleep watcher. Call Start to begin listening.
func NewWatcher(hooks Hooks, log *slog.Logger) *Watcher {
	return &Watcher{hooks: hooks, log: log}
}

// Start connects to the system bus and subscribes to sleep signals. It
// is not an error for the watcher to be unavailable on systems without
// logind; the caller decides whether to treat the error as fatal.
func (w *Watcher) Start() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(login1Path),
		dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember(sleepSignal),
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("subscribe to %s: %w", sleepSignal, err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	w.conn = conn
	w.stopc = make(chan struct{})
	w.done = make(chan struct{})

	go w.run(signals)
	w.log.Info("suspend watcher started")
	return nil
}

func (w *Watcher) run(signals chan *dbus.Signal) {
	defer close(w.done)

	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return
			}
			w.handle(sig)
		case <-w.stopc:
			return
		}
	}
}

func (w *Watcher) handle(sig *dbus.Signal) {
	if len(sig.Body) != 1 {
		return
	}
	entering, ok := sig.Body[0].(bool)
	if !ok {
		return
	}

	if entering {
		w.log.Info("system suspending, pausing poll loop")
		if w.hooks.OnSleep != nil {
			w.hooks.OnSleep()
		}
	} else {
		w.log.Info("system resumed, restarting poll loop")
		if w.hooks.OnWake != nil {
			w.hooks.OnWake()
		}
	}
}

// Stop unsubscribes and waits for the watcher goroutine to exit.
func (w *Watcher) Stop() {
	if w.conn == nil {
		return
	}
	close(w.stopc)
	w.conn.Close()
	<-w.done
	w.conn = nil
}
