// Package driver contains the event-translation core for the Lyra
// keyboard/mouse peripheral: the poll scheduler, FIFO decoder, keymap
// resolver with its press/release symmetry guarantee, mouse delta
// scaling, power button edge detection, and modifier synchronization.
//
// All processing runs on a single goroutine owned by the scheduler; one
// tick runs to completion before the next is armed. The only cross-
// goroutine concerns are the synchronous Stop and the runtime tunables,
// which the tick reads once through their own locks.
package driver

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"lyrad/internal/config"
	"lyrad/internal/keymap"
	"lyrad/internal/metrics"
	"lyrad/internal/register"
)

// ErrAlreadyRunning is returned when Start is called on a running device.
var ErrAlreadyRunning = errors.New("driver already running")

// Axis identifies a relative motion axis.
type Axis uint8

// Motion axes.
const (
	AxisX Axis = iota
	AxisY
)

// String returns the axis name for logging and metrics.
func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// Sink receives normalized input events. Implementations are expected
// to deduplicate repeated identical key states, matching standard input
// device semantics, and to handle their own delivery failures.
type Sink interface {
	// Key reports a logical key state.
	Key(code keymap.Code, pressed bool)

	// Scan reports the raw hardware keycode ahead of the key event it
	// belongs to.
	Scan(keycode uint8)

	// Rel reports relative pointer motion on one axis.
	Rel(axis Axis, delta int32)

	// Sync marks a flush boundary after a batch of related events.
	Sync()
}

// Device owns all mutable driver state: the per-keycode press table,
// the power button state, and the poll goroutine. State is mutated only
// from the tick; Stop blocks until an in-flight tick finishes so
// teardown never races it.
type Device struct {
	port     register.Port
	keyboard Sink
	mouse    Sink
	cfg      *config.Config
	log      *slog.Logger

	// press maps each hardware keycode to the logical key reported on
	// its last press. A release always resolves through this table so a
	// key pressed under one modifier combination releases as the same
	// logical key even if modifiers changed mid-press.
	press [keymap.NumKeycodes]keymap.Code

	powerPressed bool

	mu      sync.Mutex
	running bool
	stopc   chan struct{}
	done    chan struct{}
}

// New creates a device around a register port and two output sinks.
// Resolved key events (including the mouse buttons on the keymap) go to
// the keyboard sink; relative motion goes to the mouse sink.
func New(port register.Port, keyboard, mouse Sink, cfg *config.Config, log *slog.Logger) *Device {
	return &Device{
		port:     port,
		keyboard: keyboard,
		mouse:    mouse,
		cfg:      cfg,
		log:      log,
	}
}

// Start syncs the modifier state once and begins polling. It is the
// counterpart of Stop: a stopped device can be started again, which is
// how resume after suspend works.
func (d *Device) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	d.running = true
	d.stopc = make(chan struct{})
	d.done = make(chan struct{})
	stopc, done := d.stopc, d.done
	d.mu.Unlock()

	// Report the initial modifier state so the input layer starts from
	// what the hardware says rather than all-released.
	d.syncModifiers()

	go d.run(stopc, done)
	d.log.Info("polling started", "interval", d.cfg.PollInterval())
	return nil
}

// Stop cancels polling synchronously: it blocks until any in-flight
// tick completes and guarantees no further tick fires. Safe to call on
// a stopped device.
func (d *Device) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	stopc, done := d.stopc, d.done
	d.mu.Unlock()

	close(stopc)
	<-done
	d.log.Info("polling stopped")
}

// Running reports whether the poll loop is currently scheduled.
func (d *Device) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// run is the scheduling loop. The next tick is armed only after the
// current one returns, so ticks never overlap, and the interval is read
// fresh each time so a runtime change takes effect on the next arm.
func (d *Device) run(stopc, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(d.cfg.PollInterval())
	defer timer.Stop()

	for {
		select {
		case <-stopc:
			return
		case <-timer.C:
			select {
			case <-stopc:
				return
			default:
			}
			d.tick()
			timer.Reset(d.cfg.PollInterval())
		}
	}
}

// tick reads the interrupt status once and runs the processing stages
// it gates. A failed status read skips everything; the loop reschedules
// regardless, because a transient bus error must never stop polling.
func (d *Device) tick() {
	metrics.Ticks.Inc()

	b, err := d.port.ReadRegister(register.RegIntStatus)
	if err != nil {
		metrics.TransportErrors.WithLabelValues("int_status").Inc()
		d.log.Warn("interrupt status read failed, skipping tick", "error", err)
		return
	}
	status := register.DecodeIntStatus(b)

	if status.ModifierChanged() {
		d.syncModifiers()
	}

	if status.FifoOverflow {
		metrics.FifoOverflows.Inc()
		d.log.Warn("fifo overflow reported by peripheral")
	}

	if status.KeyEvent {
		d.drainFifo()
	}

	if status.MouseEvent {
		d.processMouse()
	}

	if status.PowerButton {
		// The interrupt only says "a button event occurred", so request
		// the opposite of the stored state: toggle semantics.
		d.setPowerButton(!d.powerPressed)
	}
}
