package driver

import (
	"lyrad/internal/keymap"
	"lyrad/internal/metrics"
	"lyrad/internal/register"
)

// readModifiers reads the live modifier snapshot from the key status
// register. Snapshots are never cached across decision points: the
// press-time state may legitimately differ from the release-time state.
func (d *Device) readModifiers() (register.Modifiers, error) {
	b, err := d.port.ReadRegister(register.RegKeyStatus)
	if err != nil {
		metrics.TransportErrors.WithLabelValues("key_status").Inc()
		return register.Modifiers{}, err
	}

	ks := register.DecodeKeyStatus(b)
	if ks.FifoDepth > 0 {
		d.log.Debug("fifo depth", "depth", ks.FifoDepth)
	}
	return ks.Modifiers, nil
}

// syncModifiers reports shift and alt from the status register rather
// than from FIFO events. Reports are unconditional; the input layer
// deduplicates repeated identical states. fn is tracked only as a layer
// selector and never reported.
func (d *Device) syncModifiers() {
	mods, err := d.readModifiers()
	if err != nil {
		d.log.Warn("modifier sync skipped", "error", err)
		return
	}

	d.keyboard.Key(keymap.KeyLeftShift, mods.Shift)
	d.keyboard.Key(keymap.KeyLeftAlt, mods.Alt)
	d.keyboard.Sync()

	d.log.Debug("modifiers synced", "shift", mods.Shift, "alt", mods.Alt)
}
