package driver

import (
	"lyrad/internal/keymap"
	"lyrad/internal/metrics"
)

// setPowerButton is the edge detector for the power button. The
// interrupt reports only that an event occurred, not a level, so the
// scheduler requests the negation of the stored state and this toggles
// on every qualifying interrupt. Whether the firmware really means
// alternating press/release is undocumented; the behavior is kept as
// the hardware vendor shipped it.
func (d *Device) setPowerButton(pressed bool) {
	if d.powerPressed == pressed {
		return
	}
	d.powerPressed = pressed

	d.keyboard.Key(keymap.KeyPower, pressed)
	d.keyboard.Sync()

	metrics.PowerToggles.Inc()
	d.log.Info("power button", "pressed", pressed)
}
