package driver

import (
	"lyrad/internal/keymap"
	"lyrad/internal/metrics"
)

// handleKey resolves one hardware key event to a logical key and
// reports it. This is the correctness-critical path: a press records
// the resolved key in the press table, and the matching release reports
// that exact key regardless of how the modifiers have drifted since.
func (d *Device) handleKey(keycode uint8, pressed bool) {
	if keycode >= keymap.NumKeycodes {
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonBadKeycode).Inc()
		d.log.Warn("invalid keycode", "keycode", keycode)
		return
	}

	mods, err := d.readModifiers()
	if err != nil {
		d.log.Warn("key event dropped, modifier read failed",
			"keycode", keycode, "pressed", pressed, "error", err)
		return
	}

	switch keycode {
	case keymap.PosShiftLeft, keymap.PosShiftRight, keymap.PosAlt:
		// Shift and alt state comes from the status register via
		// syncModifiers; their FIFO events carry no extra information.
		return
	case keymap.PosFn:
		// Pure layer selector, never reported.
		return
	case keymap.PosCtrl:
		// Ctrl is the same logical key on every layer; report it
		// directly without touching the press table.
		d.keyboard.Key(keymap.KeyLeftCtrl, pressed)
		d.keyboard.Sync()
		return
	}

	if pressed {
		code := keymap.Lookup(keycode, mods)
		d.press[keycode] = code
		d.log.Debug("key press", "keycode", keycode, "code", code,
			"shift", mods.Shift, "fn", mods.Fn)
		d.keyboard.Scan(keycode)
		d.keyboard.Key(code, true)
	} else {
		code := d.press[keycode]
		if code == keymap.CodeNone {
			// Release without a recorded press. Should not happen with
			// well-behaved hardware; resolve against the current
			// modifiers as a best-effort recovery.
			code = keymap.Lookup(keycode, mods)
			d.log.Warn("release without recorded press", "keycode", keycode, "code", code)
		}
		d.log.Debug("key release", "keycode", keycode, "code", code)
		d.keyboard.Scan(keycode)
		d.keyboard.Key(code, false)
		d.press[keycode] = keymap.CodeNone
	}

	d.keyboard.Sync()
}
