package uinput

import (
	"log/slog"

	"lyrad/internal/driver"
	"lyrad/internal/keymap"
)

// Keyboard is the virtual keyboard device fed by the driver core. It
// announces every code reachable through any keymap layer, key repeat,
// and MSC_SCAN so userspace can observe raw matrix positions.
type Keyboard struct {
	dev *device
}

// NewKeyboard registers the virtual keyboard.
func NewKeyboard(log *slog.Logger) (*Keyboard, error) {
	id := inputID{
		Bustype: busI2C,
		Vendor:  0x1234,
		Product: 0x5678,
		Version: 0x0100,
	}
	dev, err := createDevice("Luckfox Lyra Keyboard", id, log, func(d *device) error {
		if err := d.setBits(setEvBit, evKey, evRep, evMsc); err != nil {
			return err
		}
		if err := d.setBits(setMscBit, mscScan); err != nil {
			return err
		}
		for _, code := range keymap.Capabilities() {
			if err := d.setBits(setKeyBit, uint64(code)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Keyboard{dev: dev}, nil
}

// Key reports a key press or release.
func (k *Keyboard) Key(code keymap.Code, pressed bool) {
	value := int32(0)
	if pressed {
		value = 1
	}
	k.dev.writeEvent(evKey, uint16(code), value)
}

// Scan reports the raw matrix position that produced the next key event.
func (k *Keyboard) Scan(keycode uint8) {
	k.dev.writeEvent(evMsc, mscScan, int32(keycode))
}

// Rel is a no-op: the keyboard device declares no relative axes.
func (k *Keyboard) Rel(driver.Axis, int32) {}

// Sync flushes the pending events as one report.
func (k *Keyboard) Sync() {
	k.dev.writeEvent(evSyn, synReport, 0)
}

// Close destroys the virtual keyboard.
func (k *Keyboard) Close() error {
	return k.dev.Close()
}

var _ driver.Sink = (*Keyboard)(nil)
