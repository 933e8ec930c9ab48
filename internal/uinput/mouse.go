package uinput

import (
	"log/slog"

	"lyrad/internal/driver"
	"lyrad/internal/keymap"
)

// Mouse is the virtual pointer device fed by the driver core. It
// declares X/Y relative motion, a scroll wheel and the three standard
// buttons.
type Mouse struct {
	dev *device
}

// NewMouse registers the virtual mouse.
func NewMouse(log *slog.Logger) (*Mouse, error) {
	id := inputID{
		Bustype: busI2C,
		Vendor:  0x1234,
		Product: 0x5679,
		Version: 0x0100,
	}
	dev, err := createDevice("Luckfox Lyra Mouse", id, log, func(d *device) error {
		if err := d.setBits(setEvBit, evKey, evRel); err != nil {
			return err
		}
		if err := d.setBits(setRelBit, relX, relY, relWheel); err != nil {
			return err
		}
		return d.setBits(setKeyBit,
			uint64(keymap.BtnLeft), uint64(keymap.BtnRight), uint64(keymap.BtnMiddle))
	})
	if err != nil {
		return nil, err
	}
	return &Mouse{dev: dev}, nil
}

// Key reports a button press or release.
func (m *Mouse) Key(code keymap.Code, pressed bool) {
	value := int32(0)
	if pressed {
		value = 1
	}
	m.dev.writeEvent(evKey, uint16(code), value)
}

// Scan is a no-op: the pointer device carries no scan codes.
func (m *Mouse) Scan(uint8) {}

// Rel reports relative motion on one axis.
func (m *Mouse) Rel(axis driver.Axis, delta int32) {
	code := uint16(relX)
	if axis == driver.AxisY {
		code = relY
	}
	m.dev.writeEvent(evRel, code, delta)
}

// Sync flushes the pending events as one report.
func (m *Mouse) Sync() {
	m.dev.writeEvent(evSyn, synReport, 0)
}

// Close destroys the virtual mouse.
func (m *Mouse) Close() error {
	return m.dev.Close()
}

var _ driver.Sink = (*Mouse)(nil)
