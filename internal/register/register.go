// Package register defines the wire protocol of the Lyra keyboard/mouse
// peripheral and the transport used to read it.
//
// The peripheral exposes five single-byte registers over a point-to-point
// I2C link. This package owns the register addresses, the bit layout of
// each register, and the decode helpers that turn raw bytes into typed
// values. Everything above this package works with decoded values only.
package register

import "fmt"

// Register addresses.
const (
	RegKeyStatus  uint8 = 0x00 // modifier bits and FIFO depth
	RegFifoAccess uint8 = 0x01 // one queued key event per read
	RegMouseX     uint8 = 0x02 // signed X delta
	RegMouseY     uint8 = 0x03 // signed Y delta
	RegIntStatus  uint8 = 0x04 // pending event bitmask
)

// Key status register bits (0x00).
const (
	keyStatusShift    = 1 << 0
	keyStatusAlt      = 1 << 1
	keyStatusFn       = 1 << 2
	keyStatusFifoMask = 0xF0
	keyStatusFifoOff  = 4
)

// FIFO access register layout (0x01).
const (
	fifoTypeMask    = 0x03
	fifoKeycodeMask = 0xFC
	fifoKeycodeOff  = 2
)

// Interrupt status register bits (0x04).
const (
	intFifoOverflow = 1 << 0
	intShiftChange  = 1 << 1
	intFnChange     = 1 << 2
	intAltChange    = 1 << 3
	intKeyEvent     = 1 << 4
	intMouseEvent   = 1 << 5
	intPowerButton  = 1 << 6
)

// Port reads single registers from the peripheral. A failed read is a
// transport error: the caller aborts the current sub-operation and the
// next poll retries naturally.
type Port interface {
	ReadRegister(reg uint8) (byte, error)
}

// Modifiers is the modifier state decoded from the key status register.
// It is read fresh at each decision point, never cached across ticks.
type Modifiers struct {
	Shift bool
	Alt   bool
	Fn    bool
}

// KeyStatus is the decoded key status register.
type KeyStatus struct {
	Modifiers
	// FifoDepth is the number of queued events the hardware reports.
	// Informational only; the FIFO is drained until it reads empty.
	FifoDepth int
}

// DecodeKeyStatus decodes the key status register (0x00).
func DecodeKeyStatus(b byte) KeyStatus {
	return KeyStatus{
		Modifiers: Modifiers{
			Shift: b&keyStatusShift != 0,
			Alt:   b&keyStatusAlt != 0,
			Fn:    b&keyStatusFn != 0,
		},
		FifoDepth: int(b&keyStatusFifoMask) >> keyStatusFifoOff,
	}
}

// EventType is the type field of a FIFO entry.
type EventType uint8

// FIFO event types. None marks an empty queue.
const (
	EventNone EventType = iota
	EventPress
	EventHold
	EventRelease
)

// String returns the event type name for logging.
func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventPress:
		return "press"
	case EventHold:
		return "hold"
	case EventRelease:
		return "release"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// FifoEntry is one decoded entry of the hardware event queue.
type FifoEntry struct {
	Type    EventType
	Keycode uint8
}

// DecodeFifo decodes one FIFO access register read (0x01). The low two
// bits carry the event type, the upper six the hardware keycode.
func DecodeFifo(b byte) FifoEntry {
	return FifoEntry{
		Type:    EventType(b & fifoTypeMask),
		Keycode: (b & fifoKeycodeMask) >> fifoKeycodeOff,
	}
}

// IntStatus is the decoded interrupt status register. Each bit gates one
// processing stage of the poll loop.
type IntStatus struct {
	FifoOverflow bool
	ShiftChange  bool
	FnChange     bool
	AltChange    bool
	KeyEvent     bool
	MouseEvent   bool
	PowerButton  bool
}

// DecodeIntStatus decodes the interrupt status register (0x04).
func DecodeIntStatus(b byte) IntStatus {
	return IntStatus{
		FifoOverflow: b&intFifoOverflow != 0,
		ShiftChange:  b&intShiftChange != 0,
		FnChange:     b&intFnChange != 0,
		AltChange:    b&intAltChange != 0,
		KeyEvent:     b&intKeyEvent != 0,
		MouseEvent:   b&intMouseEvent != 0,
		PowerButton:  b&intPowerButton != 0,
	}
}

// ModifierChanged reports whether any modifier change bit is set.
func (s IntStatus) ModifierChanged() bool {
	return s.ShiftChange || s.FnChange || s.AltChange
}
