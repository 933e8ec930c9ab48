package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyrad/internal/keymap"
	"lyrad/internal/register"
)

var errBus = errors.New("i2c: transfer timed out")

func TestDrainStopsOnEmptyQueue(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Push(register.RegFifoAccess,
		fifoByte(5, register.EventPress),
		fifoByte(5, register.EventRelease),
	)
	// The queue then falls back to 0x00 (EventNone).
	d.drainFifo()

	keys := kb.keys()
	require.Len(t, keys, 2)
	assert.True(t, keys[0].pressed)
	assert.False(t, keys[1].pressed)
	assert.Equal(t, 3, port.Reads(register.RegFifoAccess),
		"drain reads until the None entry, inclusive")
}

func TestDrainBoundedOnNeverEmptyQueue(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	// A stuck queue that always returns a press and never None.
	port.Set(register.RegFifoAccess, fifoByte(5, register.EventPress))
	d.drainFifo()

	assert.Equal(t, maxFifoReads, port.Reads(register.RegFifoAccess),
		"drain must stop at the safety bound")
	assert.Len(t, kb.keys(), maxFifoReads)
}

func TestHoldEventsAreInert(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Push(register.RegFifoAccess,
		fifoByte(5, register.EventHold),
		fifoByte(7, register.EventHold),
	)
	d.drainFifo()

	assert.Empty(t, kb.all(), "hold must not emit press or release")
	for k := 0; k < keymap.NumKeycodes; k++ {
		assert.Equal(t, keymap.CodeNone, d.press[k], "hold must not change press state")
	}
}

func TestDrainContinuesPastHold(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Push(register.RegFifoAccess,
		fifoByte(5, register.EventHold),
		fifoByte(7, register.EventPress),
	)
	d.drainFifo()

	keys := kb.keys()
	require.Len(t, keys, 1, "press after hold must still be processed")
	assert.True(t, keys[0].pressed)
}

func TestDrainAbortsOnTransportError(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Fail(register.RegFifoAccess, errBus)
	d.drainFifo()

	assert.Equal(t, 1, port.Reads(register.RegFifoAccess), "no retry within the tick")
	assert.Empty(t, kb.all())
}

func TestDrainDropsInvalidKeycodeAndContinues(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Push(register.RegFifoAccess,
		fifoByte(60, register.EventPress), // out of range
		fifoByte(5, register.EventPress),
	)
	d.drainFifo()

	keys := kb.keys()
	require.Len(t, keys, 1, "only the offending entry is dropped")
	assert.True(t, keys[0].pressed)
}
