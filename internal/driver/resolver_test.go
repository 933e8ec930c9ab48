package driver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyrad/internal/keymap"
	"lyrad/internal/register"
)

// excluded are the keycode positions the resolver never reports through
// the keymap.
var excluded = map[uint8]bool{
	keymap.PosShiftLeft:  true,
	keymap.PosShiftRight: true,
	keymap.PosAlt:        true,
	keymap.PosCtrl:       true,
	keymap.PosFn:         true,
}

// allSnapshots enumerates every modifier combination.
func allSnapshots() []register.Modifiers {
	var out []register.Modifiers
	for i := 0; i < 8; i++ {
		out = append(out, register.Modifiers{
			Shift: i&1 != 0,
			Alt:   i&2 != 0,
			Fn:    i&4 != 0,
		})
	}
	return out
}

func TestPressReleaseSymmetry(t *testing.T) {
	// For every resolvable keycode and every press-time snapshot, the
	// release must report exactly the key the press reported, no matter
	// what the modifiers drift to in between.
	for k := uint8(0); k < keymap.NumKeycodes; k++ {
		if excluded[k] {
			continue
		}
		for _, m := range allSnapshots() {
			t.Run(fmt.Sprintf("keycode=%d/shift=%v,alt=%v,fn=%v", k, m.Shift, m.Alt, m.Fn), func(t *testing.T) {
				d, port, kb, _ := newTestDevice(t)

				port.Set(register.RegKeyStatus, statusByte(m.Shift, m.Alt, m.Fn))
				d.handleKey(k, true)
				pressed := kb.lastKey(t)
				require.True(t, pressed.pressed)

				// Drift every modifier before the release.
				port.Set(register.RegKeyStatus, statusByte(!m.Shift, !m.Alt, !m.Fn))
				d.handleKey(k, false)
				released := kb.lastKey(t)

				assert.False(t, released.pressed)
				assert.Equal(t, pressed.code, released.code,
					"release must report the key recorded at press time")
				assert.Equal(t, keymap.CodeNone, d.press[k],
					"press slot must be cleared after release")
			})
		}
	}
}

func TestShiftDriftReleasesNormalLayerKey(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	// Position 48 is the one spot where shift selects a different code
	// (left vs right mouse button).
	port.Set(register.RegKeyStatus, statusByte(false, false, false))
	d.handleKey(48, true)
	require.Equal(t, keymap.BtnLeft, kb.lastKey(t).code)

	port.Set(register.RegKeyStatus, statusByte(true, false, false))
	d.handleKey(48, false)
	got := kb.lastKey(t)
	assert.False(t, got.pressed)
	assert.Equal(t, keymap.BtnLeft, got.code, "must not release the shift-layer key")
}

func TestFnDriftReleasesNormalLayerKey(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Set(register.RegKeyStatus, statusByte(false, false, false))
	d.handleKey(35, true) // A6: 1 / ! / F1
	require.Equal(t, keymap.Key1, kb.lastKey(t).code)

	port.Set(register.RegKeyStatus, statusByte(false, false, true))
	d.handleKey(35, false)
	assert.Equal(t, keymap.Key1, kb.lastKey(t).code)
}

func TestFnOverridesShift(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Set(register.RegKeyStatus, statusByte(true, false, true))
	d.handleKey(35, true)
	assert.Equal(t, keymap.KeyF1, kb.lastKey(t).code, "fn layer must win over shift")
}

func TestCtrlReportedDirectly(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	// Ctrl bypasses the keymap on every layer.
	port.Set(register.RegKeyStatus, statusByte(false, false, true))
	d.handleKey(keymap.PosCtrl, true)
	got := kb.lastKey(t)
	assert.Equal(t, keymap.KeyLeftCtrl, got.code)
	assert.True(t, got.pressed)
	assert.Empty(t, kb.scans(), "ctrl carries no scancode event")
	assert.Equal(t, keymap.CodeNone, d.press[keymap.PosCtrl], "ctrl must not touch the press table")

	d.handleKey(keymap.PosCtrl, false)
	got = kb.lastKey(t)
	assert.Equal(t, keymap.KeyLeftCtrl, got.code)
	assert.False(t, got.pressed)
}

func TestModifierPositionsAreSilent(t *testing.T) {
	d, _, kb, _ := newTestDevice(t)

	for _, k := range []uint8{keymap.PosShiftLeft, keymap.PosShiftRight, keymap.PosAlt, keymap.PosFn} {
		d.handleKey(k, true)
		d.handleKey(k, false)
	}
	assert.Empty(t, kb.all(), "modifier positions must not produce events")
}

func TestInvalidKeycodeRejected(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	for _, k := range []uint8{keymap.NumKeycodes, 60, 63} {
		d.handleKey(k, true)
	}
	assert.Empty(t, kb.all())
	assert.Zero(t, port.Reads(register.RegKeyStatus),
		"invalid keycodes are rejected before the modifier read")
}

func TestReleaseWithoutPressFallsBackToCurrentModifiers(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Set(register.RegKeyStatus, statusByte(false, false, true))
	d.handleKey(5, false) // no prior press recorded
	got := kb.lastKey(t)
	assert.False(t, got.pressed)
	assert.Equal(t, keymap.KeyF9, got.code, "fallback resolves against the live fn layer")
}

func TestRepeatedPressOverwritesStaleEntry(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Set(register.RegKeyStatus, statusByte(false, false, false))
	d.handleKey(35, true)
	require.Equal(t, keymap.Key1, d.press[35])

	port.Set(register.RegKeyStatus, statusByte(false, false, true))
	d.handleKey(35, true)
	require.Equal(t, keymap.KeyF1, d.press[35], "second press overwrites the stale entry")

	d.handleKey(35, false)
	assert.Equal(t, keymap.KeyF1, kb.lastKey(t).code)
}

func TestPressEmitsScanKeySync(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Set(register.RegKeyStatus, 0)
	d.handleKey(5, true)

	events := kb.all()
	require.Len(t, events, 3)
	assert.Equal(t, "scan", events[0].kind)
	assert.Equal(t, uint8(5), events[0].keycode)
	assert.Equal(t, "key", events[1].kind)
	assert.Equal(t, "sync", events[2].kind)
}

func TestModifierReadFailureDropsEvent(t *testing.T) {
	d, port, kb, _ := newTestDevice(t)

	port.Fail(register.RegKeyStatus, errBus)
	d.handleKey(5, true)
	assert.Empty(t, kb.all())
	assert.Equal(t, keymap.CodeNone, d.press[5])
}
