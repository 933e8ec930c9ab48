// Package keymap holds the static key layout of the Lyra keyboard: three
// parallel 53-entry layers (normal, shift, fn) mapping a hardware keycode
// to a logical key. The layers are fixed for the lifetime of the process;
// which layer applies is decided per event from the live modifier state,
// with fn taking priority over shift.
package keymap

import (
	"sort"

	"lyrad/internal/register"
)

// NumKeycodes is the number of physical key positions. Hardware keycodes
// at or above this value are protocol errors and never reach the layers.
const NumKeycodes = 53

// Hardware keycode positions with special handling. Shift, alt and fn
// state is reported from the key status register rather than resolved
// through the layers; ctrl is reported directly as a fixed logical key.
const (
	PosShiftLeft  uint8 = 25
	PosAlt        uint8 = 30
	PosCtrl       uint8 = 33
	PosFn         uint8 = 37
	PosShiftRight uint8 = 41
)

// Entry holds the logical key of one keycode position across all layers.
type Entry struct {
	Normal Code
	Shift  Code
	Fn     Code
}

// layout indexes entries by hardware keycode. Positions follow the
// physical matrix naming of the keyboard (A1..G6, FN1..FN12).
var layout = [NumKeycodes]Entry{
	{Key4, Key4, KeyF4},                            // 0: A1
	{Key5, Key5, KeyF5},                            // 1: B1
	{Key7, Key7, KeyF7},                            // 2: C1
	{Key6, Key6, KeyF6},                            // 3: D1
	{Key8, Key8, KeyF8},                            // 4: E1
	{Key9, Key9, KeyF9},                            // 5: F1
	{Key0, Key0, KeyF10},                           // 6: G1
	{KeyR, KeyR, KeyMinus},                         // 7: A2
	{KeyT, KeyT, KeyMinus},                         // 8: B2
	{KeyU, KeyU, KeyEqual},                         // 9: C2
	{KeyY, KeyY, KeyEqual},                         // 10: D2
	{KeyI, KeyI, KeyBackslash},                     // 11: E2
	{KeyO, KeyO, KeyF11},                           // 12: F2
	{KeyP, KeyP, KeyF12},                           // 13: G2
	{KeyF, KeyF, KeyApostrophe},                    // 14: A3
	{KeyG, KeyG, KeyLeftBrace},                     // 15: B3
	{KeyComma, KeyComma, KeySlash},                 // 16: C3
	{KeyH, KeyH, KeyRightBrace},                    // 17: D3
	{KeyDot, KeyDot, KeyEnd},                       // 18: E3
	{KeyL, KeyL, KeyHome},                          // 19: F3
	{KeyEnter, KeyEnter, KeyEnter},                 // 20: G3
	{Key3, Key3, KeyF3},                            // 21: A4
	{KeyE, KeyE, KeyGrave},                         // 22: B4
	{KeyC, KeyC, KeySemicolon},                     // 23: C4
	{KeyD, KeyD, KeySemicolon},                     // 24: D4
	{KeyLeftShift, KeyLeftShift, KeyLeftShift},     // 25: E4
	{KeyM, KeyM, KeySlash},                         // 26: F4
	{KeySpace, KeySpace, KeySpace},                 // 27: G4
	{Key2, Key2, KeyF2},                            // 28: A5
	{KeyEsc, KeyEsc, KeyEsc},                       // 29: B5
	{KeyLeftAlt, KeyLeftAlt, KeyLeftAlt},           // 30: C5
	{KeyTab, KeyTab, KeyTab},                       // 31: D5
	{KeyV, KeyV, KeyApostrophe},                    // 32: E5
	{KeyLeftCtrl, KeyLeftCtrl, KeyLeftCtrl},        // 33: F5
	{KeyBackspace, KeyBackspace, KeyBackspace},     // 34: G5
	{Key1, Key1, KeyF1},                            // 35: A6
	{KeyQ, KeyQ, KeyGrave},                         // 36: B6
	{KeyFn, KeyFn, KeyFn},                          // 37: C6
	{KeyZ, KeyZ, Key102nd},                         // 38: D6
	{KeyB, KeyB, KeyLeftBrace},                     // 39: E6
	{KeyN, KeyN, KeyRightBrace},                    // 40: F6
	{KeyRightShift, KeyRightShift, KeyRightShift},  // 41: G6
	{KeyW, KeyW, KeyUp},                            // 42: FN1
	{KeyA, KeyA, KeyLeft},                          // 43: FN2
	{KeyS, KeyS, KeyRight},                         // 44: FN3
	{KeyX, KeyX, KeyDown},                          // 45: FN4
	{KeyJ, KeyJ, KeyA},                             // 46: FN5
	{KeyK, KeyK, KeyB},                             // 47: FN6
	{BtnLeft, BtnRight, BtnMiddle},                 // 48: FN8
	{KeyDown, KeyDown, KeyDown},                    // 49: FN9
	{KeyUp, KeyUp, KeyUp},                          // 50: FN10
	{KeyRight, KeyRight, KeyRight},                 // 51: FN11
	{KeyLeft, KeyLeft, KeyLeft},                    // 52: FN12
}

// Lookup resolves a hardware keycode against the layer selected by the
// modifier snapshot. fn overrides shift when both are held. The keycode
// must be below NumKeycodes.
func Lookup(keycode uint8, m register.Modifiers) Code {
	e := layout[keycode]
	switch {
	case m.Fn:
		return e.Fn
	case m.Shift:
		return e.Shift
	default:
		return e.Normal
	}
}

// Capabilities returns the sorted union of logical keys across all three
// layers plus the power button, for virtual device registration.
func Capabilities() []Code {
	seen := make(map[Code]bool)
	for _, e := range layout {
		seen[e.Normal] = true
		seen[e.Shift] = true
		seen[e.Fn] = true
	}
	seen[KeyPower] = true

	codes := make([]Code, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
