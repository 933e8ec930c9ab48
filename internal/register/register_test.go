package register

import (
	"errors"
	"testing"
)

func TestDecodeKeyStatus(t *testing.T) {
	tests := []struct {
		name  string
		b     byte
		want  Modifiers
		depth int
	}{
		{"all clear", 0x00, Modifiers{}, 0},
		{"shift", 0x01, Modifiers{Shift: true}, 0},
		{"alt", 0x02, Modifiers{Alt: true}, 0},
		{"fn", 0x04, Modifiers{Fn: true}, 0},
		{"shift+fn", 0x05, Modifiers{Shift: true, Fn: true}, 0},
		{"depth only", 0xA0, Modifiers{}, 10},
		{"depth and mods", 0x37, Modifiers{Shift: true, Alt: true, Fn: true}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeKeyStatus(tt.b)
			if got.Modifiers != tt.want {
				t.Errorf("modifiers = %+v, want %+v", got.Modifiers, tt.want)
			}
			if got.FifoDepth != tt.depth {
				t.Errorf("depth = %d, want %d", got.FifoDepth, tt.depth)
			}
		})
	}
}

func TestDecodeFifo(t *testing.T) {
	tests := []struct {
		name string
		b    byte
		typ  EventType
		code uint8
	}{
		{"empty", 0x00, EventNone, 0},
		{"press keycode 5", 0b000101_01, EventPress, 5},
		{"release keycode 5", 0b000101_11, EventRelease, 5},
		{"hold keycode 40", 0b101000_10, EventHold, 40},
		{"max keycode", 0xFF, EventRelease, 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeFifo(tt.b)
			if got.Type != tt.typ || got.Keycode != tt.code {
				t.Errorf("DecodeFifo(%#02x) = %v/%d, want %v/%d",
					tt.b, got.Type, got.Keycode, tt.typ, tt.code)
			}
		})
	}
}

func TestDecodeIntStatus(t *testing.T) {
	s := DecodeIntStatus(0x7F)
	if !s.FifoOverflow || !s.ShiftChange || !s.FnChange || !s.AltChange ||
		!s.KeyEvent || !s.MouseEvent || !s.PowerButton {
		t.Errorf("expected all bits set, got %+v", s)
	}

	s = DecodeIntStatus(0x00)
	if s.ModifierChanged() || s.KeyEvent || s.MouseEvent || s.PowerButton {
		t.Errorf("expected no bits set, got %+v", s)
	}

	if !DecodeIntStatus(0x04).ModifierChanged() {
		t.Error("fn change should count as a modifier change")
	}
}

func TestSimPortQueueThenFixed(t *testing.T) {
	p := NewSimPort()
	p.Push(RegFifoAccess, 0x05, 0x07)

	for i, want := range []byte{0x05, 0x07, 0x00, 0x00} {
		b, err := p.ReadRegister(RegFifoAccess)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if b != want {
			t.Errorf("read %d = %#02x, want %#02x", i, b, want)
		}
	}

	if p.Reads(RegFifoAccess) != 4 {
		t.Errorf("read count = %d, want 4", p.Reads(RegFifoAccess))
	}
}

func TestSimPortFail(t *testing.T) {
	p := NewSimPort()
	boom := errors.New("bus hiccup")

	p.Fail(RegIntStatus, boom)
	if _, err := p.ReadRegister(RegIntStatus); !errors.Is(err, boom) {
		t.Errorf("expected scripted error, got %v", err)
	}

	p.Fail(RegIntStatus, nil)
	if _, err := p.ReadRegister(RegIntStatus); err != nil {
		t.Errorf("expected recovery after clearing error, got %v", err)
	}
}
