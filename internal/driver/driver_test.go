package driver

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"lyrad/internal/config"
	"lyrad/internal/keymap"
	"lyrad/internal/register"
)

// sinkEvent records one call into a test sink.
type sinkEvent struct {
	kind    string // "key", "scan", "rel", "sync"
	code    keymap.Code
	pressed bool
	keycode uint8
	axis    Axis
	delta   int32
}

// recordSink captures every report for assertions.
type recordSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *recordSink) Key(code keymap.Code, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{kind: "key", code: code, pressed: pressed})
}

func (s *recordSink) Scan(keycode uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{kind: "scan", keycode: keycode})
}

func (s *recordSink) Rel(axis Axis, delta int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{kind: "rel", axis: axis, delta: delta})
}

func (s *recordSink) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{kind: "sync"})
}

func (s *recordSink) all() []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkEvent(nil), s.events...)
}

func (s *recordSink) ofKind(kind string) []sinkEvent {
	var out []sinkEvent
	for _, e := range s.all() {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordSink) keys() []sinkEvent  { return s.ofKind("key") }
func (s *recordSink) rels() []sinkEvent  { return s.ofKind("rel") }
func (s *recordSink) scans() []sinkEvent { return s.ofKind("scan") }
func (s *recordSink) syncs() int         { return len(s.ofKind("sync")) }

func (s *recordSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// lastKey returns the most recent key event, failing the test if there
// is none.
func (s *recordSink) lastKey(t *testing.T) sinkEvent {
	t.Helper()
	keys := s.keys()
	if len(keys) == 0 {
		t.Fatal("no key events recorded")
	}
	return keys[len(keys)-1]
}

func newTestDevice(t *testing.T) (*Device, *register.SimPort, *recordSink, *recordSink) {
	t.Helper()
	port := register.NewSimPort()
	kb := &recordSink{}
	ms := &recordSink{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := New(port, kb, ms, config.DefaultConfig(), log)
	return d, port, kb, ms
}

// fifoByte encodes one FIFO entry: low two bits event type, upper six
// the hardware keycode.
func fifoByte(keycode uint8, typ register.EventType) byte {
	return keycode<<2 | byte(typ)
}

// statusByte encodes the key status register modifier bits.
func statusByte(shift, alt, fn bool) byte {
	var b byte
	if shift {
		b |= 0x01
	}
	if alt {
		b |= 0x02
	}
	if fn {
		b |= 0x04
	}
	return b
}
