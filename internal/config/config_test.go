package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	x, y := cfg.MouseSpeed()
	if x != DefaultMouseSpeed || y != DefaultMouseSpeed {
		t.Errorf("default mouse speed = %d/%d, want %d", x, y, DefaultMouseSpeed)
	}
	if cfg.PollInterval() != DefaultIntervalMs*time.Millisecond {
		t.Errorf("default poll interval = %v", cfg.PollInterval())
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Poll.IntervalMs != DefaultIntervalMs {
		t.Errorf("interval = %d, want default", cfg.Poll.IntervalMs)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not persisted: %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Mouse.SpeedX = 250
	cfg.Poll.IntervalMs = 20
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if x, _ := got.MouseSpeed(); x != 250 {
		t.Errorf("speed_x = %d, want 250", x)
	}
	if got.Poll.IntervalMs != 20 {
		t.Errorf("interval = %d, want 20", got.Poll.IntervalMs)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := "[mouse]\nspeed_x = 9999\nspeed_y = 100\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for speed_x=9999")
	}
}

func TestSettersEnforceRanges(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		set  func() error
		ok   bool
	}{
		{"speed x min", func() error { return cfg.SetMouseSpeedX(MinMouseSpeed) }, true},
		{"speed x max", func() error { return cfg.SetMouseSpeedX(MaxMouseSpeed) }, true},
		{"speed x below", func() error { return cfg.SetMouseSpeedX(MinMouseSpeed - 1) }, false},
		{"speed x above", func() error { return cfg.SetMouseSpeedX(MaxMouseSpeed + 1) }, false},
		{"speed y below", func() error { return cfg.SetMouseSpeedY(0) }, false},
		{"interval min", func() error { return cfg.SetPollIntervalMs(MinIntervalMs) }, true},
		{"interval max", func() error { return cfg.SetPollIntervalMs(MaxIntervalMs) }, true},
		{"interval below", func() error { return cfg.SetPollIntervalMs(MinIntervalMs - 1) }, false},
		{"interval above", func() error { return cfg.SetPollIntervalMs(MaxIntervalMs + 1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected rejection")
			}
		})
	}
}

func TestRejectedWriteRetainsPriorValue(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetMouseSpeedX(200); err != nil {
		t.Fatal(err)
	}

	if err := cfg.SetMouseSpeedX(1000); err == nil {
		t.Fatal("expected rejection")
	}
	if x, _ := cfg.MouseSpeed(); x != 200 {
		t.Errorf("speed_x = %d after rejected write, want 200", x)
	}
}

func TestApplyTunablesSkipsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	src := DefaultConfig()
	src.Mouse.SpeedX = 300
	src.Mouse.SpeedY = 7777 // invalid
	src.Poll.IntervalMs = 50

	err := cfg.ApplyTunables(src)
	if err == nil {
		t.Error("expected error reporting the invalid field")
	}

	x, y := cfg.MouseSpeed()
	if x != 300 {
		t.Errorf("valid speed_x not applied: %d", x)
	}
	if y != DefaultMouseSpeed {
		t.Errorf("invalid speed_y clobbered running value: %d", y)
	}
	if cfg.Poll.IntervalMs != 50 {
		t.Errorf("valid interval not applied: %d", cfg.Poll.IntervalMs)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Device.Bus = ""
	cfg.Device.Addr = 0x100
	cfg.Mouse.SpeedX = 1
	cfg.Poll.IntervalMs = 0
	cfg.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(errs) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(errs), errs)
	}
}
