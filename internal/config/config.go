// Package config handles configuration loading, validation, and runtime
// tunables for lyrad.
//
// Two kinds of settings live here. Startup settings (device path, slave
// address, logging, sockets) are read once when the daemon boots. Runtime
// tunables (mouse speed, poll interval) mirror the sysfs attributes of
// the original kernel driver: they can change at any time through the
// control socket or a config file reload, are range-validated at the
// boundary, and are read by the poll loop once per tick.
package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// Tunable bounds. Writes outside these ranges are rejected without
// mutating state.
const (
	MinMouseSpeed  = 10
	MaxMouseSpeed  = 500
	MinIntervalMs  = 5
	MaxIntervalMs  = 100
)

// Defaults.
const (
	DefaultMouseSpeed = 100 // percent, 1x
	DefaultIntervalMs = 10
	DefaultI2CAddr    = 0x18
)

// Config holds the complete daemon configuration.
type Config struct {
	// Device selects the I2C link to the peripheral.
	Device DeviceConfig `toml:"device"`

	// Mouse holds the speed multipliers applied to pointer deltas.
	Mouse MouseConfig `toml:"mouse"`

	// Poll holds the scheduler interval.
	Poll PollConfig `toml:"poll"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`

	// IPC configuration for the control socket.
	IPC IPCConfig `toml:"ipc"`

	// Metrics configuration for the Prometheus endpoint.
	Metrics MetricsConfig `toml:"metrics"`

	// mu protects the runtime tunables (Mouse, Poll).
	mu sync.RWMutex `toml:"-"`
}

// DeviceConfig selects the peripheral bus.
type DeviceConfig struct {
	// Bus is the i2c-dev character device, e.g. /dev/i2c-3.
	Bus string `toml:"bus"`

	// Addr is the 7-bit I2C slave address of the keyboard controller.
	Addr int `toml:"addr"`
}

// MouseConfig holds the pointer speed multipliers in percent
// (100 = 1x). Valid range [10,500].
type MouseConfig struct {
	SpeedX int `toml:"speed_x"`
	SpeedY int `toml:"speed_y"`
}

// PollConfig holds the poll scheduler interval in milliseconds.
// Valid range [5,100].
type PollConfig struct {
	IntervalMs int `toml:"interval_ms"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`

	// Output is "stdout" or "stderr".
	Output string `toml:"output"`
}

// IPCConfig holds the control socket settings.
type IPCConfig struct {
	// Socket is the unix socket path for the attribute interface.
	Socket string `toml:"socket"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	// Enabled turns the HTTP metrics listener on.
	Enabled bool `toml:"enabled"`

	// Listen is the address of the metrics endpoint, e.g. ":9109".
	Listen string `toml:"listen"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Bus:  "/dev/i2c-3",
			Addr: DefaultI2CAddr,
		},
		Mouse: MouseConfig{
			SpeedX: DefaultMouseSpeed,
			SpeedY: DefaultMouseSpeed,
		},
		Poll: PollConfig{
			IntervalMs: DefaultIntervalMs,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		IPC: IPCConfig{
			Socket: DefaultSocketPath(),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9109",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if os.Geteuid() == 0 {
		return "/etc/lyrad/config.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "lyrad.toml"
	}
	return filepath.Join(home, ".config", "lyrad", "config.toml")
}

// DefaultSocketPath returns the default control socket location.
func DefaultSocketPath() string {
	if os.Geteuid() == 0 {
		return "/run/lyrad.sock"
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lyrad.sock")
}

// Load reads the configuration from path. A nonexistent file yields the
// defaults, persisted to path so there is something to edit.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path as TOML, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg.mu.RLock()
	defer cfg.mu.RUnlock()
	return toml.NewEncoder(f).Encode(cfg)
}

// DevicePath returns the I2C bus device path.
func (c *Config) DevicePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Device.Bus
}

// MouseSpeed returns the current X and Y speed multipliers.
func (c *Config) MouseSpeed() (x, y int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Mouse.SpeedX, c.Mouse.SpeedY
}

// SetMouseSpeedX updates the X speed multiplier. Out-of-range values are
// rejected and the prior value is retained.
func (c *Config) SetMouseSpeedX(v int) error {
	if v < MinMouseSpeed || v > MaxMouseSpeed {
		return &ValidationError{Field: "mouse.speed_x", Message: rangeMsg(v, MinMouseSpeed, MaxMouseSpeed)}
	}
	c.mu.Lock()
	c.Mouse.SpeedX = v
	c.mu.Unlock()
	return nil
}

// SetMouseSpeedY updates the Y speed multiplier.
func (c *Config) SetMouseSpeedY(v int) error {
	if v < MinMouseSpeed || v > MaxMouseSpeed {
		return &ValidationError{Field: "mouse.speed_y", Message: rangeMsg(v, MinMouseSpeed, MaxMouseSpeed)}
	}
	c.mu.Lock()
	c.Mouse.SpeedY = v
	c.mu.Unlock()
	return nil
}

// PollInterval returns the current poll interval.
func (c *Config) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.Poll.IntervalMs) * time.Millisecond
}

// SetPollIntervalMs updates the poll interval. The scheduler picks the
// new value up when it arms its next tick.
func (c *Config) SetPollIntervalMs(v int) error {
	if v < MinIntervalMs || v > MaxIntervalMs {
		return &ValidationError{Field: "poll.interval_ms", Message: rangeMsg(v, MinIntervalMs, MaxIntervalMs)}
	}
	c.mu.Lock()
	c.Poll.IntervalMs = v
	c.mu.Unlock()
	return nil
}

// ApplyTunables copies the runtime tunables from src, validating each
// one. Invalid values are skipped so a bad reload never clobbers a good
// running value; the first error is returned.
func (c *Config) ApplyTunables(src *Config) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	keep(c.SetMouseSpeedX(src.Mouse.SpeedX))
	keep(c.SetMouseSpeedY(src.Mouse.SpeedY))
	keep(c.SetPollIntervalMs(src.Poll.IntervalMs))
	return first
}
