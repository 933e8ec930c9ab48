package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for i := range e {
		msgs = append(msgs, e[i].Error())
	}
	return strings.Join(msgs, "; ")
}

func rangeMsg(v, lo, hi int) string {
	return fmt.Sprintf("value %d outside range [%d,%d]", v, lo, hi)
}

// Validate performs full validation of a loaded configuration.
func Validate(c *Config) error {
	var errs ValidationErrors

	if c.Device.Bus == "" {
		errs = append(errs, ValidationError{
			Field:   "device.bus",
			Message: "must name an i2c-dev device",
		})
	}
	// 7-bit address space, excluding the reserved ranges.
	if c.Device.Addr < 0x08 || c.Device.Addr > 0x77 {
		errs = append(errs, ValidationError{
			Field:   "device.addr",
			Message: fmt.Sprintf("address 0x%02x outside valid 7-bit range [0x08,0x77]", c.Device.Addr),
		})
	}

	if c.Mouse.SpeedX < MinMouseSpeed || c.Mouse.SpeedX > MaxMouseSpeed {
		errs = append(errs, ValidationError{
			Field:   "mouse.speed_x",
			Message: rangeMsg(c.Mouse.SpeedX, MinMouseSpeed, MaxMouseSpeed),
		})
	}
	if c.Mouse.SpeedY < MinMouseSpeed || c.Mouse.SpeedY > MaxMouseSpeed {
		errs = append(errs, ValidationError{
			Field:   "mouse.speed_y",
			Message: rangeMsg(c.Mouse.SpeedY, MinMouseSpeed, MaxMouseSpeed),
		})
	}

	if c.Poll.IntervalMs < MinIntervalMs || c.Poll.IntervalMs > MaxIntervalMs {
		errs = append(errs, ValidationError{
			Field:   "poll.interval_ms",
			Message: rangeMsg(c.Poll.IntervalMs, MinIntervalMs, MaxIntervalMs),
		})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q", c.Logging.Level),
		})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q", c.Logging.Format),
		})
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, ValidationError{
			Field:   "metrics.listen",
			Message: "required when metrics are enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
