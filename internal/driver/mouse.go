package driver

import (
	"lyrad/internal/metrics"
	"lyrad/internal/register"
)

// processMouse reads both delta registers and emits scaled relative
// motion. A failed X read aborts before Y is attempted; a failed Y read
// aborts before anything is emitted, so a tick never reports half a
// sample. The speed multipliers are read once and used for the whole
// tick.
func (d *Device) processMouse() {
	xb, err := d.port.ReadRegister(register.RegMouseX)
	if err != nil {
		metrics.TransportErrors.WithLabelValues("mouse_x").Inc()
		d.log.Warn("mouse x read failed", "error", err)
		return
	}

	yb, err := d.port.ReadRegister(register.RegMouseY)
	if err != nil {
		metrics.TransportErrors.WithLabelValues("mouse_y").Inc()
		d.log.Warn("mouse y read failed", "error", err)
		return
	}

	dx, dy := int8(xb), int8(yb)
	speedX, speedY := d.cfg.MouseSpeed()

	moved := false
	if dx != 0 {
		d.mouse.Rel(AxisX, scaleDelta(dx, speedX))
		metrics.MotionEvents.WithLabelValues("x").Inc()
		moved = true
	}
	if dy != 0 {
		d.mouse.Rel(AxisY, scaleDelta(dy, speedY))
		metrics.MotionEvents.WithLabelValues("y").Inc()
		moved = true
	}

	if moved {
		d.mouse.Sync()
	}
}

// scaleDelta applies a percentage speed multiplier with integer
// truncation toward zero. Truncation must never erase real motion: a
// non-zero delta that scales to zero becomes one count in its own
// direction.
func scaleDelta(delta int8, speedPercent int) int32 {
	scaled := int32(delta) * int32(speedPercent) / 100
	if scaled == 0 {
		if delta > 0 {
			return 1
		}
		return -1
	}
	return scaled
}
