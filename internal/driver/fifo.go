package driver

import (
	"lyrad/internal/metrics"
	"lyrad/internal/register"
)

// maxFifoReads bounds the drain loop within one tick. The hardware
// queue might pathologically never report empty; the decoder must not
// hold up the scheduler indefinitely.
const maxFifoReads = 16

// drainFifo reads queued key events until the hardware reports an empty
// queue or the safety bound is hit. A transport error aborts the drain
// for this tick; protocol errors drop the single offending entry and
// the drain continues.
func (d *Device) drainFifo() {
	for i := 0; i < maxFifoReads; i++ {
		b, err := d.port.ReadRegister(register.RegFifoAccess)
		if err != nil {
			metrics.TransportErrors.WithLabelValues("fifo").Inc()
			d.log.Warn("fifo read failed, aborting drain", "entries", i, "error", err)
			return
		}

		entry := register.DecodeFifo(b)

		switch entry.Type {
		case register.EventNone:
			// Queue empty.
			return
		case register.EventPress:
			metrics.KeyEvents.WithLabelValues("press").Inc()
			d.handleKey(entry.Keycode, true)
		case register.EventRelease:
			metrics.KeyEvents.WithLabelValues("release").Inc()
			d.handleKey(entry.Keycode, false)
		case register.EventHold:
			// Auto-repeat is the input layer's job. Replaying hold as
			// press risks a stuck key if a later release is lost.
			metrics.DroppedEvents.WithLabelValues(metrics.ReasonHold).Inc()
			d.log.Debug("hold event ignored", "keycode", entry.Keycode)
		default:
			metrics.DroppedEvents.WithLabelValues(metrics.ReasonUnknownType).Inc()
			d.log.Warn("unknown fifo event type", "raw", b, "type", uint8(entry.Type))
		}
	}
}
