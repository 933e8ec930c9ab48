// Package uinput registers the virtual input devices that carry
// translated events into the kernel input layer, via /dev/uinput.
//
// Two devices are created at startup: a keyboard whose capability set
// is the union of all three keymap layers plus the power button, and a
// relative mouse. Both implement driver.Sink.
package uinput

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// uinput ioctls (linux/uinput.h).
const (
	devCreate  = 0x5501
	devDestroy = 0x5502
	setEvBit   = 0x40045564
	setKeyBit  = 0x40045565
	setRelBit  = 0x40045566
	setMscBit  = 0x40045568
)

// Input event constants (linux/input-event-codes.h).
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evMsc = 0x04
	evRep = 0x14

	synReport = 0
	mscScan   = 4

	relX     = 0x00
	relY     = 0x01
	relWheel = 0x08

	busI2C = 0x18
)

const (
	maxNameSize = 80
	absSize     = 64
)

// inputID identifies a virtual device to the input layer.
type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// userDev is the uinput_user_dev setup block written before DEV_CREATE.
type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

// inputEvent matches struct input_event.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// device is one registered uinput device.
type device struct {
	file *os.File
	log  *slog.Logger
	name string
}

// createDevice opens /dev/uinput, runs the capability setup, writes the
// device description and registers it.
func createDevice(name string, id inputID, log *slog.Logger, setup func(*device) error) (*device, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	d := &device{file: f, log: log, name: name}

	if err := setup(d); err != nil {
		f.Close()
		return nil, err
	}

	ud := userDev{ID: id}
	copy(ud.Name[:], name)
	if err := binary.Write(f, binary.LittleEndian, &ud); err != nil {
		f.Close()
		return nil, fmt.Errorf("write device description: %w", err)
	}

	if err := d.ioctl(devCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("create device %q: %w", name, err)
	}

	log.Info("virtual device registered", "name", name)
	return d, nil
}

func (d *device) ioctl(request uintptr, arg uint64) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.file.Fd(), request, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// setBits applies one capability ioctl for each code.
func (d *device) setBits(request uintptr, codes ...uint64) error {
	for _, c := range codes {
		if err := d.ioctl(request, c); err != nil {
			return fmt.Errorf("set capability bit %d: %w", c, err)
		}
	}
	return nil
}

// writeEvent injects one input event. Delivery failures are logged, not
// propagated: the driver core treats the sink as fire-and-forget, the
// same way the kernel input API does.
func (d *device) writeEvent(typ, code uint16, value int32) {
	ev := inputEvent{
		Time:  unix.Timeval{},
		Type:  typ,
		Code:  code,
		Value: value,
	}
	if err := binary.Write(d.file, binary.LittleEndian, &ev); err != nil {
		d.log.Warn("event write failed", "device", d.name, "type", typ, "code", code, "error", err)
	}
}

// Close destroys the virtual device and releases the fd.
func (d *device) Close() error {
	if d.file == nil {
		return nil
	}
	if err := d.ioctl(devDestroy, 0); err != nil && err != syscall.EINVAL {
		d.log.Warn("device destroy failed", "device", d.name, "error", err)
	}
	err := d.file.Close()
	d.file = nil
	return err
}
