//go:build linux

package register

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// I2C_SLAVE ioctl from linux/i2c-dev.h: bind the fd to one slave address.
const i2cSlave = 0x0703

// I2CPort is a register Port over a Linux i2c-dev character device.
// Reads are the usual register convention: write the register address,
// then read one byte back.
type I2CPort struct {
	mu   sync.Mutex
	file *os.File
	addr uint16
}

// OpenI2C opens an i2c-dev device (e.g. /dev/i2c-3) and binds it to the
// peripheral's slave address.
func OpenI2C(path string, addr uint16) (*I2CPort, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c device: %w", err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, int(addr)); err != nil {
		f.Close()
		return nil, fmt.Errorf("bind slave address 0x%02x: %w", addr, err)
	}

	return &I2CPort{file: f, addr: addr}, nil
}

// ReadRegister reads one byte from the given register.
func (p *I2CPort) ReadRegister(reg uint8) (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.file.Write([]byte{reg}); err != nil {
		return 0, fmt.Errorf("select reg 0x%02x: %w", reg, err)
	}

	var buf [1]byte
	if _, err := p.file.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read reg 0x%02x: %w", reg, err)
	}

	return buf[0], nil
}

// Close releases the device file.
func (p *I2CPort) Close() error {
	return p.file.Close()
}
