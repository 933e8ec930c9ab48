//go:build !linux

package register

import "errors"

// I2CPort is only available on Linux, which provides the i2c-dev
// character device interface.
type I2CPort struct{}

// OpenI2C reports that hardware access is unsupported on this platform.
func OpenI2C(path string, addr uint16) (*I2CPort, error) {
	return nil, errors.New("i2c-dev is only available on linux")
}

func (p *I2CPort) ReadRegister(reg uint8) (byte, error) {
	return 0, errors.New("i2c-dev is only available on linux")
}

func (p *I2CPort) Close() error { return nil }
