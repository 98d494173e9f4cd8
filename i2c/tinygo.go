package i2c

import (
	"context"
	"fmt"

	"github.com/mklimuk/charlcd"
	"tinygo.org/x/drivers"
)

var _ charlcd.I2CBus = &TinyGoBus{}

// TinyGoBus exposes a TinyGo I2C peripheral (machine.I2C0 and friends).
type TinyGoBus struct {
	bus drivers.I2C
}

func NewTinyGoBus(bus drivers.I2C) *TinyGoBus {
	return &TinyGoBus{bus: bus}
}

func (b *TinyGoBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := b.bus.Tx(uint16(address), buffer, nil); err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *TinyGoBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := b.bus.Tx(uint16(address), nil, buffer); err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *TinyGoBus) Release(ctx context.Context) error {
	return nil
}
