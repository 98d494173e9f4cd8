//go:build !tinygo

package i2c

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mklimuk/charlcd"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var _ charlcd.I2CBus = &GenericBus{}

// GenericBus exposes a periph I2C bus.
type GenericBus struct {
	bus i2c.Bus
}

// NewGenericBus initializes the host drivers and opens the named bus ("" for
// the first one available).
func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

// WrapBus exposes an already opened periph bus.
func WrapBus(bus i2c.Bus) *GenericBus {
	return &GenericBus{bus: bus}
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

// SetSpeed sets the bus clock in Hz.
func (b *GenericBus) SetSpeed(hz int64) error {
	err := b.bus.SetSpeed(physic.Frequency(hz) * physic.Hertz)
	if err != nil {
		return fmt.Errorf("could not set i2c bus speed to %d Hz: %w", hz, err)
	}
	return nil
}

func (b *GenericBus) String() string {
	return b.bus.String()
}

func (b *GenericBus) Close() error {
	if c, ok := b.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
