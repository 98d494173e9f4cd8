package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/mklimuk/charlcd"
)

// MockI2CBus is a mock implementation of charlcd.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestTransmitter_OneWritePerByte(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: 0x20, W: []byte{0x2C}},
		{Addr: 0x20, W: []byte{0x28}},
		{Addr: 0x20, W: []byte{0x8C}},
		{Addr: 0x20, W: []byte{0x88}},
	}}
	bus := WrapBus(pb)
	tx := NewTransmitter(bus)
	ctx := context.Background()

	require.NoError(t, tx.Ready(ctx))
	ack, err := tx.Begin(ctx, 0x20)
	require.NoError(t, err)
	assert.Equal(t, charlcd.Ack, ack)
	for _, b := range []byte{0x2C, 0x28, 0x8C, 0x88} {
		ack, err = tx.Transmit(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, charlcd.Ack, ack)
	}
	require.NoError(t, tx.End(ctx))
	assert.NoError(t, bus.Close())
}

func TestTransmitter_WriteErrorRaisesSignal(t *testing.T) {
	led := &gpiotest.Pin{N: "LED", L: gpio.Low}
	bus := new(MockI2CBus)
	tx := NewTransmitter(bus, WithErrorSignal(charlcd.NewErrorSignal(led)))
	ctx := context.Background()
	failure := errors.New("remote I/O error")
	bus.On("WriteToAddr", mock.Anything, byte(0x20), []byte{0x01}).Return(failure).Once()
	bus.On("WriteToAddr", mock.Anything, byte(0x20), []byte{0x02}).Return(nil).Once()

	_, err := tx.Begin(ctx, 0x20)
	require.NoError(t, err)
	ack, err := tx.Transmit(ctx, 0x01)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, charlcd.Nack, ack)
	assert.Equal(t, gpio.High, led.Read())

	ack, err = tx.Transmit(ctx, 0x02)
	require.NoError(t, err)
	assert.Equal(t, charlcd.Ack, ack)
	assert.Equal(t, gpio.Low, led.Read())
	require.NoError(t, tx.End(ctx))
	bus.AssertExpectations(t)
}

func TestTransmitter_BusyRetry(t *testing.T) {
	bus := new(MockI2CBus)
	tx := NewTransmitter(bus, WithRetryLimit(2))
	ctx := context.Background()
	bus.On("WriteToAddr", mock.Anything, byte(0x20), []byte{0x0C}).Return(charlcd.ErrBusBusy).Once()
	bus.On("Release", mock.Anything).Return(nil).Once()
	bus.On("WriteToAddr", mock.Anything, byte(0x20), []byte{0x0C}).Return(nil).Once()

	_, err := tx.Begin(ctx, 0x20)
	require.NoError(t, err)
	ack, err := tx.Transmit(ctx, 0x0C)
	require.NoError(t, err)
	assert.Equal(t, charlcd.Ack, ack)
	require.NoError(t, tx.End(ctx))
	bus.AssertExpectations(t)
}

func TestTransmitter_BusyRetryLimit(t *testing.T) {
	bus := new(MockI2CBus)
	tx := NewTransmitter(bus, WithRetryLimit(2))
	ctx := context.Background()
	bus.On("WriteToAddr", mock.Anything, byte(0x20), mock.Anything).Return(charlcd.ErrBusBusy).Twice()
	bus.On("Release", mock.Anything).Return(nil).Times(3)

	_, err := tx.Begin(ctx, 0x20)
	require.NoError(t, err)
	_, err = tx.Transmit(ctx, 0x0C)
	assert.ErrorIs(t, err, charlcd.ErrBusBusy)
	assert.True(t, tx.Signal().Raised())
	require.NoError(t, tx.End(ctx))

	// the next readiness check releases the bus
	require.NoError(t, tx.Ready(ctx))
	bus.AssertExpectations(t)
}

func TestTransmitter_Ordering(t *testing.T) {
	tx := NewTransmitter(new(MockI2CBus))
	ctx := context.Background()

	_, err := tx.Transmit(ctx, 0x00)
	assert.ErrorIs(t, err, charlcd.ErrNoTransaction)
	assert.ErrorIs(t, tx.End(ctx), charlcd.ErrNoTransaction)
	_, err = tx.Begin(ctx, 0x20)
	require.NoError(t, err)
	_, err = tx.Begin(ctx, 0x20)
	assert.ErrorIs(t, err, charlcd.ErrTransactionInProgress)
}
