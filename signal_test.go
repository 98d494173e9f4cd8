package charlcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestErrorSignal_DrivesPin(t *testing.T) {
	pin := &gpiotest.Pin{N: "LED", L: gpio.Low}
	s := NewErrorSignal(pin)

	require.NoError(t, s.Raise())
	assert.True(t, s.Raised())
	assert.Equal(t, gpio.High, pin.Read())

	require.NoError(t, s.Clear())
	assert.False(t, s.Raised())
	assert.Equal(t, gpio.Low, pin.Read())
}

func TestErrorSignal_WithoutPin(t *testing.T) {
	var s ErrorSignal
	assert.NoError(t, s.Raise())
	assert.True(t, s.Raised())
	assert.NoError(t, s.Clear())
	assert.False(t, s.Raised())
}

func TestAcknowledge_String(t *testing.T) {
	assert.Equal(t, "ACK", Ack.String())
	assert.Equal(t, "NACK", Nack.String())
}
