package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// strobe feeds one value the way the backpack wiring does: high nibble then
// low nibble, each with an enable pulse.
func strobe(d *HD44780, v byte, rs bool) {
	ctl := byte(pinBacklight)
	if rs {
		ctl |= pinRS
	}
	for _, nibble := range []byte{v & 0xF0, v << 4} {
		d.SetPins(nibble | ctl | pinEnable)
		d.SetPins(nibble | ctl)
	}
}

func powerUp(d *HD44780) {
	for _, cmd := range []byte{0x02, 0x28, 0x01, 0x0E, 0x06} {
		strobe(d, cmd, false)
	}
}

func TestHD44780_PowerUpSequence(t *testing.T) {
	d := NewHD44780()
	assert.False(t, d.FourBit())

	powerUp(d)

	assert.True(t, d.FourBit())
	assert.True(t, d.TwoLine())
	assert.True(t, d.DisplayOn())
	assert.True(t, d.CursorOn())
	assert.True(t, d.Increment())
	assert.True(t, d.Backlight())
	// 0x02 is seen as two 8 bit instructions before the switch to 4 bit mode
	assert.Equal(t, []byte{0x00, 0x20, 0x28, 0x01, 0x0E, 0x06}, d.Instructions())
}

func TestHD44780_WriteAndAddress(t *testing.T) {
	d := NewHD44780()
	powerUp(d)

	for _, c := range []byte("Hello") {
		strobe(d, c, true)
	}
	strobe(d, 0xC7, false)
	for _, c := range []byte("PCF") {
		strobe(d, c, true)
	}

	assert.Equal(t, "Hello           ", d.Line(0, 16))
	assert.Equal(t, "       PCF      ", d.Line(1, 16))
	assert.Equal(t, "Hello\n       PCF", d.Screen(16))
	row, col := d.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 10, col)
}

func TestHD44780_LineWrap(t *testing.T) {
	d := NewHD44780()
	powerUp(d)
	strobe(d, 0x80|0x27, false)
	strobe(d, 'x', true)
	row, col := d.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

func TestHD44780_Clear(t *testing.T) {
	d := NewHD44780()
	powerUp(d)
	for _, c := range []byte("abc") {
		strobe(d, c, true)
	}
	strobe(d, 0x01, false)
	assert.Equal(t, "\n", d.Screen(16))
	row, col := d.Cursor()
	assert.Zero(t, row)
	assert.Zero(t, col)
}

func TestHD44780_IgnoresWithoutFallingEdge(t *testing.T) {
	d := NewHD44780()
	d.SetPins(0x20 | pinBacklight)
	d.SetPins(0x30 | pinBacklight)
	assert.Empty(t, d.Instructions())
}
