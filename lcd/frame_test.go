package lcd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_Layout(t *testing.T) {
	for _, rs := range []RegisterSelect{CommandRegister, DataRegister} {
		for i := 0; i < 256; i++ {
			v := byte(i)
			f := Encode(v, rs)
			assert.Equal(t, v&0xF0, f[0]&0xF0, "high nibble of %#x", v)
			assert.Equal(t, v&0xF0, f[1]&0xF0, "high nibble of %#x", v)
			assert.Equal(t, (v<<4)&0xF0, f[2]&0xF0, "low nibble of %#x", v)
			assert.Equal(t, (v<<4)&0xF0, f[3]&0xF0, "low nibble of %#x", v)
			for j, b := range f {
				assert.Equal(t, byte(rs), b&PinRegisterSelect, "rs of byte %d", j)
				assert.Zero(t, b&PinReadWrite, "rw of byte %d", j)
				assert.Equal(t, PinBacklight, b&PinBacklight, "backlight of byte %d", j)
				enable := PinEnable
				if j%2 == 1 {
					enable = 0
				}
				assert.Equal(t, enable, b&PinEnable, "enable of byte %d", j)
			}
			assert.Equal(t, v, f.Value())
			assert.Equal(t, rs, f.RegisterSelect())
		}
	}
}

func TestEncode_KnownFrames(t *testing.T) {
	tests := []struct {
		value    byte
		rs       RegisterSelect
		expected Frame
	}{
		{0x28, CommandRegister, Frame{0x2C, 0x28, 0x8C, 0x88}},
		{0x01, CommandRegister, Frame{0x0C, 0x08, 0x1C, 0x18}},
		{'A', DataRegister, Frame{0x4D, 0x49, 0x1D, 0x19}},
		{'7', DataRegister, Frame{0x3D, 0x39, 0x7D, 0x79}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#x/%d", tt.value, tt.rs), func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.value, tt.rs))
		})
	}
}

func TestTiming_Validate(t *testing.T) {
	assert.NoError(t, DefaultTiming().Validate())
	assert.ErrorIs(t, Timing{Strobe: MinStrobeDelay / 2, Clear: MinClearDelay}.Validate(), ErrTiming)
	assert.ErrorIs(t, Timing{Strobe: MinStrobeDelay, Clear: MinClearDelay / 2}.Validate(), ErrTiming)
}
