package lcd

// RegisterSelect chooses the controller register a frame is written to.
type RegisterSelect byte

const (
	CommandRegister RegisterSelect = 0
	DataRegister    RegisterSelect = 1
)

// Expander port pins as wired on the backpack.
const (
	PinRegisterSelect byte = 1 << 0
	PinReadWrite      byte = 1 << 1 // always low, the driver never reads
	PinEnable         byte = 1 << 2
	PinBacklight      byte = 1 << 3
	dataMask          byte = 0xF0
)

// Frame is the sequence of expander port values transferring one byte to the
// controller: high nibble with enable set and cleared, then low nibble with
// enable set and cleared. The controller latches on each falling edge.
type Frame [4]byte

// Encode builds the frame transferring v to the rs register with the
// backlight on.
func Encode(v byte, rs RegisterSelect) Frame {
	ctl := control(rs)
	high := v & dataMask
	low := v << 4
	return Frame{
		high | ctl | PinEnable,
		high | ctl,
		low | ctl | PinEnable,
		low | ctl,
	}
}

// Value reassembles the byte carried by the frame.
func (f Frame) Value() byte {
	return f[0]&dataMask | f[2]>>4
}

func (f Frame) RegisterSelect() RegisterSelect {
	return RegisterSelect(f[0] & PinRegisterSelect)
}

func control(rs RegisterSelect) byte {
	ctl := PinBacklight
	if rs == DataRegister {
		ctl |= PinRegisterSelect
	}
	return ctl
}
