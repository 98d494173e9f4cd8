package sim

import (
	"strings"
	"sync"
)

var _ PinSink = &HD44780{}

// expander pin layout of the common PCF8574 LCD backpack
const (
	pinRS        = 1 << 0
	pinEnable    = 1 << 2
	pinBacklight = 1 << 3
)

const (
	ddramSize = 0x80
	line2Base = 0x40
	lineSpan  = 0x28
)

// HD44780 models the controller side of a character LCD driven through the
// expander port. Nibbles are latched on the enable falling edge. The
// controller powers up in 8 bit mode, so until a function set selects 4 bit
// mode every nibble is executed as an instruction with D3..D0 low.
type HD44780 struct {
	mx sync.Mutex

	pins      byte
	fourBit   bool
	half      bool
	high      byte
	twoLine   bool
	largeFont bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool
	increment bool
	shift     bool
	backlight bool

	addr         byte
	ddram        [ddramSize]byte
	instructions []byte
}

func NewHD44780() *HD44780 {
	d := &HD44780{increment: true}
	d.blank()
	return d
}

func (d *HD44780) SetPins(pins byte) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.backlight = pins&pinBacklight != 0
	if d.pins&pinEnable != 0 && pins&pinEnable == 0 {
		d.latch(d.pins)
	}
	d.pins = pins
}

func (d *HD44780) latch(pins byte) {
	rs := pins&pinRS != 0
	nibble := pins >> 4
	if !d.fourBit {
		d.execute(rs, nibble<<4)
		return
	}
	if !d.half {
		d.high = nibble
		d.half = true
		return
	}
	d.half = false
	d.execute(rs, d.high<<4|nibble)
}

func (d *HD44780) execute(rs bool, v byte) {
	if rs {
		d.ddram[d.addr] = v
		d.advance()
		return
	}
	d.instructions = append(d.instructions, v)
	switch {
	case v&0x80 != 0:
		d.addr = v & 0x7F
	case v&0x40 != 0:
		// CGRAM address, custom characters are not modelled
	case v&0x20 != 0:
		d.fourBit = v&0x10 == 0
		d.twoLine = v&0x08 != 0
		d.largeFont = v&0x04 != 0
		d.half = false
	case v&0x10 != 0:
		// display shift is not modelled, cursor moves are
		if v&0x08 == 0 {
			d.step(v&0x04 != 0)
		}
	case v&0x08 != 0:
		d.displayOn = v&0x04 != 0
		d.cursorOn = v&0x02 != 0
		d.blinkOn = v&0x01 != 0
	case v&0x04 != 0:
		d.increment = v&0x02 != 0
		d.shift = v&0x01 != 0
	case v&0x02 != 0:
		d.addr = 0
	case v&0x01 != 0:
		d.blank()
		d.addr = 0
		d.increment = true
	}
}

func (d *HD44780) advance() {
	d.step(d.increment)
}

func (d *HD44780) step(forward bool) {
	if !d.twoLine {
		if forward {
			d.addr = (d.addr + 1) % (2 * lineSpan)
		} else {
			d.addr = (d.addr + 2*lineSpan - 1) % (2 * lineSpan)
		}
		return
	}
	switch {
	case forward && d.addr == lineSpan-1:
		d.addr = line2Base
	case forward && d.addr == line2Base+lineSpan-1:
		d.addr = 0
	case forward:
		d.addr++
	case d.addr == 0:
		d.addr = line2Base + lineSpan - 1
	case d.addr == line2Base:
		d.addr = lineSpan - 1
	default:
		d.addr--
	}
}

func (d *HD44780) blank() {
	for i := range d.ddram {
		d.ddram[i] = ' '
	}
}

// Line returns the first cols characters of the given row.
func (d *HD44780) Line(row, cols int) string {
	d.mx.Lock()
	defer d.mx.Unlock()
	base := 0
	if row > 0 {
		base = line2Base
	}
	if cols > lineSpan {
		cols = lineSpan
	}
	return string(d.ddram[base : base+cols])
}

// Screen returns both rows, trailing blanks trimmed, joined with a new line.
func (d *HD44780) Screen(cols int) string {
	return strings.TrimRight(d.Line(0, cols), " ") + "\n" + strings.TrimRight(d.Line(1, cols), " ")
}

// Cursor returns the row and column of the address counter.
func (d *HD44780) Cursor() (int, int) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.addr >= line2Base {
		return 1, int(d.addr - line2Base)
	}
	return 0, int(d.addr)
}

func (d *HD44780) Instructions() []byte {
	d.mx.Lock()
	defer d.mx.Unlock()
	res := make([]byte, len(d.instructions))
	copy(res, d.instructions)
	return res
}

func (d *HD44780) ResetInstructions() {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.instructions = nil
}

func (d *HD44780) FourBit() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.fourBit
}

func (d *HD44780) TwoLine() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.twoLine
}

func (d *HD44780) DisplayOn() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.displayOn
}

func (d *HD44780) CursorOn() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.cursorOn
}

func (d *HD44780) Increment() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.increment
}

func (d *HD44780) Backlight() bool {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.backlight
}
