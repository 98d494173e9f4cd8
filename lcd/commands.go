package lcd

// HD44780 instruction set subset used by the display.
const (
	CmdClearDisplay   byte = 0x01
	CmdReturnHome     byte = 0x02
	CmdEntryModeSet   byte = 0x04
	CmdDisplayControl byte = 0x08
	CmdFunctionSet    byte = 0x20
	CmdSetDDRAMAddr   byte = 0x80

	EntryIncrement byte = 0x02

	DisplayOn byte = 0x04
	CursorOn  byte = 0x02
	BlinkOn   byte = 0x01

	FunctionTwoLines byte = 0x08
	Function5x10Dots byte = 0x04

	row0Base byte = 0x00
	row1Base byte = 0x40
)

// CmdFunctionSet4Bit is sent while the controller is still in 8 bit mode.
// Its low nibble arrives as function set with DL=0 and switches the interface
// to 4 bit mode.
const CmdFunctionSet4Bit byte = 0x02

// InitSequence is the power up sequence. The first command is received while
// the controller is still in 8 bit mode and switches it to 4 bit mode; the
// order must not change.
var InitSequence = []byte{
	CmdFunctionSet4Bit,
	CmdFunctionSet | FunctionTwoLines,
	CmdClearDisplay,
	CmdDisplayControl | DisplayOn | CursorOn,
	CmdEntryModeSet | EntryIncrement,
}
