package sim

// Board is a simulated peripheral with an LCD backpack attached.
type Board struct {
	MSSP     *MSSP
	Expander *PCF8574
	LCD      *HD44780
}

// NewBoard wires an HD44780 behind a PCF8574 answering at the 7-bit address.
func NewBoard(address byte) *Board {
	lcd := NewHD44780()
	exp := NewPCF8574(lcd)
	mssp := NewMSSP()
	mssp.Attach(address, exp)
	return &Board{MSSP: mssp, Expander: exp, LCD: lcd}
}
