package ssp

import "fmt"

// Register identifies one register of the synchronous serial port peripheral.
type Register int

const (
	SSPSTAT Register = iota
	SSPCON1
	SSPCON2
	SSPADD
	SSPBUF
	PIR1
	PIR2
)

func (r Register) String() string {
	switch r {
	case SSPSTAT:
		return "SSPSTAT"
	case SSPCON1:
		return "SSPCON1"
	case SSPCON2:
		return "SSPCON2"
	case SSPADD:
		return "SSPADD"
	case SSPBUF:
		return "SSPBUF"
	case PIR1:
		return "PIR1"
	case PIR2:
		return "PIR2"
	default:
		return fmt.Sprintf("Register(%d)", int(r))
	}
}

// SSPSTAT bits
const (
	StatBF  byte = 1 << 0 // buffer full, transmit in progress
	StatRW  byte = 1 << 2 // master transmit in progress
	StatS   byte = 1 << 3 // start detected
	StatP   byte = 1 << 4 // stop detected
	StatCKE byte = 1 << 6
	StatSMP byte = 1 << 7 // slew rate control disabled (standard speed)
)

// SSPCON1 bits
const (
	Con1MasterMode byte = 0b1000 // SSPM3:0, clock = Fosc/(4*(SSPADD+1))
	Con1SSPEN      byte = 1 << 5
	Con1WCOL       byte = 1 << 7
)

// SSPCON2 bits
const (
	Con2SEN     byte = 1 << 0
	Con2PEN     byte = 1 << 2
	Con2ACKSTAT byte = 1 << 6
)

// PIR1/PIR2 bits
const (
	PIR1SSPIF byte = 1 << 3
	PIR2BCLIF byte = 1 << 3
)

// RegisterFile gives access to the peripheral registers. Implementations may be
// memory mapped hardware or a simulation.
type RegisterFile interface {
	Load(reg Register) byte
	Store(reg Register, value byte)
}

// BaudDivisor computes the SSPADD value producing the scl clock from the fosc
// oscillator frequency in master mode.
func BaudDivisor(fosc, scl uint32) (byte, error) {
	if scl == 0 || fosc == 0 {
		return 0, fmt.Errorf("invalid clock configuration fosc=%d scl=%d", fosc, scl)
	}
	div := fosc / (4 * scl)
	if div < 1 || div > 256 {
		return 0, fmt.Errorf("scl %d Hz not reachable from fosc %d Hz (divisor %d)", scl, fosc, div)
	}
	return byte(div - 1), nil
}
