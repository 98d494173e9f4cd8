package charlcd

import (
	"context"
	"errors"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

var (
	ErrStartNotDetected      = errors.New("start condition not detected on the bus")
	ErrStopNotDetected       = errors.New("stop condition not detected on the bus")
	ErrBusStalled            = errors.New("bus stalled")
	ErrNack                  = errors.New("byte not acknowledged")
	ErrNoTransaction         = errors.New("no transaction in progress")
	ErrTransactionInProgress = errors.New("transaction already in progress")
)

// Acknowledge is the acknowledgment bit returned by the addressed peer after each byte.
type Acknowledge uint8

const (
	Ack Acknowledge = iota
	Nack
)

func (a Acknowledge) String() string {
	if a == Ack {
		return "ACK"
	}
	return "NACK"
}

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// Transmitter is a master-transmit I2C transaction interface.
//
// A transaction is Begin, any number of Transmit calls and End. Only one
// transaction may be in flight at a time.
type Transmitter interface {
	// Ready waits for the bus to become idle, recovering from collisions.
	Ready(ctx context.Context) error
	// Begin asserts a start condition and sends the 7-bit address in write mode.
	Begin(ctx context.Context, address byte) (Acknowledge, error)
	// Transmit sends one data byte and reports the peer acknowledgment.
	Transmit(ctx context.Context, value byte) (Acknowledge, error)
	// End asserts a stop condition and closes the transaction.
	End(ctx context.Context) error
}
