package i2c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/charlcd"
)

var _ charlcd.Transmitter = &Transmitter{}

type TransmitterOpts struct {
	RetryLimit int
	Signal     *charlcd.ErrorSignal
}

type TransmitterOpt func(*TransmitterOpts)

func WithRetryLimit(limit int) TransmitterOpt {
	return func(o *TransmitterOpts) {
		o.RetryLimit = limit
	}
}

func WithErrorSignal(signal *charlcd.ErrorSignal) TransmitterOpt {
	return func(o *TransmitterOpts) {
		o.Signal = signal
	}
}

// Transmitter runs transactions on a bus that only offers addressed writes
// (host adapters). Begin and End only track the transaction; every
// transmitted byte is a separate bus write, so delays between bytes reach
// the expander as they do with a register level master. A failed write
// raises the error signal, a successful one clears it.
type Transmitter struct {
	mx      sync.Mutex
	bus     charlcd.AddressableWriter
	config  TransmitterOpts
	address byte
	open    bool
	release bool
}

func NewTransmitter(bus charlcd.AddressableWriter, opts ...TransmitterOpt) *Transmitter {
	config := TransmitterOpts{RetryLimit: 2}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Signal == nil {
		config.Signal = charlcd.NewErrorSignal(nil)
	}
	if config.RetryLimit < 1 {
		config.RetryLimit = 1
	}
	return &Transmitter{bus: bus, config: config}
}

func (t *Transmitter) Signal() *charlcd.ErrorSignal {
	return t.config.Signal
}

// Ready releases the bus if the adapter reported it busy on the last write.
func (t *Transmitter) Ready(ctx context.Context) error {
	t.mx.Lock()
	defer t.mx.Unlock()
	if !t.release {
		return nil
	}
	if err := t.bus.Release(ctx); err != nil {
		return fmt.Errorf("could not release bus: %w", err)
	}
	t.release = false
	return nil
}

func (t *Transmitter) Begin(ctx context.Context, address byte) (charlcd.Acknowledge, error) {
	t.mx.Lock()
	defer t.mx.Unlock()
	if t.open {
		return charlcd.Nack, fmt.Errorf("could not begin transaction with %#x: %w", address, charlcd.ErrTransactionInProgress)
	}
	t.open = true
	t.address = address
	return charlcd.Ack, nil
}

func (t *Transmitter) Transmit(ctx context.Context, value byte) (charlcd.Acknowledge, error) {
	t.mx.Lock()
	defer t.mx.Unlock()
	if !t.open {
		return charlcd.Nack, charlcd.ErrNoTransaction
	}
	var err error
	for i := t.config.RetryLimit; i > 0; i-- {
		err = t.bus.WriteToAddr(ctx, t.address, []byte{value})
		if err == nil {
			t.signal(false)
			return charlcd.Ack, nil
		}
		if !errors.Is(err, charlcd.ErrBusBusy) {
			t.signal(true)
			return charlcd.Nack, fmt.Errorf("could not write to %#x: %w", t.address, err)
		}
		// try to release the bus
		_ = t.bus.Release(ctx)
	}
	t.release = true
	t.signal(true)
	return charlcd.Nack, fmt.Errorf("could not write to %#x (retry limit reached): %w", t.address, err)
}

func (t *Transmitter) End(ctx context.Context) error {
	t.mx.Lock()
	defer t.mx.Unlock()
	if !t.open {
		return charlcd.ErrNoTransaction
	}
	t.open = false
	return nil
}

func (t *Transmitter) signal(raised bool) {
	var err error
	if raised {
		err = t.config.Signal.Raise()
	} else {
		err = t.config.Signal.Clear()
	}
	if err != nil {
		slog.Warn("could not update error signal", "error", err)
	}
}
