// Package ssp implements a polled I2C master on top of a synchronous serial
// port peripheral register file (MSSP style: SEN/PEN condition bits, SSPBUF
// shift register, SSPIF transfer flag, ACKSTAT acknowledgment bit).
package ssp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mklimuk/charlcd"
)

var _ charlcd.Transmitter = &Engine{}

var ErrNotInitialized = errors.New("ssp engine not initialized")

const (
	DefaultOscillator = 4_000_000
	DefaultClock      = 100_000
	DefaultPollLimit  = 100_000
)

// State is the transaction state of the engine.
type State int

const (
	Idle State = iota
	StartPending
	Started
	StopPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case StartPending:
		return "start pending"
	case Started:
		return "started"
	case StopPending:
		return "stop pending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Opts struct {
	// Oscillator is the peripheral clock source frequency in Hz.
	Oscillator uint32
	// Clock is the requested SCL frequency in Hz.
	Clock uint32
	// PollLimit bounds every busy wait on a status bit.
	PollLimit int
	Signal    *charlcd.ErrorSignal
}

type Opt func(*Opts)

func WithOscillator(hz uint32) Opt {
	return func(o *Opts) {
		o.Oscillator = hz
	}
}

func WithClock(hz uint32) Opt {
	return func(o *Opts) {
		o.Clock = hz
	}
}

func WithPollLimit(limit int) Opt {
	return func(o *Opts) {
		o.PollLimit = limit
	}
}

func WithErrorSignal(signal *charlcd.ErrorSignal) Opt {
	return func(o *Opts) {
		o.Signal = signal
	}
}

// Engine is the handle of the I2C peripheral. It owns the register file; no
// other code should touch the registers once the engine is created.
//
// Engine is not safe for concurrent use.
type Engine struct {
	regs   RegisterFile
	config Opts
	state  State
	armed  bool
}

func New(regs RegisterFile, opts ...Opt) *Engine {
	config := Opts{
		Oscillator: DefaultOscillator,
		Clock:      DefaultClock,
		PollLimit:  DefaultPollLimit,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Signal == nil {
		config.Signal = charlcd.NewErrorSignal(nil)
	}
	if config.PollLimit <= 0 {
		config.PollLimit = DefaultPollLimit
	}
	return &Engine{regs: regs, config: config}
}

// Init configures the peripheral for standard speed master mode. It must be
// called once before the first transaction.
func (e *Engine) Init() error {
	div, err := BaudDivisor(e.config.Oscillator, e.config.Clock)
	if err != nil {
		return fmt.Errorf("could not configure bus clock: %w", err)
	}
	e.setBits(SSPSTAT, StatSMP)
	e.clearBits(SSPSTAT, StatCKE)
	e.regs.Store(SSPCON1, Con1SSPEN|Con1MasterMode)
	e.regs.Store(SSPCON2, 0x00)
	e.regs.Store(SSPADD, div)
	e.clearBits(PIR1, PIR1SSPIF)
	e.state = Idle
	e.armed = true
	slog.Debug("i2c master initialized", "oscillator", e.config.Oscillator, "scl", e.config.Clock, "divisor", div)
	return nil
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Signal() *charlcd.ErrorSignal {
	return e.config.Signal
}

// Ready recovers from bus and write collisions and waits until no byte is
// being shifted out.
func (e *Engine) Ready(ctx context.Context) error {
	if !e.armed {
		return ErrNotInitialized
	}
	if e.testBits(PIR2, PIR2BCLIF) || e.testBits(SSPCON1, Con1WCOL) {
		slog.Debug("clearing bus collision flags")
		e.clearBits(PIR2, PIR2BCLIF)
		e.clearBits(SSPCON1, Con1WCOL)
	}
	err := e.poll(ctx, "transmit idle", func() bool {
		return !e.testBits(SSPSTAT, StatBF|StatRW)
	})
	if err != nil {
		return err
	}
	e.clearBits(PIR1, PIR1SSPIF)
	return nil
}

// Begin asserts a start condition and sends the address in write mode. The
// returned acknowledgment is the one of the address byte. If the address
// cannot be sent the transaction is closed before Begin returns.
func (e *Engine) Begin(ctx context.Context, address byte) (charlcd.Acknowledge, error) {
	if e.state != Idle {
		return charlcd.Nack, fmt.Errorf("could not begin transaction with %#x: %w", address, charlcd.ErrTransactionInProgress)
	}
	if err := e.Ready(ctx); err != nil {
		return charlcd.Nack, fmt.Errorf("could not begin transaction with %#x: %w", address, err)
	}
	e.state = StartPending
	e.setBits(SSPCON2, Con2SEN)
	err := e.poll(ctx, "start condition", func() bool {
		return !e.testBits(SSPCON2, Con2SEN)
	})
	if err != nil {
		e.state = Idle
		e.raise()
		return charlcd.Nack, fmt.Errorf("could not begin transaction with %#x: %w", address, err)
	}
	if !e.testBits(SSPSTAT, StatS) {
		e.state = Idle
		e.raise()
		slog.Warn("start condition not detected", "address", address)
		return charlcd.Nack, fmt.Errorf("could not begin transaction with %#x: %w", address, charlcd.ErrStartNotDetected)
	}
	e.state = Started
	ack, err := e.transmit(ctx, address<<1)
	if err != nil {
		if stopErr := e.End(context.WithoutCancel(ctx)); stopErr != nil {
			slog.Debug("could not close transaction after address failure", "error", stopErr)
		}
		return ack, fmt.Errorf("could not send address %#x: %w", address, err)
	}
	e.lower()
	return ack, nil
}

// Transmit shifts one byte out and returns the acknowledgment of the peer.
func (e *Engine) Transmit(ctx context.Context, value byte) (charlcd.Acknowledge, error) {
	if e.state != Started {
		return charlcd.Nack, charlcd.ErrNoTransaction
	}
	return e.transmit(ctx, value)
}

func (e *Engine) transmit(ctx context.Context, value byte) (charlcd.Acknowledge, error) {
	if err := e.Ready(ctx); err != nil {
		return charlcd.Nack, err
	}
	e.regs.Store(SSPBUF, value)
	err := e.poll(ctx, "transfer complete", func() bool {
		return e.testBits(PIR1, PIR1SSPIF)
	})
	if err != nil {
		return charlcd.Nack, err
	}
	e.clearBits(PIR1, PIR1SSPIF)
	if e.testBits(SSPCON2, Con2ACKSTAT) {
		return charlcd.Nack, nil
	}
	return charlcd.Ack, nil
}

// End asserts a stop condition. The transaction is closed even if the stop
// condition could not be confirmed.
func (e *Engine) End(ctx context.Context) error {
	if e.state != Started {
		return charlcd.ErrNoTransaction
	}
	if err := e.Ready(ctx); err != nil {
		e.state = Idle
		e.raise()
		return fmt.Errorf("could not end transaction: %w", err)
	}
	e.state = StopPending
	e.setBits(SSPCON2, Con2PEN)
	err := e.poll(ctx, "stop condition", func() bool {
		return !e.testBits(SSPCON2, Con2PEN)
	})
	e.state = Idle
	if err != nil {
		e.raise()
		return fmt.Errorf("could not end transaction: %w", err)
	}
	if !e.testBits(SSPSTAT, StatP) {
		e.raise()
		slog.Warn("stop condition not detected")
		return fmt.Errorf("could not end transaction: %w", charlcd.ErrStopNotDetected)
	}
	e.lower()
	return nil
}

func (e *Engine) poll(ctx context.Context, condition string, done func() bool) error {
	for i := 0; i < e.config.PollLimit; i++ {
		if done() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wait for %s interrupted: %w", condition, err)
		}
	}
	return fmt.Errorf("%w: %s not reached after %d polls", charlcd.ErrBusStalled, condition, e.config.PollLimit)
}

func (e *Engine) raise() {
	if err := e.config.Signal.Raise(); err != nil {
		slog.Warn("could not raise error signal", "error", err)
	}
}

func (e *Engine) lower() {
	if err := e.config.Signal.Clear(); err != nil {
		slog.Warn("could not clear error signal", "error", err)
	}
}

func (e *Engine) testBits(reg Register, mask byte) bool {
	return e.regs.Load(reg)&mask != 0
}

func (e *Engine) setBits(reg Register, mask byte) {
	e.regs.Store(reg, e.regs.Load(reg)|mask)
}

func (e *Engine) clearBits(reg Register, mask byte) {
	e.regs.Store(reg, e.regs.Load(reg)&^mask)
}
