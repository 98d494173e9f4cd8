// Package lcd drives an HD44780 character display through a PCF8574 backpack.
//
// Every byte is transferred as a Frame of four expander writes in a single
// I2C transaction, with the strobe delay after each write.
package lcd

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/charlcd"
)

// DefaultAddress is the 7-bit expander address with A0..A2 tied low.
const DefaultAddress = 0x20

var (
	ErrTiming     = errors.New("timing below controller minimum")
	ErrInvalidRow = errors.New("invalid row")
)

type Opts struct {
	Address byte
	Timing  Timing
	// IgnoreNack keeps writing frames when the expander does not acknowledge.
	IgnoreNack bool
}

type Opt func(*Opts)

func WithAddress(address byte) Opt {
	return func(o *Opts) {
		o.Address = address
	}
}

func WithTiming(timing Timing) Opt {
	return func(o *Opts) {
		o.Timing = timing
	}
}

func WithStrobeDelay(delay time.Duration) Opt {
	return func(o *Opts) {
		o.Timing.Strobe = delay
	}
}

func WithClearDelay(delay time.Duration) Opt {
	return func(o *Opts) {
		o.Timing.Clear = delay
	}
}

func WithIgnoreNack() Opt {
	return func(o *Opts) {
		o.IgnoreNack = true
	}
}

// Display is a two line character LCD behind an I2C expander. It is safe for
// concurrent use; frames are never interleaved.
type Display struct {
	mx     sync.Mutex
	tx     charlcd.Transmitter
	config Opts
}

func New(tx charlcd.Transmitter, opts ...Opt) (*Display, error) {
	config := Opts{
		Address: DefaultAddress,
		Timing:  DefaultTiming(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if err := config.Timing.Validate(); err != nil {
		return nil, err
	}
	return &Display{tx: tx, config: config}, nil
}

// SendFrame transfers one frame in its own transaction. All four bytes are
// sent and the transaction closed even if the expander does not acknowledge
// one of them; the missing acknowledgment is then reported as charlcd.ErrNack.
func (d *Display) SendFrame(ctx context.Context, f Frame) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if err := d.tx.Ready(ctx); err != nil {
		return fmt.Errorf("bus not ready: %w", err)
	}
	ack, err := d.tx.Begin(ctx, d.config.Address)
	if errors.Is(err, charlcd.ErrTransactionInProgress) {
		// left open by an earlier failure
		d.abort(ctx)
	}
	if err != nil {
		return fmt.Errorf("could not open transaction: %w", err)
	}
	var nackErr error
	if ack == charlcd.Nack {
		nackErr = fmt.Errorf("expander %#x: %w", d.config.Address, charlcd.ErrNack)
	}
	for i, b := range f {
		ack, err = d.tx.Transmit(ctx, b)
		if err != nil {
			d.abort(ctx)
			return fmt.Errorf("could not send frame byte %d: %w", i, err)
		}
		if ack == charlcd.Nack && nackErr == nil {
			nackErr = fmt.Errorf("frame byte %d (%#x): %w", i, b, charlcd.ErrNack)
		}
		if err = sleep(ctx, d.config.Timing.Strobe); err != nil {
			d.abort(ctx)
			return fmt.Errorf("strobe delay interrupted: %w", err)
		}
	}
	if err = d.tx.End(ctx); err != nil {
		return fmt.Errorf("could not close transaction: %w", err)
	}
	if nackErr != nil {
		if d.config.IgnoreNack {
			slog.Debug("ignoring missing acknowledgment", "error", nackErr)
			return nil
		}
		return nackErr
	}
	return nil
}

func (d *Display) abort(ctx context.Context) {
	if err := d.tx.End(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("could not close aborted transaction", "error", err)
	}
}

func (d *Display) SendCommand(ctx context.Context, cmd byte) error {
	slog.Debug("lcd command", "cmd", fmt.Sprintf("%#04x", cmd))
	err := d.SendFrame(ctx, Encode(cmd, CommandRegister))
	if err != nil {
		return fmt.Errorf("could not send command %#x: %w", cmd, err)
	}
	return nil
}

func (d *Display) SendCharacter(ctx context.Context, ch byte) error {
	err := d.SendFrame(ctx, Encode(ch, DataRegister))
	if err != nil {
		return fmt.Errorf("could not send character %q: %w", ch, err)
	}
	return nil
}

// Init runs the controller power up sequence. It stops at the first failed
// command; calling it again restarts the sequence from the beginning.
func (d *Display) Init(ctx context.Context) error {
	for _, cmd := range InitSequence {
		if err := d.SendCommand(ctx, cmd); err != nil {
			return fmt.Errorf("could not initialize display: %w", err)
		}
	}
	return nil
}

// Clear blanks the display and returns the cursor to the origin.
func (d *Display) Clear(ctx context.Context) error {
	if err := d.SendCommand(ctx, CmdClearDisplay); err != nil {
		return err
	}
	return sleep(ctx, d.config.Timing.Clear)
}

// SetCursor moves the cursor to col of row 0 or 1. The column is not checked
// against the display width.
func (d *Display) SetCursor(ctx context.Context, row, col byte) error {
	var base byte
	switch row {
	case 0:
		base = row0Base
	case 1:
		base = row1Base
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return d.SendCommand(ctx, CmdSetDDRAMAddr|base|col)
}

// WriteString returns a sequence sending text one character at a time when
// iterated. It ends at the end of text or at the first NUL byte, and after the
// first error. Each iteration sends the text again.
func (d *Display) WriteString(ctx context.Context, text string) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := 0; i < len(text); i++ {
			if text[i] == 0 {
				return
			}
			if err := d.SendCharacter(ctx, text[i]); err != nil {
				yield(i, err)
				return
			}
			if !yield(i, nil) {
				return
			}
		}
	}
}

// Print writes text at the cursor position.
func (d *Display) Print(ctx context.Context, text string) error {
	for i, err := range d.WriteString(ctx, text) {
		if err != nil {
			return fmt.Errorf("could not print character %d of %q: %w", i, text, err)
		}
	}
	return nil
}
