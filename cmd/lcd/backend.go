package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/charlcd"
	"github.com/mklimuk/charlcd/adapter"
	"github.com/mklimuk/charlcd/config"
	"github.com/mklimuk/charlcd/i2c"
	"github.com/mklimuk/charlcd/lcd"
	"github.com/mklimuk/charlcd/sim"
	"github.com/mklimuk/charlcd/ssp"
)

// stack is the display with everything it was built on.
type stack struct {
	display *lcd.Display
	signal  *charlcd.ErrorSignal
	board   *sim.Board
	engine  *ssp.Engine
	adapter *adapter.MCP2221
	closers []func() error
}

func (s *stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func openStack(ctx context.Context, cfg config.Config) (*stack, error) {
	s := &stack{}
	pin, err := errorPin(cfg.ErrorPin)
	if err != nil {
		return nil, err
	}
	s.signal = charlcd.NewErrorSignal(pin)
	var tx charlcd.Transmitter
	switch cfg.Backend {
	case config.BackendSim:
		s.board = sim.NewBoard(cfg.Address)
		s.engine = ssp.New(s.board.MSSP,
			ssp.WithOscillator(cfg.Engine.Oscillator),
			ssp.WithClock(cfg.Engine.Clock),
			ssp.WithPollLimit(cfg.Engine.PollLimit),
			ssp.WithErrorSignal(s.signal),
		)
		err = s.engine.Init()
		if err != nil {
			return nil, fmt.Errorf("could not initialize engine: %w", err)
		}
		tx = s.engine
	case config.BackendMCP2221:
		s.adapter = adapter.NewMCP2221()
		err = s.adapter.Init(ctx, cfg.Engine.Clock)
		if err != nil {
			return nil, fmt.Errorf("could not initialize adapter: %w", err)
		}
		tx = i2c.NewTransmitter(s.adapter, i2c.WithErrorSignal(s.signal))
	case config.BackendPeriph:
		bus, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, bus.Close)
		err = bus.SetSpeed(int64(cfg.Engine.Clock))
		if err != nil {
			slog.Warn("bus speed not changed", "bus", bus, "error", err)
		}
		tx = i2c.NewTransmitter(bus, i2c.WithErrorSignal(s.signal))
	case config.BackendGobot:
		npi := nanopi.NewNeoAdaptor()
		err = npi.Connect()
		if err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		s.closers = append(s.closers, npi.Finalize)
		bus := i2c.NewGobotBus(npi, cfg.GobotBus)
		s.closers = append(s.closers, bus.Close)
		tx = i2c.NewTransmitter(bus, i2c.WithErrorSignal(s.signal))
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	opts := []lcd.Opt{lcd.WithAddress(cfg.Address), lcd.WithTiming(cfg.Timing.Display())}
	if cfg.IgnoreNack {
		opts = append(opts, lcd.WithIgnoreNack())
	}
	s.display, err = lcd.New(tx, opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	err = sleep(ctx, cfg.Timing.Startup)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// initDisplay runs the controller initialization and waits for it to settle.
func initDisplay(ctx context.Context, s *stack, cfg config.Config) error {
	err := s.display.Init(ctx)
	if err != nil {
		return fmt.Errorf("could not initialize display: %w", err)
	}
	return sleep(ctx, cfg.Timing.Startup)
}

func errorPin(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	_, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not initialize host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return pin, nil
}

// logScreen prints the simulated display content at debug level.
func logScreen(s *stack) {
	if s.board == nil {
		return
	}
	row, col := s.board.LCD.Cursor()
	slog.Debug("display", "line0", s.board.LCD.Line(0, 16), "line1", s.board.LCD.Line(1, 16), "cursor", fmt.Sprintf("%d,%d", row, col))
}
