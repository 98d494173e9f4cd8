//go:build tinygo

// Command lcd-firmware runs the demo screen on a microcontroller with the
// backpack wired to its first I2C peripheral.
package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"github.com/mklimuk/charlcd"
	"github.com/mklimuk/charlcd/i2c"
	"github.com/mklimuk/charlcd/lcd"
)

const (
	startupDelay = 10 * time.Millisecond
	pause        = 2 * time.Second
)

func main() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	err := machine.I2C0.Configure(machine.I2CConfig{Frequency: 100 * machine.KHz})
	if err != nil {
		fail(led, err)
	}
	time.Sleep(startupDelay)

	signal := charlcd.NewErrorSignal(nil)
	tx := i2c.NewTransmitter(i2c.NewTinyGoBus(machine.I2C0), i2c.WithErrorSignal(signal))
	display, err := lcd.New(tx)
	if err != nil {
		fail(led, err)
	}
	ctx := context.Background()
	err = display.Init(ctx)
	if err != nil {
		fail(led, err)
	}
	time.Sleep(startupDelay)

	for {
		err = screen(ctx, display)
		if err != nil {
			slog.Error("demo screen failed", "error", err)
		}
		led.Set(signal.Raised() || err != nil)
		time.Sleep(pause)
	}
}

func screen(ctx context.Context, display *lcd.Display) error {
	if err := display.Clear(ctx); err != nil {
		return err
	}
	if err := display.SetCursor(ctx, 0, 0); err != nil {
		return err
	}
	if err := display.Print(ctx, "Hello World !"); err != nil {
		return err
	}
	if err := display.SetCursor(ctx, 1, 7); err != nil {
		return err
	}
	return display.Print(ctx, "PCF8574")
}

func fail(led machine.Pin, err error) {
	slog.Error("startup failed", "error", err)
	for {
		led.Set(true)
		time.Sleep(pause)
	}
}
