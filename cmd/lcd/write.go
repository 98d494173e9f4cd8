package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/charlcd/cmd/lcd/console"
	"github.com/mklimuk/charlcd/lcd"
)

var initCmd = cli.Command{
	Name:  "init",
	Usage: "run the controller initialization sequence",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		ctx := commandContext(c)
		s, err := openStack(ctx, cfg)
		if err != nil {
			return console.Exit(1, "could not open display: %s", console.Red(err))
		}
		defer s.Close()
		err = initDisplay(ctx, s, cfg)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		console.PInfof(console.PictoDisplay, "display initialized at %s", console.White(formatAddress(cfg.Address)))
		return nil
	},
}

var clearCmd = cli.Command{
	Name:  "clear",
	Usage: "clear the display and home the cursor",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		ctx := commandContext(c)
		s, err := openStack(ctx, cfg)
		if err != nil {
			return console.Exit(1, "could not open display: %s", console.Red(err))
		}
		defer s.Close()
		err = s.display.Clear(ctx)
		if err != nil {
			return console.Exit(1, "could not clear display: %s", console.Red(err))
		}
		return nil
	},
}

var writeCmd = cli.Command{
	Name:      "write",
	Usage:     "write text at a cursor position",
	ArgsUsage: "TEXT",
	Flags: []cli.Flag{
		&cli.UintFlag{Name: "row", Usage: "row (0 or 1)"},
		&cli.UintFlag{Name: "col", Usage: "column"},
		&cli.BoolFlag{Name: "init", Usage: "initialize and clear the display first"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return console.Exit(1, "expected text to write")
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		ctx := commandContext(c)
		s, err := openStack(ctx, cfg)
		if err != nil {
			return console.Exit(1, "could not open display: %s", console.Red(err))
		}
		defer s.Close()
		if c.Bool("init") || s.board != nil {
			err = initDisplay(ctx, s, cfg)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
		}
		row, col, err := cursorPosition(c.Uint("row"), c.Uint("col"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		err = s.display.SetCursor(ctx, row, col)
		if err != nil {
			return console.Exit(1, "could not set cursor: %s", console.Red(err))
		}
		err = s.display.Print(ctx, strings.Join(c.Args().Slice(), " "))
		if err != nil {
			return console.Exit(1, "could not write text: %s", console.Red(err))
		}
		logScreen(s)
		return nil
	},
}

// cursorPosition narrows flag values to the byte range of the cursor command.
func cursorPosition(row, col uint) (byte, byte, error) {
	if row > math.MaxUint8 {
		return 0, 0, fmt.Errorf("%w: %d", lcd.ErrInvalidRow, row)
	}
	if col > math.MaxUint8 {
		return 0, 0, fmt.Errorf("invalid column %d", col)
	}
	return byte(row), byte(col), nil
}
