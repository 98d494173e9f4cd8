package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/charlcd/cmd/lcd/console"
	"github.com/mklimuk/charlcd/lcd"
)

var errQuit = errors.New("quit")

var consoleCmd = cli.Command{
	Name:  "console",
	Usage: "type text straight onto the display",
	Description: "Every line is written at the cursor. Lines starting with a colon are commands:\n" +
		"   :clear         clear the display\n" +
		"   :cursor R C    move the cursor to row R, column C\n" +
		"   :init          rerun the initialization sequence\n" +
		"   :quit          leave the console",
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
		shell, err := console.NewShell("lcd> ", ":clear", ":cursor", ":init", ":quit")
		if err != nil {
			return console.Exit(1, "could not start console: %s", console.Red(err))
		}
		defer shell.Close()
		for line, err := range shell.Lines() {
			if err != nil {
				return console.Exit(1, "could not read input: %s", console.Red(err))
			}
			err = execLine(ctx, s.display, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				console.Errorf("%v", err)
			}
			logScreen(s)
		}
		return nil
	},
}

// execLine runs one console line against the display.
func execLine(ctx context.Context, d *lcd.Display, line string) error {
	if !strings.HasPrefix(line, ":") {
		if line == "" {
			return nil
		}
		return d.Print(ctx, line)
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return errQuit
	case ":clear":
		return d.Clear(ctx)
	case ":init":
		return d.Init(ctx)
	case ":cursor":
		if len(fields) != 3 {
			return fmt.Errorf("usage: :cursor ROW COL")
		}
		row, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid row %q", fields[1])
		}
		col, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid column %q", fields[2])
		}
		return d.SetCursor(ctx, byte(row), byte(col))
	default:
		return fmt.Errorf("unknown command %s", fields[0])
	}
}
