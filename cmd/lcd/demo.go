package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/charlcd/cmd/lcd/console"
	"github.com/mklimuk/charlcd/config"
)

var demoCmd = cli.Command{
	Name:  "demo",
	Usage: "initialize the display and cycle the demo screen until interrupted",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of cycles, 0 runs forever",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(c), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		s, err := openStack(ctx, cfg)
		if err != nil {
			return console.Exit(1, "could not open display: %s", console.Red(err))
		}
		defer s.Close()
		err = runDemo(ctx, s, cfg, c.Int("count"))
		if err != nil && !errors.Is(err, context.Canceled) {
			return console.Exit(1, "demo failed: %s", console.Red(err))
		}
		return nil
	},
}

// runDemo initializes the display once and then redraws the demo lines every
// pause. A count of zero repeats until ctx is done.
func runDemo(ctx context.Context, s *stack, cfg config.Config, count int) error {
	err := initDisplay(ctx, s, cfg)
	if err != nil {
		return err
	}
	for cycle := 0; count == 0 || cycle < count; cycle++ {
		err = drawDemo(ctx, s, cfg.Demo)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		slog.Info("demo screen drawn", "cycle", cycle, "signal", s.signal.Raised())
		logScreen(s)
		if count != 0 && cycle == count-1 {
			break
		}
		err = sleep(ctx, cfg.Demo.Pause)
		if err != nil {
			return err
		}
	}
	return nil
}

func drawDemo(ctx context.Context, s *stack, demo config.Demo) error {
	err := s.display.Clear(ctx)
	if err != nil {
		return err
	}
	for _, line := range demo.Lines {
		err = s.display.SetCursor(ctx, line.Row, line.Col)
		if err != nil {
			return err
		}
		err = s.display.Print(ctx, line.Text)
		if err != nil {
			return err
		}
	}
	return nil
}
