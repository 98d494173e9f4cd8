package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/charlcd/cmd/lcd/console"
	"github.com/mklimuk/charlcd/config"
	"github.com/mklimuk/charlcd/lcdctx"
)

// loadConfig reads the configuration file, if any, and applies the global flags on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, console.Exit(1, "could not load configuration: %s", console.Red(err))
		}
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("address") {
		cfg.Address = uint8(c.Uint("address"))
	}
	if c.IsSet("error-pin") {
		cfg.ErrorPin = c.String("error-pin")
	}
	err := cfg.Validate()
	if err != nil {
		return cfg, console.Exit(1, "%s", console.Red(err))
	}
	return cfg, nil
}

func commandContext(c *cli.Context) context.Context {
	return lcdctx.SetVerbose(c.Context, c.Bool("verbose"))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
