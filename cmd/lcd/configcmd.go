package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/charlcd/cmd/lcd/console"
)

var configCmd = cli.Command{
	Name:  "config",
	Usage: "inspect the effective configuration",
	Subcommands: cli.Commands{
		&configShowCmd,
		&configInitCmd,
	},
}

var configShowCmd = cli.Command{
	Name:  "show",
	Usage: "print the configuration after file and flags are applied",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		err = cfg.Encode(os.Stdout)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		return nil
	},
}

var configInitCmd = cli.Command{
	Name:      "init",
	Usage:     "write the effective configuration to a file",
	ArgsUsage: "PATH",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "overwrite without asking"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(1, "expected 1 argument, got %d", c.NArg())
		}
		path := c.Args().First()
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		_, err = os.Stat(path)
		if err == nil && !c.Bool("force") {
			answer, err := console.YesOrNo(fmt.Sprintf("%s exists, overwrite?", path))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if answer != console.Yes {
				return nil
			}
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return console.Exit(1, "%s", console.Red(err))
		}
		f, err := os.Create(path)
		if err != nil {
			return console.Exit(1, "could not create %s: %s", path, console.Red(err))
		}
		defer f.Close()
		err = cfg.Encode(f)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "configuration written to %s", console.White(path))
		return nil
	},
}
