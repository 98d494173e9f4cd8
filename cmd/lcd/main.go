package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
)

var version string
var commit string
var date string

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := newApp()
	err := app.Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			log.Printf("unexpected error: %v", err)
			return exerr.ExitCode()
		}
		return 1
	}
	return 0
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "lcd"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", version, date, commit)
	app.Usage = "character LCD over a PCF8574 I2C backpack"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the yaml configuration",
			EnvVars: []string{"LCD_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "bus backend (sim, mcp2221, periph, gobot)",
		},
		&cli.StringFlag{
			Name:  "device",
			Usage: "periph i2c bus name",
		},
		&cli.UintFlag{
			Name:  "address",
			Usage: "7-bit expander address",
		},
		&cli.StringFlag{
			Name:  "error-pin",
			Usage: "gpio driven high while the bus reports an error",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stdout, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Prefix:          "lcd",
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if ctx.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))
		return nil
	}
	// exit codes are resolved by run
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = cli.Commands{
		&demoCmd,
		&initCmd,
		&clearCmd,
		&writeCmd,
		&consoleCmd,
		&statusCmd,
		&configCmd,
		&mcp2221Cmd,
		&usbCmd,
	}
	return app
}
