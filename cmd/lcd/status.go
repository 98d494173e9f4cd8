package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/charlcd/adapter"
	"github.com/mklimuk/charlcd/cmd/lcd/console"
	"github.com/mklimuk/charlcd/config"
)

type displayStatus struct {
	Lines     []string `yaml:"lines"`
	Cursor    [2]int   `yaml:"cursor"`
	FourBit   bool     `yaml:"four_bit"`
	TwoLine   bool     `yaml:"two_line"`
	DisplayOn bool     `yaml:"display_on"`
	CursorOn  bool     `yaml:"cursor_on"`
	Backlight bool     `yaml:"backlight"`
}

type stackStatus struct {
	Backend     string                 `yaml:"backend"`
	Address     string                 `yaml:"address"`
	SignalError bool                   `yaml:"error_signal"`
	Engine      string                 `yaml:"engine,omitempty"`
	Display     *displayStatus         `yaml:"display,omitempty"`
	Adapter     *adapter.MCP2221Status `yaml:"adapter,omitempty"`
}

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "print the bus state as yaml; --demo draws the demo screen first",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "demo", Usage: "draw the demo screen before reporting"},
	},
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
		if c.Bool("demo") {
			err = runDemo(ctx, s, cfg, 1)
			if err != nil {
				console.Warnf("demo failed: %v", err)
			}
		}
		st, err := collectStatus(c, s, cfg)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		enc := yaml.NewEncoder(os.Stdout)
		err = enc.Encode(st)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}

func collectStatus(c *cli.Context, s *stack, cfg config.Config) (*stackStatus, error) {
	st := &stackStatus{
		Backend:     cfg.Backend,
		Address:     formatAddress(cfg.Address),
		SignalError: s.signal.Raised(),
	}
	if s.engine != nil {
		st.Engine = s.engine.State().String()
	}
	if s.board != nil {
		d := s.board.LCD
		row, col := d.Cursor()
		st.Display = &displayStatus{
			Lines:     []string{d.Line(0, 16), d.Line(1, 16)},
			Cursor:    [2]int{row, col},
			FourBit:   d.FourBit(),
			TwoLine:   d.TwoLine(),
			DisplayOn: d.DisplayOn(),
			CursorOn:  d.CursorOn(),
			Backlight: d.Backlight(),
		}
	}
	if s.adapter != nil {
		var err error
		st.Adapter, err = s.adapter.Status(commandContext(c))
		if err != nil {
			return nil, err
		}
	}
	return st, nil
}
