// Package config loads the YAML configuration of the lcd command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/charlcd/lcd"
	"github.com/mklimuk/charlcd/ssp"
)

const (
	BackendSim     = "sim"
	BackendMCP2221 = "mcp2221"
	BackendPeriph  = "periph"
	BackendGobot   = "gobot"
)

const DefaultStartupDelay = 10 * time.Millisecond

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// Backend selects the bus driving the expander.
	Backend string `yaml:"backend"`
	// Device is the periph bus name, empty for the first available bus.
	Device string `yaml:"device"`
	// GobotBus is the bus number used by the gobot backend, negative for the platform default.
	GobotBus   int    `yaml:"gobot_bus"`
	Address    uint8  `yaml:"address"`
	ErrorPin   string `yaml:"error_pin"`
	IgnoreNack bool   `yaml:"ignore_nack"`
	Engine     Engine `yaml:"engine"`
	Timing     Timing `yaml:"timing"`
	Demo       Demo   `yaml:"demo"`
}

type Engine struct {
	Oscillator uint32 `yaml:"oscillator"`
	Clock      uint32 `yaml:"clock"`
	PollLimit  int    `yaml:"poll_limit"`
}

type Timing struct {
	Strobe time.Duration `yaml:"strobe"`
	Clear  time.Duration `yaml:"clear"`
	// Startup is waited after the bus and the display are initialized.
	Startup time.Duration `yaml:"startup"`
}

func (t Timing) Display() lcd.Timing {
	return lcd.Timing{Strobe: t.Strobe, Clear: t.Clear}
}

type Line struct {
	Row  byte   `yaml:"row"`
	Col  byte   `yaml:"col"`
	Text string `yaml:"text"`
}

type Demo struct {
	Lines []Line        `yaml:"lines"`
	Pause time.Duration `yaml:"pause"`
}

func Default() Config {
	return Config{
		Backend:  BackendSim,
		GobotBus: -1,
		Address:  lcd.DefaultAddress,
		Engine: Engine{
			Oscillator: ssp.DefaultOscillator,
			Clock:      ssp.DefaultClock,
			PollLimit:  ssp.DefaultPollLimit,
		},
		Timing: Timing{
			Strobe:  lcd.DefaultStrobeDelay,
			Clear:   lcd.DefaultClearDelay,
			Startup: DefaultStartupDelay,
		},
		Demo: Demo{
			Lines: []Line{
				{Row: 0, Col: 0, Text: "Hello World !"},
				{Row: 1, Col: 7, Text: "PCF8574"},
			},
			Pause: 2 * time.Second,
		},
	}
}

// Load reads the file at path on top of the defaults. An empty file yields the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	err := yaml.NewDecoder(r).Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(c)
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	return enc.Close()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendSim, BackendMCP2221, BackendPeriph, BackendGobot:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if c.Address > 0x7F {
		return fmt.Errorf("%w: address %#x is not a 7-bit address", ErrInvalid, c.Address)
	}
	if _, err := ssp.BaudDivisor(c.Engine.Oscillator, c.Engine.Clock); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Engine.PollLimit <= 0 {
		return fmt.Errorf("%w: poll limit must be positive", ErrInvalid)
	}
	if err := c.Timing.Display().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Timing.Startup < 0 {
		return fmt.Errorf("%w: negative startup delay", ErrInvalid)
	}
	for i, l := range c.Demo.Lines {
		if l.Row > 1 {
			return fmt.Errorf("%w: demo line %d: row %d out of range", ErrInvalid, i, l.Row)
		}
	}
	if c.Demo.Pause < 0 {
		return fmt.Errorf("%w: negative demo pause", ErrInvalid)
	}
	return nil
}
