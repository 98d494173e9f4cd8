package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint8(0x20), cfg.Address)
	assert.Equal(t, 20*time.Millisecond, cfg.Timing.Strobe)
	assert.Len(t, cfg.Demo.Lines, 2)
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	doc := `
backend: periph
device: /dev/i2c-1
address: 0x27
timing:
  strobe: 1ms
demo:
  pause: 500ms
`
	cfg, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, BackendPeriph, cfg.Backend)
	assert.Equal(t, "/dev/i2c-1", cfg.Device)
	assert.Equal(t, uint8(0x27), cfg.Address)
	assert.Equal(t, time.Millisecond, cfg.Timing.Strobe)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.Clear)
	assert.Equal(t, 500*time.Millisecond, cfg.Demo.Pause)
	assert.Len(t, cfg.Demo.Lines, 2)
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Backend = "spi" }},
		{"address", func(c *Config) { c.Address = 0x80 }},
		{"clock", func(c *Config) { c.Engine.Clock = 0 }},
		{"unreachable clock", func(c *Config) { c.Engine.Clock = 2_000_000 }},
		{"poll limit", func(c *Config) { c.Engine.PollLimit = 0 }},
		{"strobe", func(c *Config) { c.Timing.Strobe = time.Microsecond }},
		{"clear", func(c *Config) { c.Timing.Clear = time.Millisecond }},
		{"startup", func(c *Config) { c.Timing.Startup = -time.Second }},
		{"demo row", func(c *Config) { c.Demo.Lines = []Line{{Row: 2}} }},
		{"demo pause", func(c *Config) { c.Demo.Pause = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendGobot
	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), "strobe: 20ms")
	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: mcp2221\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMCP2221, cfg.Backend)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
