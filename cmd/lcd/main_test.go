package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/charlcd/config"
	"github.com/mklimuk/charlcd/lcd"
)

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.Timing.Strobe = lcd.MinStrobeDelay
	cfg.Timing.Clear = lcd.MinClearDelay
	cfg.Timing.Startup = 0
	cfg.Demo.Pause = 0
	return cfg
}

func openSim(t *testing.T, cfg config.Config) *stack {
	t.Helper()
	s, err := openStack(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NotNil(t, s.board)
	return s
}

func TestRunDemo(t *testing.T) {
	cfg := fastConfig()
	s := openSim(t, cfg)
	err := runDemo(context.Background(), s, cfg, 2)
	require.NoError(t, err)
	assert.Equal(t, "Hello World !\n       PCF8574", s.board.LCD.Screen(16))
	row, col := s.board.LCD.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 14, col)
	assert.False(t, s.signal.Raised())
}

func TestRunDemoCancelled(t *testing.T) {
	cfg := fastConfig()
	s := openSim(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runDemo(ctx, s, cfg, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecLine(t *testing.T) {
	cfg := fastConfig()
	s := openSim(t, cfg)
	ctx := context.Background()
	require.NoError(t, initDisplay(ctx, s, cfg))

	require.NoError(t, execLine(ctx, s.display, ":cursor 1 2"))
	require.NoError(t, execLine(ctx, s.display, "hi"))
	require.NoError(t, execLine(ctx, s.display, ""))
	assert.Equal(t, "\n  hi", s.board.LCD.Screen(16))

	require.NoError(t, execLine(ctx, s.display, ":clear"))
	assert.Equal(t, "\n", s.board.LCD.Screen(16))

	assert.ErrorIs(t, execLine(ctx, s.display, ":quit"), errQuit)
	assert.ErrorIs(t, execLine(ctx, s.display, ":cursor 2 0"), lcd.ErrInvalidRow)
	assert.Error(t, execLine(ctx, s.display, ":cursor 1"))
	assert.Error(t, execLine(ctx, s.display, ":cursor x 1"))
	assert.Error(t, execLine(ctx, s.display, ":bogus"))
}

func TestCollectStatusSim(t *testing.T) {
	cfg := fastConfig()
	s := openSim(t, cfg)
	require.NoError(t, runDemo(context.Background(), s, cfg, 1))
	st, err := collectStatus(nil, s, cfg)
	require.NoError(t, err)
	assert.Equal(t, "sim", st.Backend)
	assert.Equal(t, "0x20", st.Address)
	assert.Equal(t, "idle", st.Engine)
	require.NotNil(t, st.Display)
	assert.True(t, st.Display.FourBit)
	assert.True(t, st.Display.TwoLine)
	assert.Equal(t, [2]int{1, 14}, st.Display.Cursor)
	assert.Nil(t, st.Adapter)
}

func TestRunWriteCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, fastConfig().Encode(f))
	require.NoError(t, f.Close())

	code := run([]string{"lcd", "--config", path, "write", "--row", "1", "--col", "3", "hello"})
	assert.Equal(t, 0, code)

	code = run([]string{"lcd", "--config", path, "--backend", "spi", "init"})
	assert.Equal(t, 1, code)

	code = run([]string{"lcd", "--config", path, "write"})
	assert.Equal(t, 1, code)
}

func TestCursorPosition(t *testing.T) {
	tests := []struct {
		name     string
		row, col uint
		wantRow  byte
		wantCol  byte
		wantErr  error
	}{
		{name: "origin", row: 0, col: 0},
		{name: "second line", row: 1, col: 7, wantRow: 1, wantCol: 7},
		{name: "row out of byte range", row: 256, wantErr: lcd.ErrInvalidRow},
		{name: "column out of byte range", row: 0, col: 300, wantErr: errAny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, err := cursorPosition(tt.row, tt.col)
			switch {
			case tt.wantErr == errAny:
				assert.Error(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantRow, row)
				assert.Equal(t, tt.wantCol, col)
			}
		})
	}
}

var errAny = errors.New("any error")

func TestRunWriteRejectsWrappingRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcd.yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, fastConfig().Encode(f))
	require.NoError(t, f.Close())

	code := run([]string{"lcd", "--config", path, "write", "--row", "256", "hello"})
	assert.Equal(t, 1, code)
}
