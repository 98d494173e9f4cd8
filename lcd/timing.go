package lcd

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultStrobeDelay = 20 * time.Millisecond
	DefaultClearDelay  = 10 * time.Millisecond

	// MinStrobeDelay covers the enable pulse width (450ns) and the 37µs
	// execution time of regular instructions.
	MinStrobeDelay = 50 * time.Microsecond
	// MinClearDelay covers the 1.52ms execution time of clear display.
	MinClearDelay = 2 * time.Millisecond
)

// Timing holds the delays required by the controller.
type Timing struct {
	// Strobe is waited after every expander byte.
	Strobe time.Duration `yaml:"strobe"`
	// Clear is waited after the clear display command.
	Clear time.Duration `yaml:"clear"`
}

func DefaultTiming() Timing {
	return Timing{Strobe: DefaultStrobeDelay, Clear: DefaultClearDelay}
}

func (t Timing) Validate() error {
	if t.Strobe < MinStrobeDelay {
		return fmt.Errorf("%w: strobe delay %s below %s", ErrTiming, t.Strobe, MinStrobeDelay)
	}
	if t.Clear < MinClearDelay {
		return fmt.Errorf("%w: clear delay %s below %s", ErrTiming, t.Clear, MinClearDelay)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
