package remote

import (
	"context"
	"time"
)

// Backoff doubles the delay after every failed attempt, starting at Base and
// capped at Max. There is no jitter.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

var DefaultBackoff = Backoff{
	Base: 200 * time.Millisecond,
	Max:  2 * time.Second,
}

// Delay returns the wait after the given zero-based failed attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}

	d := b.Base
	for i := 0; i < attempt; i++ {
		if b.Max > 0 && d >= b.Max {
			break
		}
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
