package gemini

import (
	"context"
	"time"

	"github.com/fwojciec/locrag"
	"golang.org/x/time/rate"
)

// Default upload polling settings.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

// Poller repeats a check at a fixed pace until it reports done, fails, or
// the timeout elapses. The first check runs immediately.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Poll runs check until it returns true or an error. A timeout is reported
// as EREMOTE; cancellation of ctx is returned as is.
func (p Poller) Poll(ctx context.Context, what string, check func(ctx context.Context) (bool, error)) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(pollCtx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return locrag.Errorf(locrag.EREMOTE, "timed out after %s waiting for %s", timeout, what)
		}

		done, err := check(pollCtx)
		if err != nil {
			if ctx.Err() == nil && pollCtx.Err() != nil {
				return locrag.Errorf(locrag.EREMOTE, "timed out after %s waiting for %s", timeout, what)
			}
			return err
		}
		if done {
			return nil
		}
	}
}
