// Package ratelimit throttles and retries page fetches.
package ratelimit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/locrag"
	"golang.org/x/time/rate"
)

// HostLimiter applies a token bucket per host, so requests to different
// hosts do not wait on each other.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter returns a limiter allowing rps requests per second to each
// host with no bursting.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

// DefaultRetryDelays returns the backoff between attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure Fetcher implements locrag.Fetcher at compile time.
var _ locrag.Fetcher = (*Fetcher)(nil)

// Fetcher wraps a locrag.Fetcher with per-host rate limiting and retries of
// transient failures.
type Fetcher struct {
	next    locrag.Fetcher
	limiter *HostLimiter
	delays  []time.Duration
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRequestsPerSecond sets the per-host request rate.
func WithRequestsPerSecond(rps float64) Option {
	return func(f *Fetcher) {
		f.limiter = NewHostLimiter(rps)
	}
}

// WithRetryDelays sets the wait before each retry. The number of delays is
// the number of retries; nil disables retrying.
func WithRetryDelays(delays []time.Duration) Option {
	return func(f *Fetcher) {
		f.delays = delays
	}
}

// WithRetries retries up to n times with doubling delays starting at 1s.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		f.delays = nil
		d := time.Second
		for range n {
			f.delays = append(f.delays, d)
			d *= 2
		}
	}
}

// WithLogger logs each retry.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher wraps next. By default it allows one request per second per
// host and retries with DefaultRetryDelays.
func NewFetcher(next locrag.Fetcher, opts ...Option) *Fetcher {
	f := &Fetcher{
		next:    next,
		limiter: NewHostLimiter(1),
		delays:  DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch waits for the host's turn and fetches url, retrying failures that
// may succeed on a later attempt. Invalid requests are never retried.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", locrag.Errorf(locrag.EINVALID, "invalid URL %q", rawURL)
	}

	var lastErr error
	for attempt := 0; attempt <= len(f.delays); attempt++ {
		if attempt > 0 {
			if f.logger != nil {
				f.logger.Warn("retrying fetch", "url", rawURL, "attempt", attempt+1, "error", lastErr)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(f.delays[attempt-1]):
			}
		}

		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return "", fmt.Errorf("waiting to fetch %s: %w", rawURL, err)
		}

		html, err := f.next.Fetch(ctx, rawURL)
		if err == nil {
			return html, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return "", lastErr
}

// Close closes the wrapped fetcher when it holds resources.
func (f *Fetcher) Close() error {
	if c, ok := f.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch locrag.ErrorCode(err) {
	case locrag.EINVALID, locrag.ECONFIG, locrag.ENOSTORE:
		return false
	}
	return true
}
