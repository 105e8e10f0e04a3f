package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jobsentry/jobsentry/internal/model"
)

// HostRateLimiter enforces a minimum delay between requests to the same
// host. All list sources live on the same raw-content host, so sharing one
// limiter keeps a cycle from hammering it.
type HostRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: hostname
	minDelay time.Duration
}

// NewHostRateLimiter creates a limiter enforcing minDelay between
// consecutive requests to the same host.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given host. Returns an error if the context is cancelled while waiting.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	r.mu.Lock()
	last, ok := r.lastCall[host]
	now := time.Now()

	if !ok {
		// First request for this host — no wait needed.
		r.lastCall[host] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		r.lastCall[host] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[host] = time.Now()
	r.mu.Unlock()

	return nil
}

// HostFor extracts the limiter key from a URL, falling back to the raw
// string when it does not parse.
func HostFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// RateLimitedFetcher is a decorator that waits for the host limiter before
// delegating to the wrapped fetcher. Fetchers targeting the same host
// should share the same limiter instance.
type RateLimitedFetcher struct {
	inner   model.RecordFetcher
	limiter *HostRateLimiter
	host    string
}

// NewRateLimitedFetcher wraps a RecordFetcher with host-level rate limiting.
func NewRateLimitedFetcher(inner model.RecordFetcher, limiter *HostRateLimiter, host string) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		host:    host,
	}
}

// FetchRecords waits for the limiter to allow a request, then delegates.
func (f *RateLimitedFetcher) FetchRecords(ctx context.Context) ([]model.JobRecord, error) {
	if err := f.limiter.Wait(ctx, f.host); err != nil {
		return nil, err
	}
	return f.inner.FetchRecords(ctx)
}
