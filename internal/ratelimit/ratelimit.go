// Package ratelimit spaces out requests to the same platform backend so a
// run with many sources on one ATS does not hammer it.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between consecutive requests to the same
// platform. A per-platform override takes precedence over the default delay.
type Limiter struct {
	mu        sync.Mutex
	lastCall  map[string]time.Time
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewLimiter creates a limiter with the given default delay. overrides maps
// platform names to platform-specific delays and may be nil.
func NewLimiter(minDelay time.Duration, overrides map[string]time.Duration) *Limiter {
	return &Limiter{
		lastCall:  make(map[string]time.Time),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (l *Limiter) delayFor(platform string) time.Duration {
	if d, ok := l.overrides[platform]; ok {
		return d
	}
	return l.minDelay
}

// Wait blocks until enough time has passed since the last request to the
// given platform. Returns an error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, platform string) error {
	l.mu.Lock()
	last, ok := l.lastCall[platform]
	now := time.Now()

	if !ok {
		// First request for this platform, no wait needed.
		l.lastCall[platform] = now
		l.mu.Unlock()
		return nil
	}

	delay := l.delayFor(platform)
	elapsed := now.Sub(last)
	if elapsed >= delay {
		l.lastCall[platform] = now
		l.mu.Unlock()
		return nil
	}

	remaining := delay - elapsed
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", platform, ctx.Err())
	case <-time.After(remaining):
	}

	l.mu.Lock()
	l.lastCall[platform] = time.Now()
	l.mu.Unlock()

	return nil
}
