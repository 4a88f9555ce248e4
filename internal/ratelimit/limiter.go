// Package ratelimit caps outbound request dispatch rate.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter gates request attempts to a requests-per-second budget. A nil
// *Limiter never waits, so callers can thread an optional limiter through
// without nil checks.
type Limiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// New creates a Limiter allowing rps requests per second with a burst of rps.
func New(rps int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Wait blocks until the next request may be dispatched or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.RLock()
	limiter := l.limiter
	limit := limiter.Limit()
	l.mu.RUnlock()

	if limit == 0 {
		return nil
	}
	return limiter.Wait(ctx)
}

// SetRate adjusts the requests-per-second budget.
func (l *Limiter) SetRate(rps int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter.SetLimit(rate.Limit(rps))
	l.limiter.SetBurst(rps)
}
