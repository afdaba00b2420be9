package translate

import (
	"context"
	"sync"
	"time"
)

const rateLimitWindow = 60 * time.Second

// RateLimiter enforces a requests-per-minute ceiling over a trailing
// 60-second window. One instance is shared by every job a daemon processes,
// so all methods are safe for concurrent use. State is in-memory only; a
// restart resets the window, which is acceptable.
type RateLimiter struct {
	mu         sync.Mutex
	limit      int
	timestamps []time.Time
	now        func() time.Time
	sleep      func(context.Context, time.Duration) error
}

// RateLimiterOption customizes a limiter, mainly for tests.
type RateLimiterOption func(*RateLimiter)

// WithLimiterClock overrides the time source.
func WithLimiterClock(now func() time.Time) RateLimiterOption {
	return func(l *RateLimiter) {
		l.now = now
	}
}

// WithLimiterSleeper overrides how admission waits are performed.
func WithLimiterSleeper(sleep func(context.Context, time.Duration) error) RateLimiterOption {
	return func(l *RateLimiter) {
		l.sleep = sleep
	}
}

// NewRateLimiter constructs a limiter admitting at most limit requests per
// minute. Non-positive limits are clamped to 1 so admission always terminates.
func NewRateLimiter(limit int, opts ...RateLimiterOption) *RateLimiter {
	limiter := &RateLimiter{
		limit: clampLimit(limit),
		now:   time.Now,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(limiter)
	}
	return limiter
}

// SetLimit updates the requests-per-minute ceiling. Takes effect at the next
// admission check. Non-positive limits are clamped to 1.
func (l *RateLimiter) SetLimit(limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limit = clampLimit(limit)
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	return limit
}

// AwaitAdmission blocks until issuing another request would stay within the
// ceiling, or until ctx is done. The wait is the time until the oldest
// request in the window ages out.
func (l *RateLimiter) AwaitAdmission(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.timestamps) < l.limit {
			l.mu.Unlock()
			return nil
		}
		wait := rateLimitWindow - now.Sub(l.timestamps[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RecordSuccess appends the current time to the request window. Call after
// each successful provider request.
func (l *RateLimiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	l.timestamps = append(l.timestamps, now)
}

func (l *RateLimiter) prune(now time.Time) {
	cutoff := 0
	for cutoff < len(l.timestamps) && now.Sub(l.timestamps[cutoff]) >= rateLimitWindow {
		cutoff++
	}
	if cutoff > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[cutoff:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
