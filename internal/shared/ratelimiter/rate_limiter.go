// Package ratelimiter paces calls against upstream APIs with per-window
// request quotas.
package ratelimiter

import (
	"log/slog"
	"time"
)

// RateLimiterInterface limits how often an operation may run.
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter allows at most `limit` calls per `interval`, sleeping the
// caller once the quota is exhausted. It is meant for a single-threaded
// batch loop and is not safe for concurrent use.
type RateLimiter struct {
	limit     int
	interval  time.Duration
	count     int
	lastReset time.Time
}

// NewRateLimiter creates a RateLimiter with the given quota.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded blocks until the current call fits within the quota.
func (rl *RateLimiter) WaitIfNeeded() {
	now := time.Now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		sleep := rl.interval - now.Sub(rl.lastReset)
		if sleep > 0 {
			slog.Info("rate limit reached, sleeping", "calls", rl.limit, "sleep", sleep)
			time.Sleep(sleep)
		}
		rl.count = 1
		rl.lastReset = time.Now()
	}
}

// Noop is a RateLimiter that never waits, for tests and one-off runs.
type Noop struct{}

func (Noop) WaitIfNeeded() {}
