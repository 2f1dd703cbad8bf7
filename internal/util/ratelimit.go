package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces calls against an external API quota. Tokens accrue
// continuously at the configured per-minute rate up to a burst ceiling,
// so a caller that has been idle may fire a short run of requests back
// to back before settling into the steady rate.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration // time to accrue one token
	burst    float64
	tokens   float64
	last     time.Time
}

// NewRateLimiter returns a limiter allowing perMinute operations per
// minute with up to burst operations in a single spike. Values below 1
// are raised to 1.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		interval: time.Minute / time.Duration(perMinute),
		burst:    float64(burst),
		tokens:   float64(burst),
		last:     time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
// When the bucket is empty it sleeps exactly the time needed to accrue
// the missing fraction of a token rather than polling.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		rl.tokens += float64(now.Sub(rl.last)) / float64(rl.interval)
		if rl.tokens > rl.burst {
			rl.tokens = rl.burst
		}
		rl.last = now

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - rl.tokens) * float64(rl.interval))
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
