package remote

import (
	"context"
	"time"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	// Retries is the number of extra attempts after the first one.
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// ShouldRetry decides whether a failure may be retried. Nil retries
	// everything.
	ShouldRetry func(err error) bool

	// OnRetry is called before sleeping; attempt is 1-based.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig matches the executor defaults.
var DefaultRetryConfig = RetryConfig{
	Retries:   2,
	BaseDelay: 250 * time.Millisecond,
	MaxDelay:  2 * time.Second,
}

// Retry calls op up to Retries+1 times with capped exponential backoff and
// no jitter. The last error is returned unchanged.
func Retry[T any](
	ctx context.Context,
	op func(ctx context.Context) (T, error),
	config RetryConfig,
) (T, error) {
	attempt := 0
	for {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		attempt++
		if attempt > config.Retries {
			return val, err
		}
		if config.ShouldRetry != nil && !config.ShouldRetry(err) {
			return val, err
		}

		delay := Backoff(attempt, config.BaseDelay, config.MaxDelay)
		if config.OnRetry != nil {
			config.OnRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return val, err
		case <-timer.C:
		}
	}
}

// Backoff returns min(base * 2^(attempt-1), max) for a 1-based attempt.
func Backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if maxDelay > 0 && delay >= maxDelay {
			return maxDelay
		}
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}
