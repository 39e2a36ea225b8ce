package remote

import (
	"context"
	"time"

	"github.com/vietddude/localguide/internal/core/apperr"
)

type result[T any] struct {
	val T
	err error
}

// WithTimeout races op against a deadline. If the deadline fires first it
// returns a REQUEST_TIMEOUT AppError. The op's context is cancelled on
// return, but an op that ignores its context keeps running in the
// background; only its result is dropped.
func WithTimeout[T any](
	ctx context.Context,
	timeout time.Duration,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if timeout <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so an abandoned op never blocks on send.
	done := make(chan result[T], 1)
	go func() {
		val, err := op(opCtx)
		done <- result[T]{val: val, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		return zero, apperr.Timeout(timeout, nil)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
