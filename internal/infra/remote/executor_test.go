package remote

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/localguide/internal/core/apperr"
)

type statusErr struct{ status int }

func (s statusErr) Error() string     { return "remote failure" }
func (s statusErr) RemoteStatus() int { return s.status }

func newTestExecutor(retries int) *Executor {
	return NewExecutor(Config{
		Retries:   retries,
		Timeout:   50 * time.Millisecond,
		BaseDelay: time.Millisecond,
		MaxDelay:  2 * time.Millisecond,
	}, nil)
}

func TestWithTimeout_ResolvesBeforeDeadline(t *testing.T) {
	got, err := WithTimeout(context.Background(), 50*time.Millisecond, func(ctx context.Context) (int, error) {
		time.Sleep(5 * time.Millisecond)
		return 7, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestWithTimeout_FiresAfterDeadline(t *testing.T) {
	timeout := 20 * time.Millisecond
	_, err := WithTimeout(context.Background(), timeout, func(ctx context.Context) (int, error) {
		// Ignores ctx on purpose.
		time.Sleep(timeout + 30*time.Millisecond)
		return 1, nil
	})
	if apperr.CodeOf(err) != apperr.CodeRequestTimeout {
		t.Fatalf("expected REQUEST_TIMEOUT, got %v", err)
	}
	if !apperr.Normalize(err).Retryable {
		t.Error("timeout should be retryable")
	}
}

func TestWithTimeout_OpErrorPassesThrough(t *testing.T) {
	want := errors.New("boom")
	_, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Errorf("got %v, want %v", err, want)
	}
}

func TestExecute_RetriesRetryableRemoteErrors(t *testing.T) {
	var calls int32
	exec := newTestExecutor(2)

	got, err := Execute(context.Background(), exec, "test", func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", statusErr{status: 503}
		}
		return "rows", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "rows" {
		t.Errorf("got %q", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecute_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	exec := newTestExecutor(2)

	_, err := Execute(context.Background(), exec, "test", func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", statusErr{status: 400}
	})
	if apperr.CodeOf(err) != apperr.CodeRemoteFailed {
		t.Fatalf("expected REMOTE_REQUEST_FAILED, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecute_RetriesTimeouts(t *testing.T) {
	var calls int32
	exec := newTestExecutor(1)

	_, err := Execute(context.Background(), exec, "slow", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return 0, ctx.Err()
	}, WithCallTimeout(10*time.Millisecond))
	if apperr.CodeOf(err) != apperr.CodeRequestTimeout {
		t.Fatalf("expected REQUEST_TIMEOUT, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecute_AlwaysReturnsAppError(t *testing.T) {
	exec := newTestExecutor(0)

	_, err := Execute(context.Background(), exec, "plain", func(ctx context.Context) (int, error) {
		return 0, errors.New("local fault")
	})
	var ae *apperr.AppError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if ae.Code != apperr.CodeUnexpected {
		t.Errorf("code = %s, want UNEXPECTED", ae.Code)
	}
}

func TestExecute_RecoversPanics(t *testing.T) {
	exec := newTestExecutor(0)

	_, err := Execute(context.Background(), exec, "panicky", func(ctx context.Context) (int, error) {
		panic("decoder exploded")
	})
	if apperr.CodeOf(err) != apperr.CodeUnknown {
		t.Fatalf("expected UNKNOWN, got %v", err)
	}
}

func TestExecute_PerCallRetryOverride(t *testing.T) {
	var calls int32
	exec := newTestExecutor(5)

	_, _ = Execute(context.Background(), exec, "once", func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, statusErr{status: 500}
	}, WithRetries(0))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
