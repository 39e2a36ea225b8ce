package remote

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flaky fails n times then returns value.
type flaky struct {
	failures int
	calls    int
	value    string
}

func (f *flaky) call(ctx context.Context) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("transient")
	}
	return f.value, nil
}

func fastConfig(retries int) RetryConfig {
	return RetryConfig{
		Retries:     retries,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
		ShouldRetry: func(error) bool { return true },
	}
}

func TestRetry_SucceedsWithinBudget(t *testing.T) {
	for n := 0; n <= 3; n++ {
		f := &flaky{failures: n, value: "ok"}
		got, err := Retry(context.Background(), f.call, fastConfig(3))
		if err != nil {
			t.Fatalf("failures=%d: unexpected error: %v", n, err)
		}
		if got != "ok" {
			t.Errorf("failures=%d: got %q, want ok", n, got)
		}
		if f.calls != n+1 {
			t.Errorf("failures=%d: calls = %d, want %d", n, f.calls, n+1)
		}
	}
}

func TestRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	f := &flaky{failures: 5}
	_, err := Retry(context.Background(), f.call, fastConfig(2))
	if err == nil || err.Error() != "transient" {
		t.Fatalf("expected last error, got %v", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3 (retries+1)", f.calls)
	}
}

func TestRetry_ShouldRetryFalseStopsImmediately(t *testing.T) {
	f := &flaky{failures: 5}
	cfg := fastConfig(5)
	cfg.ShouldRetry = func(error) bool { return false }

	start := time.Now()
	_, err := Retry(context.Background(), f.call, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if f.calls != 1 {
		t.Errorf("calls = %d, want exactly 1", f.calls)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("no delay expected when retry is refused")
	}
}

func TestRetry_DelaysAreDeterministic(t *testing.T) {
	f := &flaky{failures: 4, value: "ok"}
	var delays []time.Duration
	cfg := RetryConfig{
		Retries:   4,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			delays = append(delays, delay)
		},
	}

	if _, err := Retry(context.Background(), f.call, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Duration{1 * time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 5 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("got %d delays, want %d", len(delays), len(want))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetry_ContextCancelStopsSleeping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &flaky{failures: 10}
	cfg := RetryConfig{Retries: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Retry(ctx, f.call, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > time.Second {
		t.Error("retry did not observe context cancellation")
	}
}

func TestBackoff(t *testing.T) {
	base := 250 * time.Millisecond
	maxDelay := 2 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 250 * time.Millisecond},
		{2, 500 * time.Millisecond},
		{3, 1 * time.Second},
		{4, 2 * time.Second},
		{10, 2 * time.Second},
		{0, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, base, maxDelay); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
