// Package remote is the single choke point for backend calls.
//
// Each attempt runs under WithTimeout, failures are classified by the apperr
// taxonomy and the retryable flag drives Retry. Callers receive either the
// value or an *apperr.AppError, never a raw transport error.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/localguide/internal/core/apperr"
	"github.com/vietddude/localguide/internal/directory/metrics"
)

// Config holds executor defaults.
type Config struct {
	Retries   int           `yaml:"retries"    validate:"gte=-1,lte=10"`
	Timeout   time.Duration `yaml:"timeout"    validate:"gte=0"`
	BaseDelay time.Duration `yaml:"base_delay" validate:"gte=0"`
	MaxDelay  time.Duration `yaml:"max_delay"  validate:"gte=0"`
}

// DefaultConfig provides the defaults used by every remote call.
func DefaultConfig() Config {
	return Config{
		Retries:   2,
		Timeout:   8 * time.Second,
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// Executor runs remote operations with timeout and retry.
type Executor struct {
	cfg Config
	log *slog.Logger
}

// NewExecutor creates an executor. Zero timeout and delays are replaced by
// the defaults; a negative Retries disables retries.
func NewExecutor(cfg Config, logger *slog.Logger) *Executor {
	def := DefaultConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{cfg: cfg, log: logger}
}

// Config returns the effective configuration.
func (e *Executor) Config() Config {
	return e.cfg
}

// CallOption overrides executor defaults for a single call.
type CallOption func(*Config)

// WithRetries overrides the retry count.
func WithRetries(n int) CallOption {
	return func(c *Config) { c.Retries = n }
}

// WithCallTimeout overrides the per-attempt timeout.
func WithCallTimeout(d time.Duration) CallOption {
	return func(c *Config) { c.Timeout = d }
}

// Execute runs op through the executor. name labels logs and metrics.
func Execute[T any](
	ctx context.Context,
	e *Executor,
	name string,
	op func(ctx context.Context) (T, error),
	opts ...CallOption,
) (T, error) {
	cfg := e.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	reqID := uuid.NewString()
	start := time.Now()

	attempt := func(ctx context.Context) (T, error) {
		return WithTimeout(ctx, cfg.Timeout, guarded(op))
	}

	val, err := Retry(ctx, attempt, RetryConfig{
		Retries:     cfg.Retries,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		ShouldRetry: apperr.IsRetryable,
		OnRetry: func(n int, delay time.Duration, err error) {
			metrics.RemoteRetriesTotal.WithLabelValues(name).Inc()
			e.log.Debug("Retrying remote call",
				"operation", name,
				"request_id", reqID,
				"attempt", n,
				"delay", delay,
				"code", apperr.Normalize(err).Code,
			)
		},
	})
	metrics.RemoteLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		normalized := apperr.Normalize(err)
		metrics.RemoteCallsTotal.WithLabelValues(name, "failure").Inc()
		metrics.RemoteErrorsTotal.WithLabelValues(name, string(normalized.Code)).Inc()
		var zero T
		return zero, normalized
	}

	metrics.RemoteCallsTotal.WithLabelValues(name, "success").Inc()
	return val, nil
}

// guarded converts a panic inside op into an AppError.
func guarded[T any](op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (val T, err error) {
		defer func() {
			if r := recover(); r != nil {
				if re, ok := r.(error); ok {
					err = apperr.Unexpected(fmt.Errorf("panic: %w", re))
					return
				}
				err = apperr.Unknown(r)
			}
		}()
		return op(ctx)
	}
}
