package apperr

import (
	"context"
	"errors"
	"log/slog"
)

// RemoteFailure is implemented by errors that the remote backend reported.
// RemoteStatus returns the HTTP-like status, or 0 when none was given.
type RemoteFailure interface {
	error
	RemoteStatus() int
}

// Normalize classifies any value into an AppError. It never panics.
// A nil value yields nil.
func Normalize(raw any) *AppError {
	if raw == nil {
		return nil
	}

	err, isErr := raw.(error)
	if !isErr {
		return Unknown(raw)
	}

	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}

	var rf RemoteFailure
	if errors.As(err, &rf) {
		status := rf.RemoteStatus()
		retryable := status == 429 || status >= 500
		return Remote(rf.Error(), err, retryable)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(0, err)
	}

	return Unexpected(err)
}

// Report normalizes err and logs it with its code. Extra attrs are appended
// to the log record. A nil logger means slog.Default().
func Report(logger *slog.Logger, err error, msg string, attrs ...any) *AppError {
	normalized := Normalize(err)
	if normalized == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	args := append([]any{
		"code", normalized.Code,
		"retryable", normalized.Retryable,
		"error", normalized.Message,
	}, attrs...)

	switch normalized.Severity {
	case SeverityInfo:
		logger.Info(msg, args...)
	case SeverityWarning:
		logger.Warn(msg, args...)
	default:
		logger.Error(msg, args...)
	}
	return normalized
}
