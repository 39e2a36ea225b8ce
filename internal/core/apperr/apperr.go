// Package apperr defines the typed error taxonomy used at the remote-access
// boundary.
//
// Every failure produced while talking to the backend is converted into an
// *AppError before it leaves the infra layer:
//   - UNEXPECTED: local runtime fault, never retried
//   - UNKNOWN: unclassifiable value (e.g. a recovered panic), never retried
//   - REMOTE_REQUEST_FAILED: backend answered with an error; retryable iff
//     the status is 429 or >= 500
//   - REQUEST_TIMEOUT: deadline exceeded, always retryable
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Code is the symbolic error code.
type Code string

const (
	CodeUnexpected     Code = "UNEXPECTED"
	CodeUnknown        Code = "UNKNOWN"
	CodeRemoteFailed   Code = "REMOTE_REQUEST_FAILED"
	CodeRequestTimeout Code = "REQUEST_TIMEOUT"
)

// Severity ranks how bad an error is for the caller.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

const (
	userMessageGeneric = "Algo deu errado. Tente novamente."
	userMessageRemote  = "Não foi possível carregar os dados agora."
	userMessageTimeout = "A requisição demorou demais. Tente novamente."
)

// AppError is the only error type that crosses the remote-access boundary.
type AppError struct {
	Code        Code
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	Cause       error
}

// Error implements error.
func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Options configures New. Zero Severity means SeverityError.
type Options struct {
	Code        Code
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	Cause       error
}

// New builds an AppError from options.
func New(opts Options) *AppError {
	sev := opts.Severity
	if sev == "" {
		sev = SeverityError
	}
	return &AppError{
		Code:        opts.Code,
		Message:     opts.Message,
		UserMessage: opts.UserMessage,
		Severity:    sev,
		Retryable:   opts.Retryable,
		Cause:       opts.Cause,
	}
}

// Timeout reports that an operation exceeded its deadline.
// A zero timeout means the deadline came from the caller's context.
func Timeout(timeout time.Duration, cause error) *AppError {
	msg := "request deadline exceeded"
	if timeout > 0 {
		msg = fmt.Sprintf("request exceeded %dms", timeout.Milliseconds())
	}
	return New(Options{
		Code:        CodeRequestTimeout,
		Message:     msg,
		UserMessage: userMessageTimeout,
		Severity:    SeverityWarning,
		Retryable:   true,
		Cause:       cause,
	})
}

// Remote reports an error returned by the backend.
func Remote(message string, cause error, retryable bool) *AppError {
	if message == "" {
		message = "remote request failed"
	}
	return New(Options{
		Code:        CodeRemoteFailed,
		Message:     message,
		UserMessage: userMessageRemote,
		Retryable:   retryable,
		Cause:       cause,
	})
}

// Unexpected reports a local runtime fault.
func Unexpected(cause error) *AppError {
	return New(Options{
		Code:        CodeUnexpected,
		Message:     cause.Error(),
		UserMessage: userMessageGeneric,
		Cause:       cause,
	})
}

// Unknown reports a value that could not be classified.
func Unknown(raw any) *AppError {
	return New(Options{
		Code:        CodeUnknown,
		Message:     "unknown error",
		UserMessage: userMessageGeneric,
		Cause:       opaque{raw: raw},
	})
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsRetryable reports whether err normalizes to a retryable AppError.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Normalize(err).Retryable
}

// opaque carries a non-error value as a cause.
type opaque struct {
	raw any
}

func (o opaque) Error() string {
	return fmt.Sprintf("%v", o.raw)
}
