// Package fault provides structured error types shared by the catalog
// client, the plan generation client, and the enrichment engine.
//
// Every failure crossing a package boundary carries a Code so callers can
// distinguish "the network is down" from "the remote said no" without
// string matching.
package fault

import (
	"errors"
	"fmt"
)

// Code categorizes an error for routing and retry decisions.
type Code string

const (
	// CodeConnection covers transport-level failures: DNS, refused
	// connections, timeouts. Always worth retrying the whole operation.
	CodeConnection Code = "CONNECTION_ERROR"

	// CodeBadStatus is a non-200, non-404 HTTP response. Permanent for
	// that call; the status code rides in Metadata["status"].
	CodeBadStatus Code = "BAD_STATUS"

	// CodeNotFound is a 404 on a known-ID lookup. Signals "try a
	// different match", not "the service is broken".
	CodeNotFound Code = "NOT_FOUND"

	// CodeParse is generative output that is not valid JSON even after
	// repair.
	CodeParse Code = "PARSE_ERROR"

	// CodeValidation is missing or malformed input rejected before any
	// network call.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeReconcile is a reference-data upsert failure. Always swallowed
	// and logged by the enrichment engine, never propagated.
	CodeReconcile Code = "RECONCILE_ERROR"

	// CodeGeneration is a generative-API refusal: safety filtering, an
	// empty candidate list, or a remote-side generation failure.
	CodeGeneration Code = "GENERATION_ERROR"

	// CodeInternal is everything else.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is the structured error type used across the module.
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Retryable bool
	Metadata  map[string]string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two faults by code, so sentinels compare with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithMessage returns a copy with a replaced message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Cause: e.Cause, Retryable: e.Retryable, Metadata: e.Metadata}
}

// WithMetadata returns a copy with an added metadata entry.
func (e *Error) WithMetadata(key, value string) *Error {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	return &Error{Code: e.Code, Message: e.Message, Cause: e.Cause, Retryable: e.Retryable, Metadata: meta}
}

// Sentinels for errors.Is checks.
var (
	ErrConnection = &Error{Code: CodeConnection, Message: "connection error", Retryable: true}
	ErrBadStatus  = &Error{Code: CodeBadStatus, Message: "unexpected status code", Retryable: false}
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found", Retryable: false}
	ErrParse      = &Error{Code: CodeParse, Message: "parse error", Retryable: false}
	ErrValidation = &Error{Code: CodeValidation, Message: "validation error", Retryable: false}
	ErrReconcile  = &Error{Code: CodeReconcile, Message: "reference data reconciliation failed", Retryable: true}
	ErrGeneration = &Error{Code: CodeGeneration, Message: "generation failed", Retryable: false}
	ErrInternal   = &Error{Code: CodeInternal, Message: "internal error", Retryable: false}
)

// New creates a non-retryable fault.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a non-retryable fault with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps a cause in a non-retryable fault.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WrapRetryable wraps a cause in a retryable fault.
func WrapRetryable(cause error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Retryable: true}
}

// IsRetryable reports whether err carries a retryable fault.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetCode extracts the fault code, defaulting to CodeInternal for plain
// errors.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
