// Package apperr defines the typed error taxonomy shared across the
// service. Inner layers return these kinds; the HTTP boundary translates
// them to status codes and a uniform error body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the class of failure an error represents.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindProviderTransient Kind = "provider_transient"
	KindProviderPermanent Kind = "provider_permanent"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindStoreUnavailable  Kind = "store_unavailable"
	KindTimeout           Kind = "timeout"
	KindInternal          Kind = "internal"
)

// Error wraps a Kind with a human-readable detail and an optional cause.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Validation builds a ValidationError (422).
func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// NotFound builds a NotFound error (404).
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// Conflict builds a Conflict error (409).
func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

// ProviderTransient builds a retry-candidate provider error.
func ProviderTransient(cause error, format string, args ...any) *Error {
	e := newf(KindProviderTransient, format, args...)
	e.Cause = cause
	return e
}

// ProviderPermanent builds a non-retriable provider error.
func ProviderPermanent(cause error, format string, args ...any) *Error {
	e := newf(KindProviderPermanent, format, args...)
	e.Cause = cause
	return e
}

// ProviderUnavailable builds the error surfaced once retries are exhausted.
func ProviderUnavailable(cause error, format string, args ...any) *Error {
	e := newf(KindProviderUnavailable, format, args...)
	e.Cause = cause
	return e
}

// StoreUnavailable builds a StoreUnavailable error (503).
func StoreUnavailable(cause error, format string, args ...any) *Error {
	e := newf(KindStoreUnavailable, format, args...)
	e.Cause = cause
	return e
}

// Timeout builds a Timeout error (504).
func Timeout(format string, args ...any) *Error { return newf(KindTimeout, format, args...) }

// Internal builds an Internal error (500). Callers should log it with a
// correlation id before returning it to the HTTP boundary.
func Internal(cause error, format string, args ...any) *Error {
	e := newf(KindInternal, format, args...)
	e.Cause = cause
	return e
}

// As extracts an *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode maps a Kind to its HTTP status per §7 of the spec.
func StatusCode(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindProviderTransient, KindProviderPermanent, KindProviderUnavailable:
		return http.StatusBadGateway
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code for the uniform error body.
func Code(err error) string {
	e, ok := As(err)
	if !ok {
		return string(KindInternal)
	}
	return string(e.Kind)
}
