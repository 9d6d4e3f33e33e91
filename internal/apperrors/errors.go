// Package apperrors defines the typed error hierarchy shared by the
// fetch, processing, and HTTP layers.
//
// Every error carries a machine-readable kind, a human message, a UTC
// timestamp, and an optional details map. Details are sanitized before
// they are surfaced in a response so that credentials never leak into
// an error envelope.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind categorizes an error for status-code mapping and clients.
type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR"
	KindDataFetch   Kind = "DATA_FETCH_ERROR"
	KindCalculation Kind = "CALCULATION_ERROR"
	KindSystem      Kind = "SYSTEM_ERROR"
)

// sensitiveKeys are stripped from detail maps before surfacing.
var sensitiveKeys = map[string]struct{}{
	"password": {},
	"token":    {},
	"key":      {},
	"secret":   {},
	"api_key":  {},
}

// Error is the shared error type for the options analytics pipeline.
type Error struct {
	Kind      Kind
	Message   string
	Details   map[string]any
	Timestamp time.Time
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

// SafeDetails returns a copy of the details map with sensitive keys
// removed. Returns nil when nothing survives, so callers can use the
// result directly in a sparse JSON envelope.
func (e *Error) SafeDetails() map[string]any {
	if len(e.Details) == 0 {
		return nil
	}
	safe := make(map[string]any, len(e.Details))
	for k, v := range e.Details {
		if _, sensitive := sensitiveKeys[k]; sensitive {
			continue
		}
		safe[k] = v
	}
	if len(safe) == 0 {
		return nil
	}
	return safe
}

// New constructs an Error of the given kind.
func New(kind Kind, message string, details map[string]any) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap constructs an Error of the given kind around a cause. The cause
// is recorded both for unwrapping and in the details map.
func Wrap(kind Kind, message string, cause error, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	if cause != nil {
		details["original_error"] = cause.Error()
	}
	e := New(kind, message, details)
	e.cause = cause
	return e
}

// Validation reports a bad user input for a named field.
func Validation(message, field string, value any) *Error {
	return New(KindValidation, message, map[string]any{
		"field": field,
		"value": fmt.Sprintf("%v", value),
	})
}

// DataFetch reports a provider failure for a source and ticker.
func DataFetch(message, source, ticker string, cause error) *Error {
	return Wrap(KindDataFetch, message, cause, map[string]any{
		"source": source,
		"ticker": ticker,
	})
}

// Calculation reports a processing failure after data was fetched.
func Calculation(message, calculationType string, cause error) *Error {
	return Wrap(KindCalculation, message, cause, map[string]any{
		"calculation_type": calculationType,
	})
}

// System wraps anything unanticipated.
func System(message string, cause error) *Error {
	return Wrap(KindSystem, message, cause, nil)
}

// HTTPStatus maps an error kind to a response status code. Bad input is
// the caller's fault; everything else is ours.
func HTTPStatus(kind Kind) int {
	if kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// From normalizes any error into an *Error, wrapping unknown types as
// SYSTEM_ERROR so the response envelope is always well formed.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return System(fmt.Sprintf("internal server error: %v", err), err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
