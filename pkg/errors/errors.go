package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned sentinels still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden            = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict             = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrNetwork              = New("NETWORK_ERROR", http.StatusBadGateway, "backend unreachable")
	ErrUpstream             = New("UPSTREAM_ERROR", http.StatusBadGateway, "backend request failed")
	ErrTransitionNotAllowed = New("TRANSITION_NOT_ALLOWED", http.StatusConflict, "payment status transition not allowed")
	ErrMutationInFlight     = New("MUTATION_IN_FLIGHT", http.StatusConflict, "another update is in progress")
	ErrStaleResponse        = New("STALE_RESPONSE", http.StatusConflict, "response superseded by a newer request")
	ErrSuperseded           = New("SUPERSEDED", http.StatusConflict, "request superseded by newer input")
	ErrAlreadyEnrolled      = New("ALREADY_ENROLLED", http.StatusConflict, "already enrolled in this item")
	ErrCacheMiss            = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.AsError()
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Validation builds a validation error carrying per-field messages.
func Validation(message string, fields map[string]string) *Error {
	clone := Clone(ErrValidation, message)
	if len(fields) > 0 {
		clone.Fields = fields
	}
	return clone
}
