package errors

import (
	"fmt"
	"net/http"
)

// FetchError describes a failed call to the course platform backend.
// HTTPStatus is zero when the request never produced a response.
type FetchError struct {
	Method     string
	URL        string
	HTTPStatus int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.HTTPStatus == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: status %d: %s: %v", e.Method, e.URL, e.HTTPStatus, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.HTTPStatus)
}

// Unwrap returns the transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Network reports whether the request failed before a response arrived.
func (e *FetchError) Network() bool {
	return e.HTTPStatus == 0
}

// Retryable reports whether repeating an idempotent request may succeed.
func (e *FetchError) Retryable() bool {
	return e.Network() || e.HTTPStatus >= http.StatusInternalServerError || e.HTTPStatus == http.StatusTooManyRequests
}

// AsError converts the failure into the gateway error taxonomy.
// Client errors keep the backend status, server errors become 502.
func (e *FetchError) AsError() *Error {
	if e.Network() {
		return Wrap(e, ErrNetwork.Code, ErrNetwork.Status, ErrNetwork.Message)
	}
	if e.HTTPStatus == http.StatusNotFound {
		return Wrap(e, ErrNotFound.Code, ErrNotFound.Status, messageOr(e.Message, ErrNotFound.Message))
	}
	status := e.HTTPStatus
	if status >= http.StatusInternalServerError || status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	return Wrap(e, ErrUpstream.Code, status, messageOr(e.Message, ErrUpstream.Message))
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
