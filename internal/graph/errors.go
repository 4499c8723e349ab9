package graph

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the remote API. The body is kept
// verbatim so callers can log the platform's own diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graph: remote returned %d", e.StatusCode)
	}
	return fmt.Sprintf("graph: remote returned %d: %s", e.StatusCode, e.Body)
}

// TransportError is a network-level failure: the request never produced an
// HTTP response.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("graph: %s: transport failure: %v", e.Op, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a malformed response body.
type DecodeError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("graph: %s: decode response: %v", e.Op, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *DecodeError) Unwrap() error { return e.Err }

// IsAuthFailure reports whether err is a 401 from the remote, i.e. the
// bearer token was rejected. Callers use this to trigger one
// invalidate-and-retry cycle on the token provider.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the remote.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
