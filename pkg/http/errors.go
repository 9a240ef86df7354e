package http

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrResponseTooLarge is returned when a body exceeds WithMaxResponseBytes.
var ErrResponseTooLarge = errors.New("response body too large")

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a request may succeed when repeated:
// network failures, throttling and server-side errors.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusRequestTimeout ||
			httpErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// IsUnavailable reports whether the remote side could not be reached or
// refused to serve the request for reasons unrelated to its content.
func IsUnavailable(err error) bool {
	if IsRetryable(err) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) &&
		(httpErr.StatusCode == http.StatusUnauthorized ||
			httpErr.StatusCode == http.StatusForbidden ||
			httpErr.StatusCode == http.StatusNotFound)
}
