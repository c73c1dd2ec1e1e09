package api

import (
	"errors"
	"fmt"
)

// APIError is a service error decoded from a non-2xx response. Code carries
// the service's machine-readable error code when the body provides one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// IsRateLimited returns true if the error indicates rate limiting.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if the error is a server-side error.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsNotFound returns true if the error indicates a missing entity.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// AsAPIError unwraps err into an APIError when one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// isRetryable determines if a request should be retried based on the error.
func isRetryable(err error) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.IsRateLimited() || apiErr.IsServerError()
	}
	return false
}
