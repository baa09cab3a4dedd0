package voiceplatform

import (
	"errors"
	"fmt"
)

// APIError is a failed call to the voice platform. Timeout is set, and
// StatusCode is zero, when no response arrived within the client timeout.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *APIError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("voice platform %s %s timed out", e.Method, e.Path)
	}
	if e.Body == "" {
		return fmt.Sprintf("voice platform %s %s returned %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("voice platform %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
