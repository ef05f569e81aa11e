package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a backend API error with the HTTP status the backend answered with.
// A *Error means the backend was reached and responded; transport failures
// (connection refused, timeout, malformed body) are returned as plain errors,
// so callers can tell "the backend said no" from "the backend is unreachable".
type Error struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: %s (status %d)", e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("backend %s: status %d", e.Endpoint, e.Status)
}

// IsNotFound reports whether err is a backend response saying the requested
// record does not exist
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsBackendError reports whether err carries a backend HTTP response,
// as opposed to a transport-level failure
func IsBackendError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
