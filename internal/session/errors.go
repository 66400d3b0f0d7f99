package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by AuthHeaders before a successful login.
	ErrNotAuthenticated = errors.New("session is not authenticated")

	// ErrInvalidBaseURL is returned when the configured base URL cannot be parsed
	// or is not absolute.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// HTTPStatusError reports a response with a 4xx or 5xx status code.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int

	// Body is the (possibly truncated) response body.
	Body []byte
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// IsStatus reports whether err is an *HTTPStatusError with the given status code.
func IsStatus(err error, code int) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == code
	}
	return false
}
