package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any *Error carrying a 404 status via errors.Is
var ErrNotFound = errors.New("not found")

// Error is returned when an upstream request fails. StatusCode is zero when
// the request never produced a response.
type Error struct {
	StatusCode int
	Message    string
	URL        string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request to %s failed: %s", e.URL, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, e.Message)
}

// Unwrap exposes the underlying network error, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a 404 as ErrNotFound
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is an upstream 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode extracts the HTTP status from err, or 0 if it carries none
func StatusCode(err error) int {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.StatusCode
	}
	return 0
}
