package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches (via errors.Is) any *Error carrying a 404.
var ErrNotFound = errors.New("not found")

// Error is returned by every Client call that fails, either because the
// request never completed (StatusCode == 0) or because the server answered
// with a non-2xx status.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("api: %s: %v", e.Message, e.Err)
	case e.StatusCode == 0:
		return "api: " + e.Message
	case e.Err != nil:
		return fmt.Sprintf("api: %d %s: %v", e.StatusCode, e.Message, e.Err)
	default:
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// StatusCode extracts the HTTP status from err, or 0 when there is none.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
