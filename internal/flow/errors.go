package flow

import (
	"errors"
	"fmt"

	"github.com/idilsaglam/itemdesk/internal/api"
)

// ValidationError is a client-side rejection of a draft. It never reaches
// the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrEmptyTitle is returned for drafts whose title is blank after trimming.
var ErrEmptyTitle = &ValidationError{Field: "title", Reason: "must not be empty"}

// reason renders the part of a transport failure worth showing a user.
func reason(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch {
	case apiErr.StatusCode == 0:
		return "backend unreachable"
	case apiErr.Message != "":
		return apiErr.Message
	default:
		return fmt.Sprintf("status %d", apiErr.StatusCode)
	}
}
