package core

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable signals that no usable store connection
	// exists. Reads degrade to empty results; writes surface this error.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUnauthenticated signals a protected call without a resolved user.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError identifies malformed input by field. It is surfaced
// verbatim to the caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
