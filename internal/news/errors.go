package news

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProviderUnavailable covers network failures and non-2xx responses from a provider
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderMalformedResponse is returned when a provider payload cannot be decoded
	ErrProviderMalformedResponse = errors.New("provider returned a malformed response")
	// ErrStoreUnavailable wraps every persistence failure
	ErrStoreUnavailable = errors.New("article store unavailable")
	// ErrInvalidFilter is returned before any provider or store call is made
	ErrInvalidFilter = errors.New("invalid filter")
)

// FieldError describes one rejected filter field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the field errors of a rejected filter.
// It unwraps to ErrInvalidFilter.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidFilter, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidFilter
}

// invalid builds a single-field validation error
func invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
