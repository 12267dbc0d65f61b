package query

import (
	"errors"
	"fmt"
)

// ValidationError is returned for list and projection input that can be
// rejected without touching storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// The page messages are part of the public API and kept verbatim.
var (
	ErrInvalidPageSize   = &ValidationError{Field: "pageSize", Message: "Page size invalid."}
	ErrInvalidPageNumber = &ValidationError{Field: "pageNumber", Message: "Page mumber invalid."}
	ErrInvalidSortOrder  = &ValidationError{Field: "sortOrder", Message: "Sort order invalid."}
)

func unknownProperty(param, name string) *ValidationError {
	return &ValidationError{
		Field:   param,
		Message: fmt.Sprintf("Unknown property '%s'.", name),
	}
}

func invalidValue(name string, kind Kind, value string) *ValidationError {
	return &ValidationError{
		Field:   name,
		Message: fmt.Sprintf("Invalid %s value '%s' for property '%s'.", kind, value, name),
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
