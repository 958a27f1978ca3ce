package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)

	// Validation errors
	ErrInvalidQuery     = errors.New("invalid query")
	ErrInvalidChart     = errors.New("invalid chart request")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Collaborator errors
	ErrAgentFailed = errors.New("query agent failed")
)

// NewNotFoundError builds a not-found error carrying the resource and id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewValidationError builds a validation error for a single field
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidQuery, field, reason)
}

// IsNotFoundError reports whether err is any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError reports whether err is a caller input error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrInvalidChart)
}
