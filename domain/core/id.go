package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	DatasetID ID
	QueryID   ID
)

func (id DatasetID) String() string { return ID(id).String() }
func (id QueryID) String() string   { return ID(id).String() }

// NewDatasetID creates a time-ordered dataset identifier
func NewDatasetID() DatasetID { return DatasetID(NewID()) }

// NewQueryID creates a time-ordered query identifier
func NewQueryID() QueryID { return QueryID(NewID()) }

// ParseDatasetID parses a string into DatasetID. The value must be a UUID.
func ParseDatasetID(s string) (DatasetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid dataset ID %q: %w", s, err)
	}
	return DatasetID(parsed.String()), nil
}
