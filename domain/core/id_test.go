package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseDatasetID tests dataset ID parsing
func TestParseDatasetID(t *testing.T) {
	valid := NewDatasetID()

	tests := []struct {
		input    string
		expected DatasetID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"  " + valid.String() + " ", valid, false},
		{"", "", true},
		{"   ", "", true},
		{"42", "", true},
	}

	for _, test := range tests {
		result, err := ParseDatasetID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestNotFoundErrors tests the not-found helpers
func TestNotFoundErrors(t *testing.T) {
	err := NewNotFoundError("dataset", "abc")
	if !IsNotFoundError(err) {
		t.Errorf("Expected %v to be a not-found error", err)
	}
	if !IsNotFoundError(ErrDatasetNotFound) {
		t.Error("Expected ErrDatasetNotFound to be a not-found error")
	}
	if IsNotFoundError(ErrInvalidQuery) {
		t.Error("Expected ErrInvalidQuery not to be a not-found error")
	}
	if !IsValidationError(NewValidationError("query", "empty")) {
		t.Error("Expected validation error to be detected")
	}
}
