package ingestion

import (
	"errors"
	"fmt"
)

// ErrorType is the stable machine-readable tag carried by every ingestion failure
type ErrorType string

const (
	// File-level, fatal
	ErrFileNotFound      ErrorType = "file_not_found"
	ErrFileTooLarge      ErrorType = "file_too_large"
	ErrPasswordProtected ErrorType = "password_protected"
	ErrInvalidFile       ErrorType = "invalid_file"
	ErrOpenError         ErrorType = "open_error"
	ErrNoSheets          ErrorType = "no_sheets"

	// Sheet-level, recovered and recorded
	ErrEmptySheet           ErrorType = "empty_sheet"
	ErrInsufficientData     ErrorType = "insufficient_data"
	ErrLowQualityData       ErrorType = "low_quality_data"
	ErrSheetProcessingError ErrorType = "sheet_processing_error"

	// Aggregate
	ErrNoValidSheets ErrorType = "no_valid_sheets"
	ErrGeneral       ErrorType = "general_error"
)

// Error is a tagged ingestion failure
type Error struct {
	Type        ErrorType
	Message     string
	SheetErrors []SheetError
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a tagged error
func NewError(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// WrapError creates a tagged error around a cause
func WrapError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// ErrorTypeOf extracts the tag from err, falling back to general_error
func ErrorTypeOf(err error) ErrorType {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Type
	}
	return ErrGeneral
}

// Failure is the serialized shape of a failed ingestion
type Failure struct {
	Success     bool         `json:"success"`
	Error       string       `json:"error"`
	ErrorType   ErrorType    `json:"error_type"`
	SheetErrors []SheetError `json:"sheet_errors,omitempty"`
}

// FailureFrom converts any error into its serialized failure shape
func FailureFrom(err error) Failure {
	var ie *Error
	if errors.As(err, &ie) {
		return Failure{
			Error:       ie.Message,
			ErrorType:   ie.Type,
			SheetErrors: ie.SheetErrors,
		}
	}
	return Failure{Error: err.Error(), ErrorType: ErrGeneral}
}
