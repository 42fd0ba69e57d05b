// Package errors provides standardized error types for pipeline stages.
// This package defines PipelineError for consistent error handling across
// generation, cleaning, partitioning and model fitting, with operation
// context and error wrapping support.
package errors

import (
	stderrors "errors"
	"fmt"
)

// PipelineError represents standardized errors across all pipeline stages
type PipelineError struct {
	Op      string // Operation name (e.g., "Generate", "Impute", "Fit")
	Column  string // Column name if applicable
	Family  string // Model family if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	var msg string
	switch {
	case e.Column != "":
		msg = fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	case e.Family != "":
		msg = fmt.Sprintf("%s operation failed for model '%s': %s", e.Op, e.Family, e.Message)
	default:
		msg = fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *PipelineError) Is(target error) bool {
	if pe, ok := target.(*PipelineError); ok {
		return e.Op == pe.Op && e.Column == pe.Column && e.Family == pe.Family && e.Message == pe.Message
	}
	return false
}

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported column types
func NewUnsupportedTypeError(op, column, typeName string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *PipelineError {
	return &PipelineError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewFitError creates an error for a model family that could not be trained.
func NewFitError(family string, cause error) *PipelineError {
	return &PipelineError{
		Op:      "Fit",
		Family:  family,
		Message: "training failed",
		Cause:   cause,
	}
}

// WrapFit returns err unchanged when it already names family, and wraps it in
// a fit error otherwise.
func WrapFit(family string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if stderrors.As(err, &pe) && pe.Family == family {
		return err
	}
	return NewFitError(family, err)
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *PipelineError {
	return &PipelineError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Predefined error variables for common cases
var (
	// ErrEmptyTable indicates operations on tables without rows
	ErrEmptyTable = &PipelineError{
		Op:      "validation",
		Message: "operation not supported on empty table",
	}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &PipelineError{
		Op:      "validation",
		Message: "arrays must have the same length",
	}
)
