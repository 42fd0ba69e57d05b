// Package validation provides input validation utilities for pipeline stages.
// This package implements a small validation framework with reusable
// validators for column existence, length consistency, probabilities and
// positive sizes.
package validation

import (
	"fmt"
	"math"

	"github.com/paveg/churnlab/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the table
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// RateValidator validates that a probability lies in [0, 1]
type RateValidator struct {
	name  string
	value float64
	op    string
}

// NewRateValidator creates a validator for a named rate
func NewRateValidator(name string, value float64, op string) *RateValidator {
	return &RateValidator{name: name, value: value, op: op}
}

// Validate checks the rate bounds; NaN is rejected
func (v *RateValidator) Validate() error {
	if math.IsNaN(v.value) || v.value < 0 || v.value > 1 {
		return errors.NewValidationError(v.op, "", fmt.Sprintf("%s must be between 0 and 1, got %g", v.name, v.value))
	}
	return nil
}

// PositiveValidator validates that a count is strictly positive
type PositiveValidator struct {
	name  string
	value int
	op    string
}

// NewPositiveValidator creates a validator for a named count
func NewPositiveValidator(name string, value int, op string) *PositiveValidator {
	return &PositiveValidator{name: name, value: value, op: op}
}

// Validate checks the count is positive
func (v *PositiveValidator) Validate() error {
	if v.value <= 0 {
		return errors.NewValidationError(v.op, "", fmt.Sprintf("%s must be positive, got %d", v.name, v.value))
	}
	return nil
}

// EmptyTableValidator validates operations on empty tables
type EmptyTableValidator struct {
	df ColumnProvider
	op string
}

// NewEmptyTableValidator creates a validator for empty table checks
func NewEmptyTableValidator(df ColumnProvider, op string) *EmptyTableValidator {
	return &EmptyTableValidator{
		df: df,
		op: op,
	}
}

// Validate checks if the table is empty when the operation requires rows
func (v *EmptyTableValidator) Validate() error {
	if v.df.Len() == 0 {
		return &errors.PipelineError{
			Op:      v.op,
			Message: "operation not supported on empty table",
		}
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateRate is a convenience function for rate validation
func ValidateRate(name string, value float64, op string) error {
	return NewRateValidator(name, value, op).Validate()
}

// ValidatePositive is a convenience function for count validation
func ValidatePositive(name string, value int, op string) error {
	return NewPositiveValidator(name, value, op).Validate()
}

// ValidateNotEmpty is a convenience function for empty table validation
func ValidateNotEmpty(df ColumnProvider, op string) error {
	return NewEmptyTableValidator(df, op).Validate()
}
