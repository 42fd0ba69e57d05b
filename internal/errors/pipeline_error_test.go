package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/paveg/churnlab/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *errors.PipelineError
		expected string
	}{
		{
			name:     "Error with column",
			err:      errors.NewColumnNotFoundError("Impute", "Age"),
			expected: "Impute operation failed on column 'Age': column does not exist",
		},
		{
			name: "Error with family",
			err: &errors.PipelineError{
				Op:      "Fit",
				Family:  "Random Forest",
				Message: "empty fold",
			},
			expected: "Fit operation failed for model 'Random Forest': empty fold",
		},
		{
			name:     "Error without column",
			err:      errors.NewInvalidInputError("Split", "ratios must sum to 1"),
			expected: "Split operation failed: ratios must sum to 1",
		},
		{
			name:     "Error with cause",
			err:      errors.NewFitError("XGBoost", stderrors.New("no rows")),
			expected: "Fit operation failed for model 'XGBoost': training failed: no rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := stderrors.New("underlying error")
	err := errors.NewInternalError("Encode", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, fmt.Errorf("stage: %w", err), cause)
}

func TestPipelineError_Is(t *testing.T) {
	err1 := errors.NewValidationError("Generate", "", "size must be positive")
	err2 := errors.NewValidationError("Generate", "", "size must be positive")
	err3 := errors.NewValidationError("Generate", "", "rate out of range")

	assert.ErrorIs(t, err1, err2)
	assert.NotErrorIs(t, err1, err3)
	assert.NotErrorIs(t, err1, stderrors.New("size must be positive"))
}

func TestPipelineError_As(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", errors.NewFitError("Gradient Boosting", nil))

	var pe *errors.PipelineError
	assert.True(t, stderrors.As(wrapped, &pe))
	assert.Equal(t, "Gradient Boosting", pe.Family)
}

func TestWrapFit(t *testing.T) {
	assert.NoError(t, errors.WrapFit("XGBoost", nil))

	own := errors.NewFitError("XGBoost", stderrors.New("diverged"))
	assert.Same(t, own, errors.WrapFit("XGBoost", own))

	other := errors.NewFitError("Random Forest", nil)
	wrapped := errors.WrapFit("XGBoost", other)
	var pe *errors.PipelineError
	require.True(t, stderrors.As(wrapped, &pe))
	assert.Equal(t, "XGBoost", pe.Family)
	assert.ErrorIs(t, wrapped, other)
}
