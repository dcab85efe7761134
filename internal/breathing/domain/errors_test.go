package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvalidExerciseError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *InvalidExerciseError
		expected string
	}{
		{
			name:     "basic case",
			err:      &InvalidExerciseError{ExerciseID: "box", Reason: "exercise has no steps"},
			expected: `invalid exercise "box": exercise has no steps`,
		},
		{
			name:     "empty id",
			err:      &InvalidExerciseError{Reason: "exercise is nil"},
			expected: `invalid exercise "": exercise is nil`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestInvalidExerciseError_ImplementsError(t *testing.T) {
	var err error = &InvalidExerciseError{ExerciseID: "x", Reason: "y"}
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "invalid exercise")
}
