package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fourSevenEight() *Exercise {
	return &Exercise{
		ID:   "4-7-8",
		Name: "4-7-8 Breathing",
		Steps: []Step{
			{Instruction: "Inhale", Seconds: 4},
			{Instruction: "Hold", Seconds: 7},
			{Instruction: "Exhale", Seconds: 8},
		},
	}
}

func TestExercise_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ex      *Exercise
		wantErr string
	}{
		{
			name: "valid exercise",
			ex:   fourSevenEight(),
		},
		{
			name:    "nil exercise",
			ex:      nil,
			wantErr: "exercise is nil",
		},
		{
			name:    "no steps",
			ex:      &Exercise{ID: "empty"},
			wantErr: "exercise has no steps",
		},
		{
			name: "zero second step",
			ex: &Exercise{ID: "bad", Steps: []Step{
				{Instruction: "Inhale", Seconds: 4},
				{Instruction: "Hold", Seconds: 0},
			}},
			wantErr: "step 1 (Hold) has non-positive duration 0",
		},
		{
			name:    "negative seconds",
			ex:      &Exercise{ID: "neg", Steps: []Step{{Instruction: "Inhale", Seconds: -3}}},
			wantErr: "non-positive duration -3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ex.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)

			var invalid *InvalidExerciseError
			require.True(t, errors.As(err, &invalid))
		})
	}
}

func TestExercise_CycleSeconds(t *testing.T) {
	require.Equal(t, 19, fourSevenEight().CycleSeconds())
	require.Equal(t, 0, (&Exercise{}).CycleSeconds())
}

func TestExercise_Pattern(t *testing.T) {
	require.Equal(t, "4-7-8", fourSevenEight().Pattern())
	require.Equal(t, "5", (&Exercise{Steps: []Step{{Seconds: 5}}}).Pattern())
}
