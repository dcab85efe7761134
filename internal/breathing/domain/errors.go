package domain

import "fmt"

// InvalidExerciseError indicates that an exercise cannot be started,
// typically because it has no steps.
type InvalidExerciseError struct {
	ExerciseID string
	Reason     string
}

// Error implements the error interface.
func (e *InvalidExerciseError) Error() string {
	return fmt.Sprintf("invalid exercise %q: %s", e.ExerciseID, e.Reason)
}
