package domain

import "fmt"

// Step is one phase of a breathing exercise.
type Step struct {
	Instruction string `yaml:"instruction"`
	Seconds     int    `yaml:"seconds"`
}

// Exercise is a named, ordered sequence of breathing steps.
// Exercises are owned by the host; the controller keeps a pointer to the
// exercise it is running and never mutates it.
type Exercise struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Steps       []Step   `yaml:"steps"`
	Benefits    []string `yaml:"benefits"`
}

// Validate reports whether the exercise can be run by the controller.
// Returns *InvalidExerciseError when it has no steps or a step has a
// non-positive duration.
func (e *Exercise) Validate() error {
	if e == nil {
		return &InvalidExerciseError{Reason: "exercise is nil"}
	}
	if len(e.Steps) == 0 {
		return &InvalidExerciseError{ExerciseID: e.ID, Reason: "exercise has no steps"}
	}
	for i, s := range e.Steps {
		if s.Seconds <= 0 {
			return &InvalidExerciseError{
				ExerciseID: e.ID,
				Reason:     fmt.Sprintf("step %d (%s) has non-positive duration %d", i, s.Instruction, s.Seconds),
			}
		}
	}
	return nil
}

// CycleSeconds returns the length of one full pass through every step.
func (e *Exercise) CycleSeconds() int {
	total := 0
	for _, s := range e.Steps {
		total += s.Seconds
	}
	return total
}

// Pattern returns the step durations joined by dashes, e.g. "4-7-8".
func (e *Exercise) Pattern() string {
	var out string
	for i, s := range e.Steps {
		if i > 0 {
			out += "-"
		}
		out += fmt.Sprint(s.Seconds)
	}
	return out
}
