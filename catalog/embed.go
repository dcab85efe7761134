// Package catalog embeds the built-in breathing exercises.
//
// Exercises live in YAML files under exercises/. Each file holds an
// "exercises" list in the same format accepted from the user's exercise
// directory, so built-in and user exercises share one loader.
package catalog

import (
	"embed"
	"io/fs"
)

//go:embed exercises/*.yaml
var exerciseFiles embed.FS

// ExercisesFS returns the embedded filesystem rooted at the exercises directory.
func ExercisesFS() fs.FS {
	sub, err := fs.Sub(exerciseFiles, "exercises")
	if err != nil {
		// fs.Sub only fails for invalid paths; "exercises" is a constant.
		panic(err)
	}
	return sub
}
