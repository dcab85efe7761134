package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/catalog"
	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/exercises"
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "List available breathing exercises",
	Long:  `Display all breathing exercises, built-in and user-defined. User exercises with the same id replace the built-in one.`,
	RunE:  runExercises,
}

func init() {
	rootCmd.AddCommand(exercisesCmd)
}

func runExercises(cmd *cobra.Command, _ []string) error {
	userDir := config.ExpandPath(cfg.Exercises.UserDir)
	registry, err := exercises.NewRegistry(catalog.ExercisesFS(), userDir)
	if err != nil {
		return fmt.Errorf("loading exercises: %w", err)
	}
	printExercises(cmd.OutOrStdout(), registry, userDir)
	return nil
}

func printExercises(w io.Writer, registry *exercises.Registry, userDir string) {
	section := func(title string, entries []exercises.Entry) {
		fmt.Fprintln(w, title)
		if len(entries) == 0 {
			fmt.Fprintln(w, "  (none)")
			return
		}
		width := maxIDLen(entries)
		for _, e := range entries {
			fmt.Fprintf(w, "  %-*s  %-9s %s\n", width, e.Exercise.ID, e.Exercise.Pattern(), e.Exercise.Name)
		}
	}

	section("Built-in Exercises:", registry.ListBySource(exercises.SourceBuiltIn))
	fmt.Fprintln(w)
	section(fmt.Sprintf("User Exercises (%s):", userDir), registry.ListBySource(exercises.SourceUser))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start one with 'breathe run <id>'")
}

// maxIDLen returns the length of the longest exercise ID in the slice.
func maxIDLen(entries []exercises.Entry) int {
	n := 0
	for _, e := range entries {
		n = max(n, len(e.Exercise.ID))
	}
	return n
}
