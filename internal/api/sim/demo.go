package sim

import "github.com/five82/tally/internal/task"

// Demo returns a small collection of coding chores for first runs.
func Demo() []task.Task {
	return []task.Task{
		{
			ID:          5,
			Title:       "Document public APIs",
			Description: "Add doc comments and update README usage examples.",
		},
		{
			ID:          4,
			Title:       "Improve accessibility",
			Description: "Add labels to controls and ensure proper keyboard navigation.",
			Completed:   true,
		},
		{
			ID:          3,
			Title:       "Set up CI pipeline",
			Description: "Run lint, vet and tests on every pull request.",
		},
		{
			ID:          2,
			Title:       "Write unit tests for API layer",
			Description: "Cover create, update and delete with edge cases.",
		},
		{
			ID:          1,
			Title:       "Refactor legacy module",
			Description: "Break the legacy helpers into smaller, testable functions.",
			Completed:   true,
		},
	}
}
