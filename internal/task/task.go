// Package task defines the tracked entity and its validation rules.
package task

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinTitleLength is the shortest title accepted by create and update intents.
const MinTitleLength = 3

// Task is a single tracked item. The identifier is assigned by the service
// that created it and never changes afterwards.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Draft is the input for creating a task: no identifier, no completion flag.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Toggled returns a copy of t with the completion flag flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// Validate checks the fields a user can edit.
func (t Task) Validate() error {
	return ValidateTitle(t.Title)
}

// Validate checks the draft before it is sent to a service.
func (d Draft) Validate() error {
	return ValidateTitle(d.Title)
}

// ValidationError reports a field rejected locally, before any service call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateTitle enforces the minimum title length, ignoring surrounding whitespace.
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < MinTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("Title must be at least %d characters long.", MinTitleLength),
		}
	}
	return nil
}

// Index returns the position of the task with id, or -1.
func Index(tasks []Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Counts returns the number of open and completed tasks.
func Counts(tasks []Task) (open, done int) {
	for _, t := range tasks {
		if t.Completed {
			done++
			continue
		}
		open++
	}
	return open, done
}
