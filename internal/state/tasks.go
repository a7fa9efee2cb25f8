package state

import "github.com/five82/tally/internal/task"

// The functions below are the container's transformations. Each returns a
// fresh slice and leaves its input untouched, so a consumer holding an
// earlier collection can detect change by comparing slices.

// ReplaceAll returns a copy of tasks with duplicate identifiers dropped.
func ReplaceAll(tasks []task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if task.Index(out, t.ID) >= 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Prepend returns tasks with t at the front. An existing entry with the
// same identifier is dropped so identifiers stay unique.
func Prepend(tasks []task.Task, t task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks)+1)
	out = append(out, t)
	for _, existing := range tasks {
		if existing.ID == t.ID {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// ReplaceByID returns tasks with the entry matching t.ID replaced by t.
func ReplaceByID(tasks []task.Task, t task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, existing := range tasks {
		if existing.ID == t.ID {
			out[i] = t
			continue
		}
		out[i] = existing
	}
	return out
}

// RemoveByID returns tasks without the entry matching id.
func RemoveByID(tasks []task.Task, id int64) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, existing := range tasks {
		if existing.ID == id {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// ClearAll returns an empty collection.
func ClearAll() []task.Task {
	return []task.Task{}
}
