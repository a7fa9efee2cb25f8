// Package api defines the backend-agnostic task service contract.
// The synchronization layer only talks to this interface, so the simulated
// service can be swapped for the HTTP, MySQL or Google Tasks backends.
package api

import (
	"context"
	"errors"

	"github.com/five82/tally/internal/task"
)

// ErrTransient is the generic failure returned by an unreliable backend.
// A call that fails with it has not changed the backend's state.
var ErrTransient = errors.New("API request failed! Please try again.")

// ErrUnavailable means the backend could not be reached at all.
var ErrUnavailable = errors.New("task backend unavailable")

// Service is the task backend.
//
// Update and Delete never report a missing identifier: updating an unknown
// task returns the given task unchanged, deleting one returns its id.
type Service interface {
	// List returns the full collection, newest first.
	List(ctx context.Context) ([]task.Task, error)

	// Create stores a new open task and returns it with its assigned id.
	Create(ctx context.Context, draft task.Draft) (task.Task, error)

	// Update replaces the stored task with the same id verbatim.
	Update(ctx context.Context, t task.Task) (task.Task, error)

	// Delete removes the task with id if present and returns id.
	Delete(ctx context.Context, id int64) (int64, error)
}
