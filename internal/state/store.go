package state

import (
	"sync"
	"time"

	"github.com/five82/tally/internal/task"
)

// Phase is the renderable state of the task list.
type Phase int

const (
	// PhaseLoading is shown until the first load finishes.
	PhaseLoading Phase = iota
	// PhaseError means the collection is empty and the last call failed.
	PhaseError
	// PhaseEmpty means the collection loaded and has zero tasks.
	PhaseEmpty
	// PhaseReady means there are tasks to show.
	PhaseReady
)

// Snapshot is the view of the store handed to presentation.
type Snapshot struct {
	Tasks       []task.Task
	Loading     bool
	Loaded      bool
	LastError   error
	Status      string // in-progress message, empty when idle
	LastUpdated time.Time
}

// Phase reports which of the list states should be rendered.
func (s Snapshot) Phase() Phase {
	switch {
	case s.Loading || (!s.Loaded && s.LastError == nil):
		return PhaseLoading
	case len(s.Tasks) == 0 && s.LastError != nil:
		return PhaseError
	case len(s.Tasks) == 0:
		return PhaseEmpty
	default:
		return PhaseReady
	}
}

// Store is the single source of truth for the current task collection.
type Store struct {
	mu          sync.RWMutex
	snapshot    Snapshot
	statusToken uint64
}

// BeginLoad marks a list call as outstanding.
func (s *Store) BeginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Loading = true
}

// FinishLoad ends a load. On success the collection is replaced and the
// error cleared; on failure the collection is kept and the error recorded.
func (s *Store) FinishLoad(tasks []task.Task, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Loading = false
	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		return
	}
	s.snapshot.Tasks = ReplaceAll(tasks)
	s.snapshot.Loaded = true
	s.snapshot.LastError = nil
}

// SetTasks replaces the whole collection.
func (s *Store) SetTasks(tasks []task.Task) {
	s.apply(func(cur []task.Task) []task.Task { return ReplaceAll(tasks) })
}

// AddTask prepends a confirmed new task.
func (s *Store) AddTask(t task.Task) {
	s.apply(func(cur []task.Task) []task.Task { return Prepend(cur, t) })
}

// UpdateTask replaces the task with the same identifier.
func (s *Store) UpdateTask(t task.Task) {
	s.apply(func(cur []task.Task) []task.Task { return ReplaceByID(cur, t) })
}

// DeleteTask removes the task with id.
func (s *Store) DeleteTask(id int64) {
	s.apply(func(cur []task.Task) []task.Task { return RemoveByID(cur, id) })
}

// Clear empties the collection.
func (s *Store) Clear() {
	s.apply(func([]task.Task) []task.Task { return ClearAll() })
}

func (s *Store) apply(fn func([]task.Task) []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Tasks = fn(s.snapshot.Tasks)
	s.snapshot.LastUpdated = time.Now()
}

// SetError records the latest error message for display.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
}

// SetStatus shows an in-progress message and returns a token for ClearStatus.
func (s *Store) SetStatus(message string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusToken++
	s.snapshot.Status = message
	return s.statusToken
}

// ClearStatus removes the message set with token. A newer message set by
// another operation is left in place.
func (s *Store) ClearStatus(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.statusToken {
		return
	}
	s.snapshot.Status = ""
}

// Find returns the task with id from the current collection.
func (s *Store) Find(id int64) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := task.Index(s.snapshot.Tasks, id); i >= 0 {
		return s.snapshot.Tasks[i], true
	}
	return task.Task{}, false
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tasks = cloneTasks(s.snapshot.Tasks)
	return snap
}

func cloneTasks(tasks []task.Task) []task.Task {
	if tasks == nil {
		return nil
	}
	dup := make([]task.Task, len(tasks))
	copy(dup, tasks)
	return dup
}
