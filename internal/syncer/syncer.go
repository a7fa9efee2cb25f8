// Package syncer mediates between UI intents, the task service and the
// state container. Local state only changes after the service confirmed a
// call; failures are recorded, announced and returned to the caller.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/task"
)

const defaultStatusTimeout = 3 * time.Second

// Operation labels, shown in status messages and failure titles.
const (
	LabelAdd    = "adding task"
	LabelUpdate = "updating task"
	LabelDelete = "deleting task"
)

var (
	ErrServiceNil = errors.New("task service is nil")
	ErrStoreNil   = errors.New("state store is nil")
)

// Options configure a Syncer.
type Options struct {
	// StatusTimeout hides the in-progress message even if the call is still
	// outstanding. Zero uses 3s.
	StatusTimeout time.Duration

	// Notifier receives success and failure notifications. Nil discards them.
	Notifier Notifier

	// SerializePerTask runs intents on the same task one at a time. Without
	// it, concurrent edits of one task race and the last call to finish wins.
	SerializePerTask bool
}

// Syncer exposes the four intents plus the initial load.
type Syncer struct {
	svc           api.Service
	store         *state.Store
	notifier      Notifier
	statusTimeout time.Duration
	locks         *keyedMutex
}

// New wires a Syncer to a service and a store.
func New(svc api.Service, store *state.Store, opts Options) (*Syncer, error) {
	if svc == nil {
		return nil, ErrServiceNil
	}
	if store == nil {
		return nil, ErrStoreNil
	}
	s := &Syncer{
		svc:           svc,
		store:         store,
		notifier:      opts.Notifier,
		statusTimeout: opts.StatusTimeout,
	}
	if s.notifier == nil {
		s.notifier = discard{}
	}
	if s.statusTimeout <= 0 {
		s.statusTimeout = defaultStatusTimeout
	}
	if opts.SerializePerTask {
		s.locks = newKeyedMutex()
	}
	return s, nil
}

// Load fetches the full collection and replaces the store's tasks. On
// failure the error is recorded and the collection is left as it was.
func (s *Syncer) Load(ctx context.Context) error {
	opID := uuid.NewString()
	s.store.BeginLoad()
	tasks, err := s.svc.List(ctx)
	s.store.FinishLoad(tasks, err)
	if err != nil {
		log.Printf("syncer: op=%s action=load err=%q", opID, err)
		s.notifier.Notify(Notification{ID: opID, Kind: KindFailure, Title: "Error fetching tasks", Detail: err.Error()})
		return fmt.Errorf("fetching tasks: %w", err)
	}
	log.Printf("syncer: op=%s action=load count=%d", opID, len(tasks))
	return nil
}

// Create validates the draft, creates it remotely and prepends the result.
func (s *Syncer) Create(ctx context.Context, draft task.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	return s.run(ctx, LabelAdd, "Task added successfully", func(ctx context.Context) error {
		created, err := s.svc.Create(ctx, draft)
		if err != nil {
			return err
		}
		s.store.AddTask(created)
		return nil
	})
}

// Update validates t and replaces the stored task with the service's answer.
func (s *Syncer) Update(ctx context.Context, t task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	defer s.lock(t.ID)()
	return s.update(ctx, t)
}

// Toggle flips the completion flag of the task with id. An id that is not
// in the store is ignored.
func (s *Syncer) Toggle(ctx context.Context, id int64) error {
	defer s.lock(id)()
	current, ok := s.store.Find(id)
	if !ok {
		return nil
	}
	return s.update(ctx, current.Toggled())
}

// Delete removes the task remotely, then locally.
func (s *Syncer) Delete(ctx context.Context, id int64) error {
	defer s.lock(id)()
	return s.run(ctx, LabelDelete, "Task deleted successfully", func(ctx context.Context) error {
		deleted, err := s.svc.Delete(ctx, id)
		if err != nil {
			return err
		}
		s.store.DeleteTask(deleted)
		return nil
	})
}

func (s *Syncer) update(ctx context.Context, t task.Task) error {
	return s.run(ctx, LabelUpdate, "Task updated successfully", func(ctx context.Context) error {
		updated, err := s.svc.Update(ctx, t)
		if err != nil {
			return err
		}
		s.store.UpdateTask(updated)
		return nil
	})
}

// run announces the operation, performs call and reports the outcome.
func (s *Syncer) run(ctx context.Context, label, success string, call func(context.Context) error) error {
	opID := uuid.NewString()
	token := s.store.SetStatus(fmt.Sprintf("Please wait, %s...", label))
	timer := time.AfterFunc(s.statusTimeout, func() { s.store.ClearStatus(token) })
	defer func() {
		timer.Stop()
		s.store.ClearStatus(token)
	}()

	log.Printf("syncer: op=%s action=%q start", opID, label)
	if err := call(ctx); err != nil {
		s.store.SetError(err)
		log.Printf("syncer: op=%s action=%q err=%q", opID, label, err)
		s.notifier.Notify(Notification{ID: opID, Kind: KindFailure, Title: "Error: " + label, Detail: err.Error()})
		return fmt.Errorf("%s: %w", label, err)
	}
	log.Printf("syncer: op=%s action=%q ok", opID, label)
	s.notifier.Notify(Notification{ID: opID, Kind: KindSuccess, Title: success})
	return nil
}

func (s *Syncer) lock(id int64) func() {
	if s.locks == nil {
		return func() {}
	}
	return s.locks.Lock(id)
}
