// Package sim provides an in-memory task service with simulated network
// latency and random transient failures.
package sim

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/task"
)

const (
	defaultFailureRate = 0.10
	defaultListDelay   = 500 * time.Millisecond
	defaultDelay       = time.Second
)

// Ensure Service implements api.Service at compile time.
var _ api.Service = (*Service)(nil)

// Options configure latency, failure injection and initial data.
// New uses the values verbatim: a zero Options gives an instant, reliable
// service, which is what tests want. DefaultOptions gives the demo profile.
type Options struct {
	FailureRate float64       // probability in [0,1] that a call fails
	ListDelay   time.Duration // latency of List
	Delay       time.Duration // latency of Create, Update and Delete
	Seed        []task.Task   // initial collection, newest first
	Rand        *rand.Rand    // source of failure draws; nil uses a random seed
}

// DefaultOptions returns 10% failures, 500ms list latency and 1s write latency.
func DefaultOptions() Options {
	return Options{
		FailureRate: defaultFailureRate,
		ListDelay:   defaultListDelay,
		Delay:       defaultDelay,
	}
}

// Service owns the authoritative collection and the identifier counter.
type Service struct {
	mu          sync.Mutex
	tasks       []task.Task
	nextID      int64
	rng         *rand.Rand
	failureRate float64
	listDelay   time.Duration
	delay       time.Duration
}

// New builds a service instance holding its own state.
func New(opts Options) *Service {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Service{
		tasks:       make([]task.Task, 0, len(opts.Seed)),
		nextID:      1,
		rng:         rng,
		failureRate: clampRate(opts.FailureRate),
		listDelay:   max(opts.ListDelay, 0),
		delay:       max(opts.Delay, 0),
	}
	for _, t := range opts.Seed {
		if task.Index(s.tasks, t.ID) >= 0 {
			continue
		}
		s.tasks = append(s.tasks, t)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// List returns a copy of the collection after the list latency.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	if err := s.wait(ctx, s.listDelay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		log.Printf("sim: op=list err=%q", api.ErrTransient)
		return nil, api.ErrTransient
	}
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// Create assigns the next identifier and prepends the new open task.
// A failed call does not consume an identifier.
func (s *Service) Create(ctx context.Context, draft task.Draft) (task.Task, error) {
	if err := s.wait(ctx, s.delay); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		log.Printf("sim: op=create err=%q", api.ErrTransient)
		return task.Task{}, api.ErrTransient
	}
	created := task.Task{
		ID:          s.nextID,
		Title:       draft.Title,
		Description: draft.Description,
	}
	s.nextID++
	s.tasks = append([]task.Task{created}, s.tasks...)
	log.Printf("sim: op=create id=%d", created.ID)
	return created, nil
}

// Update replaces the stored task with the same id. An unknown id leaves
// the collection untouched and still succeeds.
func (s *Service) Update(ctx context.Context, t task.Task) (task.Task, error) {
	if err := s.wait(ctx, s.delay); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		log.Printf("sim: op=update id=%d err=%q", t.ID, api.ErrTransient)
		return task.Task{}, api.ErrTransient
	}
	if i := task.Index(s.tasks, t.ID); i >= 0 {
		next := make([]task.Task, len(s.tasks))
		copy(next, s.tasks)
		next[i] = t
		s.tasks = next
	}
	log.Printf("sim: op=update id=%d", t.ID)
	return t, nil
}

// Delete removes the task with id if present and returns id either way.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	if err := s.wait(ctx, s.delay); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		log.Printf("sim: op=delete id=%d err=%q", id, api.ErrTransient)
		return 0, api.ErrTransient
	}
	if i := task.Index(s.tasks, id); i >= 0 {
		next := make([]task.Task, 0, len(s.tasks)-1)
		next = append(next, s.tasks[:i]...)
		s.tasks = append(next, s.tasks[i+1:]...)
	}
	log.Printf("sim: op=delete id=%d", id)
	return id, nil
}

// SetFailureRate changes the failure probability for subsequent calls.
func (s *Service) SetFailureRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureRate = clampRate(rate)
}

// fail draws once; the caller holds s.mu, which also guards rng.
func (s *Service) fail() bool {
	if s.failureRate <= 0 {
		return false
	}
	return s.rng.Float64() < s.failureRate
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func clampRate(rate float64) float64 {
	switch {
	case rate < 0:
		return 0
	case rate > 1:
		return 1
	default:
		return rate
	}
}
