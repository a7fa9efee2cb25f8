package syncer

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/api/sim"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/task"
)

// --- fakes ---

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

func (r *recorder) count(kind Kind) int {
	n := 0
	for _, note := range r.all() {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

// blockingService waits on release before answering each write.
type blockingService struct {
	api.Service
	release chan struct{}
}

func (b *blockingService) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	<-b.release
	return b.Service.Create(ctx, d)
}

// countingService counts calls that reach the backend.
type countingService struct {
	api.Service
	mu    sync.Mutex
	calls int
}

func (c *countingService) hit() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingService) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	c.hit()
	return c.Service.Create(ctx, d)
}

func (c *countingService) Update(ctx context.Context, t task.Task) (task.Task, error) {
	c.hit()
	return c.Service.Update(ctx, t)
}

func newSyncer(t *testing.T, svc api.Service, opts Options) (*Syncer, *state.Store, *recorder) {
	t.Helper()
	store := &state.Store{}
	rec := &recorder{}
	opts.Notifier = rec
	s, err := New(svc, store, opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s, store, rec
}

func loaded(t *testing.T, s *Syncer) {
	t.Helper()
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

// --- tests ---

func TestNew_NilDependencies(t *testing.T) {
	if _, err := New(nil, &state.Store{}, Options{}); !errors.Is(err, ErrServiceNil) {
		t.Fatalf("New(nil svc) err = %v, want %v", err, ErrServiceNil)
	}
	if _, err := New(sim.New(sim.Options{}), nil, Options{}); !errors.Is(err, ErrStoreNil) {
		t.Fatalf("New(nil store) err = %v, want %v", err, ErrStoreNil)
	}
}

func TestCreate_BuyMilkOnEmptyList(t *testing.T) {
	s, store, rec := newSyncer(t, sim.New(sim.Options{}), Options{})
	loaded(t, s)

	if err := s.Create(context.Background(), task.Draft{Title: "Buy milk", Description: ""}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	want := []task.Task{{ID: 1, Title: "Buy milk", Description: "", Completed: false}}
	if got := store.Snapshot().Tasks; !reflect.DeepEqual(got, want) {
		t.Fatalf("Tasks = %+v, want %+v", got, want)
	}
	notes := rec.all()
	if len(notes) != 1 || notes[0].Kind != KindSuccess || notes[0].Title != "Task added successfully" {
		t.Fatalf("notifications = %+v, want one success", notes)
	}
	if notes[0].ID == "" {
		t.Fatalf("notification has no operation id")
	}
}

func TestCreate_IDsStrictlyIncrease(t *testing.T) {
	s, store, _ := newSyncer(t, sim.New(sim.Options{}), Options{})
	loaded(t, s)

	for _, title := range []string{"first", "second", "third"} {
		if err := s.Create(context.Background(), task.Draft{Title: title}); err != nil {
			t.Fatalf("Create(%q) returned error: %v", title, err)
		}
	}
	tasks := store.Snapshot().Tasks
	for i := 1; i < len(tasks); i++ {
		// newest first, so ids decrease down the list
		if tasks[i-1].ID <= tasks[i].ID {
			t.Fatalf("ids not strictly increasing by creation order: %+v", tasks)
		}
	}
}

func TestToggle_TwiceRestoresFlag(t *testing.T) {
	svc := sim.New(sim.Options{Seed: []task.Task{{ID: 1, Title: "Buy milk", Completed: false}}})
	s, store, _ := newSyncer(t, svc, Options{})
	loaded(t, s)
	ctx := context.Background()

	if err := s.Toggle(ctx, 1); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if got, _ := store.Find(1); !got.Completed {
		t.Fatalf("after first toggle Completed = false, want true")
	}
	if err := s.Toggle(ctx, 1); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if got, _ := store.Find(1); got.Completed {
		t.Fatalf("after second toggle Completed = true, want false")
	}

	remote, _ := svc.List(ctx)
	if remote[0].Completed {
		t.Fatalf("service copy Completed = true, want false")
	}
}

func TestToggle_UnknownIDIsNoop(t *testing.T) {
	counting := &countingService{Service: sim.New(sim.Options{})}
	s, store, rec := newSyncer(t, counting, Options{})
	loaded(t, s)

	if err := s.Toggle(context.Background(), 42); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if counting.calls != 0 {
		t.Fatalf("service calls = %d, want 0", counting.calls)
	}
	if len(rec.all()) != 0 {
		t.Fatalf("notifications = %+v, want none", rec.all())
	}
	if store.Snapshot().Status != "" {
		t.Fatalf("status message set for a no-op toggle")
	}
}

func TestUpdate_ReplacesExactlyOneTask(t *testing.T) {
	seed := []task.Task{{ID: 2, Title: "two"}, {ID: 1, Title: "one"}}
	s, store, _ := newSyncer(t, sim.New(sim.Options{Seed: seed}), Options{})
	loaded(t, s)

	want := task.Task{ID: 1, Title: "uno", Description: "changed", Completed: true}
	if err := s.Update(context.Background(), want); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got := store.Snapshot().Tasks
	if got[1] != want || got[0] != seed[0] {
		t.Fatalf("Tasks = %+v, want only id 1 replaced", got)
	}
}

func TestDelete_UnknownIDSucceeds(t *testing.T) {
	seed := []task.Task{{ID: 1, Title: "one"}}
	s, store, rec := newSyncer(t, sim.New(sim.Options{Seed: seed}), Options{})
	loaded(t, s)

	if err := s.Delete(context.Background(), 99); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if got := store.Snapshot().Tasks; !reflect.DeepEqual(got, seed) {
		t.Fatalf("Tasks = %+v, want %+v", got, seed)
	}
	if rec.count(KindSuccess) != 1 {
		t.Fatalf("success notifications = %d, want 1", rec.count(KindSuccess))
	}
}

func TestValidation_BlocksServiceCall(t *testing.T) {
	counting := &countingService{Service: sim.New(sim.Options{Seed: []task.Task{{ID: 1, Title: "one"}}})}
	s, store, rec := newSyncer(t, counting, Options{})
	loaded(t, s)
	before := store.Snapshot().Tasks

	var verr *task.ValidationError
	if err := s.Create(context.Background(), task.Draft{Title: "ab"}); !errors.As(err, &verr) {
		t.Fatalf("Create err = %v, want *task.ValidationError", err)
	}
	if err := s.Update(context.Background(), task.Task{ID: 1, Title: " x "}); !errors.As(err, &verr) {
		t.Fatalf("Update err = %v, want *task.ValidationError", err)
	}
	if counting.calls != 0 {
		t.Fatalf("service calls = %d, want 0", counting.calls)
	}
	if len(rec.all()) != 0 {
		t.Fatalf("notifications = %+v, want none", rec.all())
	}
	if got := store.Snapshot().Tasks; !reflect.DeepEqual(got, before) {
		t.Fatalf("Tasks = %+v, want unchanged %+v", got, before)
	}
}

func TestAlwaysFailing_EveryIntentRejects(t *testing.T) {
	seed := []task.Task{{ID: 1, Title: "one"}}
	svc := sim.New(sim.Options{Seed: seed})

	intents := []struct {
		name  string
		label string
		call  func(*Syncer) error
	}{
		{"create", LabelAdd, func(s *Syncer) error { return s.Create(context.Background(), task.Draft{Title: "new task"}) }},
		{"update", LabelUpdate, func(s *Syncer) error {
			return s.Update(context.Background(), task.Task{ID: 1, Title: "changed"})
		}},
		{"delete", LabelDelete, func(s *Syncer) error { return s.Delete(context.Background(), 1) }},
		{"toggle", LabelUpdate, func(s *Syncer) error { return s.Toggle(context.Background(), 1) }},
	}

	for _, in := range intents {
		t.Run(in.name, func(t *testing.T) {
			svc.SetFailureRate(0)
			s, store, rec := newSyncer(t, svc, Options{})
			loaded(t, s)
			before := store.Snapshot().Tasks

			svc.SetFailureRate(1)
			err := in.call(s)
			if !errors.Is(err, api.ErrTransient) {
				t.Fatalf("err = %v, want ErrTransient", err)
			}

			snap := store.Snapshot()
			if !reflect.DeepEqual(snap.Tasks, before) {
				t.Fatalf("Tasks = %+v, want unchanged %+v", snap.Tasks, before)
			}
			if snap.LastError == nil || snap.LastError.Error() != api.ErrTransient.Error() {
				t.Fatalf("LastError = %v, want %v", snap.LastError, api.ErrTransient)
			}
			notes := rec.all()
			if len(notes) != 1 {
				t.Fatalf("notifications = %+v, want exactly one", notes)
			}
			if notes[0].Kind != KindFailure || notes[0].Title != "Error: "+in.label || notes[0].Detail != api.ErrTransient.Error() {
				t.Fatalf("notification = %+v", notes[0])
			}
		})
	}
}

func TestLoad_FailureLeavesEmptyError(t *testing.T) {
	s, store, rec := newSyncer(t, sim.New(sim.Options{FailureRate: 1}), Options{})

	if err := s.Load(context.Background()); !errors.Is(err, api.ErrTransient) {
		t.Fatalf("Load err = %v, want ErrTransient", err)
	}
	snap := store.Snapshot()
	if snap.Phase() != state.PhaseError {
		t.Fatalf("Phase = %v, want PhaseError", snap.Phase())
	}
	if len(snap.Tasks) != 0 {
		t.Fatalf("Tasks = %+v, want empty", snap.Tasks)
	}
	notes := rec.all()
	if len(notes) != 1 || notes[0].Title != "Error fetching tasks" {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestLoad_EmptySuccessIsDistinctPhase(t *testing.T) {
	s, store, _ := newSyncer(t, sim.New(sim.Options{}), Options{})
	loaded(t, s)
	if got := store.Snapshot().Phase(); got != state.PhaseEmpty {
		t.Fatalf("Phase = %v, want PhaseEmpty", got)
	}
}

func TestStatus_ClearedWhenOperationFinishes(t *testing.T) {
	blocking := &blockingService{Service: sim.New(sim.Options{}), release: make(chan struct{})}
	s, store, _ := newSyncer(t, blocking, Options{StatusTimeout: time.Hour})
	loaded(t, s)

	done := make(chan error, 1)
	go func() { done <- s.Create(context.Background(), task.Draft{Title: "slow task"}) }()

	waitFor(t, func() bool { return store.Snapshot().Status == "Please wait, adding task..." })
	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := store.Snapshot().Status; got != "" {
		t.Fatalf("Status = %q, want cleared after completion", got)
	}
}

func TestStatus_AutoClearsWhileStillOutstanding(t *testing.T) {
	blocking := &blockingService{Service: sim.New(sim.Options{}), release: make(chan struct{})}
	s, store, _ := newSyncer(t, blocking, Options{StatusTimeout: 20 * time.Millisecond})
	loaded(t, s)

	done := make(chan error, 1)
	go func() { done <- s.Create(context.Background(), task.Draft{Title: "slow task"}) }()

	waitFor(t, func() bool { return store.Snapshot().Status != "" })
	waitFor(t, func() bool { return store.Snapshot().Status == "" })

	// The call itself is still outstanding and completes normally.
	select {
	case err := <-done:
		t.Fatalf("Create finished early: %v", err)
	default:
	}
	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got := len(store.Snapshot().Tasks); got != 1 {
		t.Fatalf("Tasks = %d, want 1", got)
	}
}

func TestSerializePerTask_ConcurrentTogglesBothApply(t *testing.T) {
	svc := sim.New(sim.Options{
		Seed:  []task.Task{{ID: 1, Title: "Buy milk"}},
		Delay: 5 * time.Millisecond,
	})
	s, store, _ := newSyncer(t, svc, Options{SerializePerTask: true})
	loaded(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Toggle(context.Background(), 1); err != nil {
				t.Errorf("Toggle returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got, _ := store.Find(1); got.Completed {
		t.Fatalf("Completed = true after two serialized toggles, want false")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
