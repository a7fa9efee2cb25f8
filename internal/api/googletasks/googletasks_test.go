package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/task"
)

// fakeTasksAPI serves the subset of the Google Tasks REST API the backend uses.
type fakeTasksAPI struct {
	mu      sync.Mutex
	items   []*tasks.Task // top of the list first
	next    int
	fail    bool
	deletes int
	updates int
}

func (f *fakeTasksAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/v1/lists/{list}/tasks", f.list)
	mux.HandleFunc("POST /tasks/v1/lists/{list}/tasks", f.insert)
	mux.HandleFunc("PUT /tasks/v1/lists/{list}/tasks/{task}", f.update)
	mux.HandleFunc("DELETE /tasks/v1/lists/{list}/tasks/{task}", f.delete)
	return mux
}

func (f *fakeTasksAPI) failed(w http.ResponseWriter) bool {
	if !f.fail {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":{"code":503,"message":"backend unavailable"}}`))
	return true
}

func (f *fakeTasksAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed(w) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&tasks.Tasks{Items: f.items})
}

func (f *fakeTasksAPI) insert(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed(w) {
		return
	}
	var in tasks.Task
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.next++
	in.Id = fmt.Sprintf("g-%d", f.next)
	f.items = append([]*tasks.Task{&in}, f.items...)
	_ = json.NewEncoder(w).Encode(&in)
}

func (f *fakeTasksAPI) update(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed(w) {
		return
	}
	var in tasks.Task
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.updates++
	for i, item := range f.items {
		if item.Id == r.PathValue("task") {
			in.Id = item.Id
			f.items[i] = &in
		}
	}
	_ = json.NewEncoder(w).Encode(&in)
}

func (f *fakeTasksAPI) delete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed(w) {
		return
	}
	f.deletes++
	for i, item := range f.items {
		if item.Id == r.PathValue("task") {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func newTestService(t *testing.T, fake *fakeTasksAPI) *Service {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	s, err := NewWithHTTPClient(context.Background(), server.Client(), "", option.WithEndpoint(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewWithHTTPClient returned error: %v", err)
	}
	return s
}

func TestIDMap_FirstSeenMonotonic(t *testing.T) {
	m := newIDMap()
	a := m.local("a")
	b := m.local("b")
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", a, b)
	}
	if again := m.local("a"); again != a {
		t.Fatalf("local(a) = %d, want %d", again, a)
	}
	m.forget(a)
	if _, ok := m.remote(a); ok {
		t.Fatalf("remote(%d) still mapped after forget", a)
	}
	if c := m.local("a"); c != 3 {
		t.Fatalf("remapped id = %d, want 3", c)
	}
}

func TestToRemote_CompletionMapping(t *testing.T) {
	done := toRemote("x", task.Task{ID: 1, Title: "t", Description: "d", Completed: true})
	if done.Status != statusCompleted || done.Notes != "d" || len(done.NullFields) != 0 {
		t.Fatalf("completed remote = %+v", done)
	}
	open := toRemote("x", task.Task{ID: 1, Title: "t"})
	if open.Status != statusNeedsAction || len(open.NullFields) != 1 {
		t.Fatalf("open remote = %+v", open)
	}
}

func TestService_ListNumbersExistingTasksNewestFirst(t *testing.T) {
	fake := &fakeTasksAPI{items: []*tasks.Task{
		{Id: "newest", Title: "newest", Status: statusNeedsAction},
		{Id: "older", Title: "older", Notes: "n", Status: statusCompleted},
	}}
	s := newTestService(t, fake)

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []task.Task{
		{ID: 2, Title: "newest"},
		{ID: 1, Title: "older", Description: "n", Completed: true},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("List = %+v, want %+v", got, want)
	}
}

func TestService_CreateToggleDelete(t *testing.T) {
	fake := &fakeTasksAPI{}
	s := newTestService(t, fake)
	ctx := context.Background()

	created, err := s.Create(ctx, task.Draft{Title: "Buy milk", Description: "2 litres"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 1 || created.Completed || created.Description != "2 litres" {
		t.Fatalf("created = %+v", created)
	}

	if _, err := s.Update(ctx, created.Toggled()); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || got[0] != created.Toggled() {
		t.Fatalf("List = %+v, want [%+v]", got, created.Toggled())
	}

	if id, err := s.Delete(ctx, created.ID); err != nil || id != created.ID {
		t.Fatalf("Delete = %d, %v", id, err)
	}
	if got, _ := s.List(ctx); len(got) != 0 {
		t.Fatalf("List after delete = %+v", got)
	}
}

func TestService_UnknownIDsSkipRemoteCall(t *testing.T) {
	fake := &fakeTasksAPI{}
	s := newTestService(t, fake)
	ctx := context.Background()

	in := task.Task{ID: 77, Title: "ghost"}
	if out, err := s.Update(ctx, in); err != nil || out != in {
		t.Fatalf("Update = %+v, %v", out, err)
	}
	if id, err := s.Delete(ctx, 77); err != nil || id != 77 {
		t.Fatalf("Delete = %d, %v", id, err)
	}
	if fake.updates != 0 || fake.deletes != 0 {
		t.Fatalf("remote calls: updates=%d deletes=%d, want none", fake.updates, fake.deletes)
	}
}

func TestService_ServerErrorIsTransient(t *testing.T) {
	s := newTestService(t, &fakeTasksAPI{fail: true})

	if _, err := s.List(context.Background()); !errors.Is(err, api.ErrTransient) {
		t.Fatalf("List err = %v, want ErrTransient", err)
	}
}
