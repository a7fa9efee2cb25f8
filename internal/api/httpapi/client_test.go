package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/api/sim"
	"github.com/five82/tally/internal/task"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != DefaultAddr {
		t.Fatalf("url = %q, want http://%s", u.String(), DefaultAddr)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func newClient(t *testing.T, svc api.Service) *Client {
	t.Helper()
	server := httptest.NewServer(NewHandler(svc))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_RoundTripsEveryOperation(t *testing.T) {
	c := newClient(t, sim.New(sim.Options{}))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	created, err := c.Create(ctx, task.Draft{Title: "Buy milk", Description: "2 litres"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 1 || created.Completed {
		t.Fatalf("created = %+v", created)
	}

	updated, err := c.Update(ctx, created.Toggled())
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !updated.Completed || updated.Description != "2 litres" {
		t.Fatalf("updated = %+v", updated)
	}

	tasks, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != updated {
		t.Fatalf("List = %+v, want [%+v]", tasks, updated)
	}

	id, err := c.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if id != created.ID {
		t.Fatalf("Delete id = %d, want %d", id, created.ID)
	}
	tasks, err = c.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("List after delete = %+v, want empty", tasks)
	}
}

func TestClient_MapsTransientFailure(t *testing.T) {
	c := newClient(t, sim.New(sim.Options{FailureRate: 1}))

	_, err := c.List(context.Background())
	if !errors.Is(err, api.ErrTransient) {
		t.Fatalf("List err = %v, want ErrTransient", err)
	}
}

func TestClient_MapsValidationFailure(t *testing.T) {
	c := newClient(t, sim.New(sim.Options{}))

	_, err := c.Create(context.Background(), task.Draft{Title: "x"})
	var verr *task.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create err = %v, want *task.ValidationError", err)
	}
	if verr.Field != "title" {
		t.Fatalf("field = %q, want title", verr.Field)
	}
}

func TestClient_OtherStatusIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusTeapot)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.List(context.Background())
	if err == nil || errors.Is(err, api.ErrTransient) {
		t.Fatalf("List err = %v, want non-transient error", err)
	}
}

func TestClient_UnreachableServerIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.List(context.Background()); !errors.Is(err, api.ErrUnavailable) {
		t.Fatalf("List err = %v, want ErrUnavailable", err)
	}
}
