package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/five82/tally/internal/api/sim"
	"github.com/five82/tally/internal/task"
)

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body err=%v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var payload errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload
}

func TestHandler_CreateThenList(t *testing.T) {
	h := NewHandler(sim.New(sim.Options{}))

	rr := doJSON(t, h, http.MethodPost, "/api/tasks", task.Draft{Title: "Buy milk"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var created task.Task
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	want := task.Task{ID: 1, Title: "Buy milk"}
	if created != want {
		t.Fatalf("created = %+v, want %+v", created, want)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/tasks", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}
	var tasks []task.Task
	if err := json.NewDecoder(rr.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != want {
		t.Fatalf("list = %+v, want [%+v]", tasks, want)
	}
}

func TestHandler_EmptyListIsArray(t *testing.T) {
	rr := doJSON(t, NewHandler(sim.New(sim.Options{})), http.MethodGet, "/api/tasks", nil)
	if got := bytes.TrimSpace(rr.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("body = %q, want []", got)
	}
}

func TestHandler_UpdateUsesPathID(t *testing.T) {
	svc := sim.New(sim.Options{Seed: []task.Task{{ID: 3, Title: "three"}}})
	h := NewHandler(svc)

	rr := doJSON(t, h, http.MethodPut, "/api/tasks/3", task.Task{ID: 99, Title: "three", Completed: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status = %d (body %s)", rr.Code, rr.Body.String())
	}
	var updated task.Task
	if err := json.NewDecoder(rr.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.ID != 3 || !updated.Completed {
		t.Fatalf("updated = %+v, want id 3 completed", updated)
	}
}

func TestHandler_DeleteAnswersID(t *testing.T) {
	h := NewHandler(sim.New(sim.Options{Seed: []task.Task{{ID: 2, Title: "two"}}}))

	rr := doJSON(t, h, http.MethodDelete, "/api/tasks/2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rr.Code)
	}
	var payload deleteResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if payload.ID != 2 {
		t.Fatalf("id = %d, want 2", payload.ID)
	}
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		failing   bool
		method    string
		path      string
		body      any
		raw       string
		wantCode  int
		wantField string
	}{
		{name: "short title", method: http.MethodPost, path: "/api/tasks", body: task.Draft{Title: "ab"}, wantCode: http.StatusBadRequest, wantField: "title"},
		{name: "bad json", method: http.MethodPost, path: "/api/tasks", raw: "{", wantCode: http.StatusBadRequest},
		{name: "bad id", method: http.MethodDelete, path: "/api/tasks/abc", wantCode: http.StatusBadRequest},
		{name: "zero id", method: http.MethodPut, path: "/api/tasks/0", body: task.Task{Title: "valid"}, wantCode: http.StatusBadRequest},
		{name: "transient", failing: true, method: http.MethodGet, path: "/api/tasks", wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := sim.Options{}
			if tt.failing {
				opts.FailureRate = 1
			}
			h := NewHandler(sim.New(opts))

			var rr *httptest.ResponseRecorder
			if tt.raw != "" {
				req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.raw))
				rr = httptest.NewRecorder()
				h.ServeHTTP(rr, req)
			} else {
				rr = doJSON(t, h, tt.method, tt.path, tt.body)
			}

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			payload := decodeError(t, rr)
			if payload.Error == "" {
				t.Fatalf("error message empty")
			}
			if payload.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", payload.Field, tt.wantField)
			}
		})
	}
}
