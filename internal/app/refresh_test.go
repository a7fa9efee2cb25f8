package app

import (
	"context"
	"testing"
	"time"

	"github.com/five82/tally/internal/api/sim"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/task"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // would be 32s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_BaseAboveCap(t *testing.T) {
	if got := calculateBackoff(3, time.Minute); got != time.Minute {
		t.Fatalf("calculateBackoff(3, 1m) = %v, want 1m", got)
	}
}

func TestStartRefresher_ReloadsStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := sim.New(sim.Options{Seed: []task.Task{{ID: 1, Title: "Buy milk"}}})
	store := &state.Store{}
	StartRefresher(ctx, store, svc, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := store.Snapshot()
		if snap.Loaded && len(snap.Tasks) == 1 {
			if snap.Phase() != state.PhaseReady {
				t.Fatalf("phase = %v, want PhaseReady", snap.Phase())
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("store never refreshed: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefresh_FailureLeavesStore(t *testing.T) {
	svc := sim.New(sim.Options{FailureRate: 1})
	store := &state.Store{}
	store.SetTasks([]task.Task{{ID: 7, Title: "keep me"}})

	if err := refresh(context.Background(), store, svc); err == nil {
		t.Fatal("refresh succeeded against a failing service")
	}
	snap := store.Snapshot()
	if len(snap.Tasks) != 1 || snap.Tasks[0].ID != 7 || snap.LastError != nil {
		t.Fatalf("store changed: %+v", snap)
	}
}

func TestStartRefresher_ZeroIntervalDisabled(t *testing.T) {
	svc := sim.New(sim.Options{Seed: []task.Task{{ID: 1, Title: "Buy milk"}}})
	store := &state.Store{}
	StartRefresher(context.Background(), store, svc, 0)
	time.Sleep(20 * time.Millisecond)
	if store.Snapshot().Loaded {
		t.Fatal("disabled refresher loaded the store")
	}
}
