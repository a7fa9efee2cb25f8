package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/state"
)

const maxBackoff = 30 * time.Second

// StartRefresher launches a background goroutine that reloads the store from
// svc every interval. Failures are logged and back off exponentially; they
// leave the store untouched. A zero interval disables it. It returns
// immediately.
func StartRefresher(ctx context.Context, store *state.Store, svc api.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if err := refresh(ctx, store, svc); err != nil {
				failures++
				log.Printf("refresh: failures=%d err=%q", failures, err)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// refresh replaces the collection without flagging a load, so the list
// does not flash its loading state.
func refresh(ctx context.Context, store *state.Store, svc api.Service) error {
	tasks, err := svc.List(ctx)
	if err != nil {
		return err
	}
	store.FinishLoad(tasks, nil)
	return nil
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
// A base above the cap is used as is.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}
