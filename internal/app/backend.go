package app

import (
	"context"
	"fmt"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/api/googletasks"
	"github.com/five82/tally/internal/api/httpapi"
	"github.com/five82/tally/internal/api/mysql"
	"github.com/five82/tally/internal/api/sim"
	"github.com/five82/tally/internal/config"
)

// OpenBackend builds the task service named by cfg.Backend. The returned
// close function releases its resources and is never nil on success.
func OpenBackend(ctx context.Context, cfg config.Config) (api.Service, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendSim:
		opts := sim.Options{
			FailureRate: cfg.Sim.FailureRate,
			ListDelay:   cfg.Sim.ListDelay,
			Delay:       cfg.Sim.Delay,
		}
		if cfg.Sim.SeedDemo {
			opts.Seed = sim.Demo()
		}
		return sim.New(opts), noop, nil

	case config.BackendHTTP:
		client, err := httpapi.NewClient(cfg.HTTP.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init http backend: %w", err)
		}
		return client, noop, nil

	case config.BackendMySQL:
		svc, err := mysql.Open(ctx, cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("init mysql backend: %w", err)
		}
		return svc, svc.Close, nil

	case config.BackendGoogle:
		svc, err := googletasks.New(ctx, googletasks.OptionsFromDir(cfg.Google.ConfigDir, cfg.Google.ListID))
		if err != nil {
			return nil, nil, fmt.Errorf("init google backend: %w", err)
		}
		return svc, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
