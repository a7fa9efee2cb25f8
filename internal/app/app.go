package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/config"
	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/syncer"
	"github.com/five82/tally/internal/ui"
)

const notificationBuffer = 32

// Options configure the tally application.
type Options struct {
	ConfigPath string // empty uses ~/.config/tally/config.toml
	PrefsPath  string // empty uses ~/.config/tally/prefs.toml
	Overrides  Overrides
}

// Overrides are command line values that win over the config file.
type Overrides struct {
	Backend     string
	FailureRate *float64
	Delay       *time.Duration
	SeedDemo    bool
}

func (o Overrides) apply(cfg *config.Config) {
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.FailureRate != nil {
		cfg.Sim.FailureRate = *o.FailureRate
	}
	if o.Delay != nil {
		cfg.Sim.Delay = *o.Delay
		cfg.Sim.ListDelay = *o.Delay / 2
	}
	if o.SeedDemo {
		cfg.Sim.SeedDemo = true
	}
}

// LoadConfig reads the config file and applies the overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	opts.Overrides.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Run boots the tally TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	svc, closeBackend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	userPrefs := prefs.Load(opts.PrefsPath)
	store := &state.Store{}
	notifier := ui.NewNotifier(notificationBuffer)

	intents, err := syncer.New(svc, store, syncer.Options{
		StatusTimeout:    cfg.StatusTimeout,
		Notifier:         notifier,
		SerializePerTask: cfg.SerializePerTask,
	})
	if err != nil {
		return fmt.Errorf("init syncer: %w", err)
	}

	StartRefresher(ctx, store, svc, cfg.RefreshInterval)
	log.Printf("app: start backend=%s serialize=%t", cfg.Backend, cfg.SerializePerTask)

	err = ui.Run(ui.Options{
		Context:       ctx,
		Syncer:        intents,
		Store:         store,
		Notifications: notifier.C(),
		ThemeName:     userPrefs.Theme,
		Filter:        userPrefs.Filter,
		PrefsPath:     opts.PrefsPath,
		LogPath:       cfg.LogFile,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// setupLogging sends the standard logger to path while the TUI owns the
// terminal. An empty path discards log output.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
