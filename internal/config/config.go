package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend names accepted by the backend key.
const (
	BackendSim    = "sim"
	BackendHTTP   = "http"
	BackendMySQL  = "mysql"
	BackendGoogle = "google"
)

// Config is the resolved tally configuration.
type Config struct {
	Backend          string
	StatusTimeout    time.Duration
	SerializePerTask bool
	RefreshInterval  time.Duration // background reload cadence, zero disables
	LogFile          string

	Sim    SimConfig
	HTTP   HTTPConfig
	MySQL  MySQLConfig
	Google GoogleConfig
}

// SimConfig tunes the simulated backend.
type SimConfig struct {
	FailureRate float64
	ListDelay   time.Duration
	Delay       time.Duration
	SeedDemo    bool
}

// HTTPConfig holds the remote API address and the serve listener.
type HTTPConfig struct {
	BaseURL string
	Listen  string
}

// MySQLConfig holds the database DSN.
type MySQLConfig struct {
	DSN string
}

// GoogleConfig locates the OAuth files and the task list.
type GoogleConfig struct {
	ConfigDir string
	ListID    string
}

const (
	defaultConfigPath    = "~/.config/tally/config.toml"
	defaultLogFile       = "~/.local/state/tally/tally.log"
	defaultGoogleDir     = "~/.config/gtask"
	defaultListen        = "127.0.0.1:7490"
	defaultFailureRate   = 0.10
	defaultListDelay     = 500 * time.Millisecond
	defaultDelay         = time.Second
	defaultStatusTimeout = 3 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:          BackendSim,
		StatusTimeout:    defaultStatusTimeout,
		SerializePerTask: true,
		LogFile:          mustExpand(defaultLogFile),
		Sim: SimConfig{
			FailureRate: defaultFailureRate,
			ListDelay:   defaultListDelay,
			Delay:       defaultDelay,
		},
		HTTP: HTTPConfig{
			BaseURL: defaultListen,
			Listen:  defaultListen,
		},
		Google: GoogleConfig{
			ConfigDir: mustExpand(defaultGoogleDir),
			ListID:    "@default",
		},
	}
}

type rawConfig struct {
	Backend          string `toml:"backend"`
	StatusTimeout    string `toml:"status_timeout"`
	SerializePerTask *bool  `toml:"serialize_per_task"`
	RefreshInterval  string `toml:"refresh_interval"`
	LogFile          string `toml:"log_file"`

	Sim struct {
		FailureRate *float64 `toml:"failure_rate"`
		ListDelay   string   `toml:"list_delay"`
		Delay       string   `toml:"delay"`
		SeedDemo    bool     `toml:"seed_demo"`
	} `toml:"sim"`

	HTTP struct {
		BaseURL string `toml:"base_url"`
		Listen  string `toml:"listen"`
	} `toml:"http"`

	MySQL struct {
		DSN string `toml:"dsn"`
	} `toml:"mysql"`

	Google struct {
		ConfigDir string `toml:"config_dir"`
		ListID    string `toml:"list_id"`
	} `toml:"google"`
}

// Load reads the config file at path (the default location when empty).
// A missing file yields Default(); blank values keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	if backend := strings.ToLower(strings.TrimSpace(raw.Backend)); backend != "" {
		c.Backend = backend
	}

	var err error
	if c.StatusTimeout, err = parseDuration("status_timeout", raw.StatusTimeout, c.StatusTimeout); err != nil {
		return err
	}
	if raw.SerializePerTask != nil {
		c.SerializePerTask = *raw.SerializePerTask
	}
	if c.RefreshInterval, err = parseDuration("refresh_interval", raw.RefreshInterval, c.RefreshInterval); err != nil {
		return err
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		c.LogFile = mustExpand(logFile)
	}

	if raw.Sim.FailureRate != nil {
		c.Sim.FailureRate = *raw.Sim.FailureRate
	}
	if c.Sim.ListDelay, err = parseDuration("sim.list_delay", raw.Sim.ListDelay, c.Sim.ListDelay); err != nil {
		return err
	}
	if c.Sim.Delay, err = parseDuration("sim.delay", raw.Sim.Delay, c.Sim.Delay); err != nil {
		return err
	}
	c.Sim.SeedDemo = raw.Sim.SeedDemo

	if v := strings.TrimSpace(raw.HTTP.BaseURL); v != "" {
		c.HTTP.BaseURL = v
	}
	if v := strings.TrimSpace(raw.HTTP.Listen); v != "" {
		c.HTTP.Listen = v
	}
	c.MySQL.DSN = strings.TrimSpace(raw.MySQL.DSN)
	if v := strings.TrimSpace(raw.Google.ConfigDir); v != "" {
		c.Google.ConfigDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Google.ListID); v != "" {
		c.Google.ListID = v
	}
	return nil
}

// Validate checks settings that flags may also change.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSim, BackendHTTP, BackendMySQL, BackendGoogle:
	default:
		return fmt.Errorf("unknown backend %q (want sim, http, mysql or google)", c.Backend)
	}
	if c.Sim.FailureRate < 0 || c.Sim.FailureRate > 1 {
		return fmt.Errorf("sim.failure_rate %v out of range [0,1]", c.Sim.FailureRate)
	}
	if c.Backend == BackendMySQL && c.MySQL.DSN == "" {
		return fmt.Errorf("backend mysql needs mysql.dsn")
	}
	return nil
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse %s: negative duration %s", key, d)
	}
	return d, nil
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
