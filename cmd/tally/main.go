package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/five82/tally/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// command is a parsed subcommand ready to execute.
type command func(ctx context.Context) error

func run(args []string, stdout, stderr io.Writer) int {
	name, rest := splitCommand(args)

	cmd, err := parseCommand(name, rest, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "tally: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd(ctx); err != nil {
		fmt.Fprintf(stderr, "tally: %v\n", err)
		return 1
	}
	return 0
}

// splitCommand returns the subcommand name, "run" when args start with a flag.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "run", args
	}
	return args[0], args[1:]
}

func parseCommand(name string, args []string, stdout, stderr io.Writer) (command, error) {
	fs := flag.NewFlagSet("tally "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := registerCommon(fs)

	switch name {
	case "run":
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		opts := common.options(fs)
		return func(ctx context.Context) error { return app.Run(ctx, opts) }, nil

	case "serve":
		addr := fs.String("addr", "", "listen address (defaults to http.listen from the config)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		opts := app.ServeOptions{Options: common.options(fs), Addr: *addr}
		return func(ctx context.Context) error { return app.Serve(ctx, opts) }, nil

	case "export":
		format := fs.String("format", "", "json, csv or pdf (guessed from -o when empty)")
		output := fs.String("o", "", "output file (stdout when empty or -)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		opts := app.ExportOptions{Options: common.options(fs), Format: *format, Output: *output}
		return func(ctx context.Context) error { return app.Export(ctx, opts, stdout) }, nil

	default:
		return nil, fmt.Errorf("unknown command %q (want run, serve or export)", name)
	}
}

type commonFlags struct {
	config      *string
	prefs       *string
	backend     *string
	failureRate *float64
	delay       *time.Duration
	seedDemo    *bool
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:      fs.String("config", "", "config file path (optional, defaults to ~/.config/tally/config.toml)"),
		prefs:       fs.String("prefs", "", "UI preferences path (optional)"),
		backend:     fs.String("backend", "", "task backend: sim, http, mysql or google"),
		failureRate: fs.Float64("failure-rate", 0, "simulated failure probability in [0,1]"),
		delay:       fs.Duration("delay", 0, "simulated write latency; list latency is half"),
		seedDemo:    fs.Bool("seed-demo", false, "start the simulated backend with demo tasks"),
	}
}

// options only overrides values for flags that were set explicitly.
func (c commonFlags) options(fs *flag.FlagSet) app.Options {
	opts := app.Options{
		ConfigPath: *c.config,
		PrefsPath:  *c.prefs,
		Overrides: app.Overrides{
			Backend:  strings.ToLower(strings.TrimSpace(*c.backend)),
			SeedDemo: *c.seedDemo,
		},
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "failure-rate":
			opts.Overrides.FailureRate = c.failureRate
		case "delay":
			opts.Overrides.Delay = c.delay
		}
	})
	return opts
}
