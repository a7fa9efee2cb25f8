package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/five82/tally/internal/export"
)

// ExportOptions configure tally export.
type ExportOptions struct {
	Options
	Format string // json, csv or pdf; empty guesses from Output, then json
	Output string // file path; empty or "-" writes to stdout
}

// Export lists the configured backend and writes the collection.
func Export(ctx context.Context, opts ExportOptions, stdout io.Writer) error {
	format, err := exportFormat(opts.Format, opts.Output)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	svc, closeBackend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	tasks, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if opts.Output == "" || opts.Output == "-" {
		return export.Write(stdout, format, tasks)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(f, format, tasks); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	log.Printf("export: wrote count=%d format=%s path=%s", len(tasks), format, opts.Output)
	return nil
}

func exportFormat(flag, output string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if f, ok := export.FormatFromPath(output); ok {
		return f, nil
	}
	return export.JSON, nil
}
