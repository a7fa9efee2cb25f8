package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/five82/tally/internal/api/httpapi"
	"github.com/five82/tally/internal/config"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// ServeOptions configure tally serve.
type ServeOptions struct {
	Options
	Addr string // empty uses http.listen from the config
}

// Serve exposes the configured backend over the HTTP JSON API until ctx is
// cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	if cfg.Backend == config.BackendHTTP {
		return fmt.Errorf("serve needs a local backend, not %q", cfg.Backend)
	}

	svc, closeBackend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	addr := opts.Addr
	if addr == "" {
		addr = cfg.HTTP.Listen
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Printf("serve: listening addr=%s backend=%s", ln.Addr(), cfg.Backend)
	return serveListener(ctx, ln, httpapi.NewHandler(svc))
}

func serveListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf("serve: shut down signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Printf("serve: shut down gracefully")
	return nil
}
