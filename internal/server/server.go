package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskweave/taskweave/internal/config"
)

const shutdownGrace = 30 * time.Second

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	inner *http.Server
}

func New(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		inner: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:     handler,
			ReadTimeout: 15 * time.Second,
			// The generate endpoint blocks on a model round trip that can
			// take tens of seconds, so the write timeout must cover it.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  2 * time.Minute,
		},
	}
}

// Run serves until SIGINT/SIGTERM or a listener error, then drains
// in-flight requests within the shutdown grace period.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.inner.Addr)
		if err := s.inner.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.inner.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining http server: %w", err)
	}

	slog.Info("http server stopped")
	return nil
}
