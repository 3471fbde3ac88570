package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"apphub/internal/config"
	"apphub/internal/constants"
	"apphub/internal/hub"
)

// Server is the service's HTTP listener with lifecycle management.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

// New wires the router to an HTTP server with sane timeouts.
func New(cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	router := NewRouter(cfg, hub.New(cfg, log), log)

	return &Server{
		cfg:    cfg,
		logger: log,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.ServicePort),
			Handler:      router.Handler(),
			ReadTimeout:  constants.ServerReadTimeout,
			WriteTimeout: constants.ServerWriteTimeout,
			IdleTimeout:  constants.ServerIdleTimeout,
		},
	}
}

// Run serves until the context ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status service listening",
			"addr", s.httpServer.Addr,
			"statusURL", s.cfg.StatusURL())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("status service failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down status service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status service shutdown failed: %w", err)
	}
	return nil
}
