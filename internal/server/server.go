// Package server exposes saved shot models over a local HTTP API so
// downstream tools (ingest scripts, tracking syncs) can pull breakdowns
// without shelling out to the CLI.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ming-qiu/theia/internal/store"
)

// Server wraps the HTTP listener around a model store.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Config carries everything the server needs.
type Config struct {
	Port      int
	Store     *store.Store
	Logger    *slog.Logger
	Version   string
	StartTime time.Time
}

// New builds a server bound to localhost.
func New(cfg Config) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
