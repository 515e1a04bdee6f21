package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mediapoint/roster/internal/config"
	"github.com/mediapoint/roster/internal/service/processing"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server. health may be nil, in which case
// /health reports only the process itself.
func NewServer(cfg config.ServerConfig, svc *processing.Service, health *HealthChecker) (*Server, error) {
	h, err := NewHandlers(cfg, svc)
	if err != nil {
		return nil, err
	}
	if health == nil {
		health = NewHealthChecker(nil, nil, nil)
	}
	return &Server{
		config:  cfg,
		handler: SetupRoutes(cfg, h, health),
	}, nil
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      s.config.WriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
