// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the summarization pipeline over HTTP: a
// summarize endpoint with optional SSE streaming, a chat wrapper, and
// profile discovery.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stevenmcsorley/mini-json-summarizer/internal/profile"
	"github.com/stevenmcsorley/mini-json-summarizer/internal/summarize"
	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// Server is the HTTP API front end. All transport-boundary guards
// (payload size, JSON depth, content validation) live here; the
// summarization core assumes pre-validated input.
type Server struct {
	cfg      types.Config
	logger   *zap.Logger
	engines  *summarize.Registry
	profiles *profile.Registry
	version  string

	router *http.ServeMux
	server *http.Server
	client *http.Client
}

// NewServer wires the API routes and middleware. The profile registry
// may be empty; profile selection then fails with unknown_profile.
func NewServer(cfg types.Config, logger *zap.Logger, engines *summarize.Registry, profiles *profile.Registry, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		engines:  engines,
		profiles: profiles,
		version:  version,
		router:   http.NewServeMux(),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /healthz", s.handleHealthz)
	s.router.HandleFunc("POST /v1/summarize-json", s.handleSummarizeJSON)
	s.router.HandleFunc("POST /v1/chat", s.handleChat)
	s.router.HandleFunc("GET /v1/profiles", s.handleProfiles)
}

// applyMiddleware wraps the router; the last wrap runs first.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = s.recoveryMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(s.cfg.Server.AllowOrigins)(handler)
	return handler
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.cfg.Server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// ServeHTTP dispatches through the full middleware chain. It exists so
// tests can drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}
