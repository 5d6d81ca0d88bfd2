// Package api exposes the mirror over HTTP: a sync trigger plus uniform
// search/CRUD routes for every registered entity.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/galaxykit/holocron/internal/catalog"
	"github.com/galaxykit/holocron/internal/syncer"
)

// Server is the HTTP API server for the catalog mirror.
type Server struct {
	config Config
	http   *http.Server
	store  *catalog.Store
	engine *syncer.Engine
}

// NewServer creates a Server over the given store and sync engine.
func NewServer(cfg Config, store *catalog.Store, engine *syncer.Engine) *Server {
	s := &Server{
		config: cfg,
		store:  store,
		engine: engine,
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// routes builds the HTTP handler with all routes and middleware. The
// {entity} segment is resolved against the schema registry per request, so
// one set of handlers serves all six catalogs.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/{entity}/insert", s.handleSync)
	mux.HandleFunc("POST /api/{entity}", s.handleCreate)
	mux.HandleFunc("GET /api/{entity}", s.handleList)
	mux.HandleFunc("GET /api/{entity}/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/{entity}/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/{entity}/{id}", s.handleDelete)

	return chain(mux, recoveryMiddleware, requestIDMiddleware, loggerMiddleware, loggingMiddleware)
}

// handleHealth returns a health check response, pinging the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
