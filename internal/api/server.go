// Package api serves the boolean query engine over HTTP: a chi-routed
// JSON search endpoint plus a health check, additive surface area spec.md's
// CLI-only framing omits (spec.md §9's search-CLI vs. programmatic-search
// split motivates this: the programmatic, single-multi-term-query
// semantics is what both this API and cmd/search expose). Route
// registration and middleware stack are grounded on the teacher's
// internal/api/server.go.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the query HTTP API server.
type Server struct {
	finalDir          string
	docMapPath        string
	docMappingBackend string
	sqlitePath        string
	logger            *slog.Logger
	router            *chi.Mux
	httpServer        *http.Server
}

// NewServer creates a query API server that reads the final index at
// finalDir and resolves URLs through whichever doc-mapping backend
// docMappingBackend selects (the flat JSON file at docMapPath, or the
// SQLite store at sqlitePath, mirroring internal/buildconfig's selection).
// Both backends are read-only at serve time: the server never writes to
// the index.
func NewServer(addr, finalDir, docMapPath, docMappingBackend, sqlitePath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		finalDir:          finalDir,
		docMapPath:        docMapPath,
		docMappingBackend: docMappingBackend,
		sqlitePath:        sqlitePath,
		logger:            logger,
		router:            chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(s.logRequests)

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
	})

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s
}

// Start blocks serving HTTP until the server is shut down or fails.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// logRequests is a slog-based request logger, the structured-logging
// counterpart to chi's middleware.Logger for the query API, matching
// SPEC_FULL.md §7's log/slog-for-the-HTTP-server convention.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
