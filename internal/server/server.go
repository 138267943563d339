// ABOUTME: HTTP host for the shopping assistant built on chi
// ABOUTME: Routes session turns and product search under /api/v1
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/harper/shopassist/internal/session"
	"github.com/harper/shopassist/internal/storage"
	"github.com/harper/shopassist/internal/util"
	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds a single request including every backend call of a turn
const DefaultRequestTimeout = 90 * time.Second

// Searcher finds catalog products close to a free-text query
type Searcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]storage.SearchResult, error)
}

// Server serves the assistant over HTTP
type Server struct {
	sessions *session.Manager
	searcher Searcher
	logger   *zap.Logger
	timeout  time.Duration
}

// New creates a server over sessions and searcher
func New(sessions *session.Manager, searcher Searcher, logger *zap.Logger) *Server {
	return &Server{
		sessions: sessions,
		searcher: searcher,
		logger:   util.OrNop(logger),
		timeout:  DefaultRequestTimeout,
	}
}

// Routes returns the configured router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Get("/{id}/history", s.handleHistory)
			r.Post("/{id}/messages", s.handleMessage)
			r.Post("/{id}/reset", s.handleReset)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
