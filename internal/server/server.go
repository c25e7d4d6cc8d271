// Package server exposes the pipeline and the series store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppiankov/macrolens/internal/collect"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
	"github.com/ppiankov/macrolens/internal/pipeline"
)

// CollectionRunner runs ingestion jobs; *collect.Collector satisfies it
type CollectionRunner interface {
	Run(ctx context.Context, sources []string) ([]collect.Summary, error)
}

// Server serves the query and data API
type Server struct {
	pipeline  *pipeline.Pipeline
	collector CollectionRunner
	router    *mux.Router
	http      *http.Server

	// parent context of background collection runs
	baseCtx    context.Context
	collecting atomic.Bool
}

// New creates a server. collector may be nil, in which case the collection
// endpoints answer 503.
func New(p *pipeline.Pipeline, collector CollectionRunner, cfg model.ServerConfig) *Server {
	s := &Server{
		pipeline:  p,
		collector: collector,
		router:    mux.NewRouter(),
		baseCtx:   context.Background(),
	}
	s.routes()

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(loggingMiddleware)
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/query/natural_language", s.handleQuery).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/data/countries", s.handleCountries).Methods(http.MethodGet)
	api.HandleFunc("/data/indicators", s.handleIndicators).Methods(http.MethodGet)
	api.HandleFunc("/data/series", s.handleSeries).Methods(http.MethodGet)
	api.HandleFunc("/collection/run-all", s.handleCollectAll).Methods(http.MethodPost)
	api.HandleFunc("/collection/{source}", s.handleCollectSource).Methods(http.MethodPost)
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.baseCtx = ctx

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithField("addr", s.http.Addr).Info("HTTP server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Log.Info("HTTP server stopped")
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("duration", time.Since(start)).
			Debug("HTTP request")
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
