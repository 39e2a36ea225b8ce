// Package server exposes the directory over HTTP: health, metrics and the
// read-only lookup API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/directory/catalog"
	"github.com/vietddude/localguide/internal/directory/health"
	"github.com/vietddude/localguide/internal/directory/search"
)

// Directory answers category and location lookups.
type Directory interface {
	ResolveCategory(ctx context.Context, slug string, limit int) []domain.Business
	ResolveNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]catalog.Nearby, error)
}

// Collections loads the searchable snapshot.
type Collections interface {
	Load(ctx context.Context) domain.Collections
}

// Searcher filters a snapshot.
type Searcher interface {
	Search(c domain.Collections, q search.Query) domain.Collections
}

// Config holds HTTP server settings.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// DefaultLimit applies when a request has no limit.
	DefaultLimit int
}

// Server provides HTTP endpoints for health monitoring and lookups.
type Server struct {
	cfg       Config
	monitor   *health.Monitor
	directory Directory
	loader    Collections
	engine    Searcher
	log       *slog.Logger
	router    *mux.Router
	server    *http.Server
}

// NewServer creates a new server.
func NewServer(cfg Config, monitor *health.Monitor, dir Directory, loader Collections, engine Searcher, logger *slog.Logger) *Server {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = catalog.DefaultConfig().DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	s := &Server{
		cfg:       cfg,
		monitor:   monitor,
		directory: dir,
		loader:    loader,
		engine:    engine,
		log:       logger,
		router:    r,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	r.Use(s.requestLogger)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/detailed", s.handleDetailed).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{slug}/businesses", s.handleCategory).Methods(http.MethodGet)
	api.HandleFunc("/nearby", s.handleNearby).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/filters", s.handleFilters).Methods(http.MethodGet)

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())

	status := http.StatusOK
	if report.SystemStatus == health.StatusCritical {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Debug("HTTP request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
