// Package api exposes the scheduler daemon's HTTP surface: health, metrics,
// and the configured site list.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sitesnap/sitesnap/internal/config"
)

// Server serves the daemon's observability endpoints.
type Server struct {
	router chi.Router
	http   *http.Server
	logger *zap.Logger
}

// siteView is the JSON shape returned by /sites.
type siteView struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Schedule string `json:"schedule,omitempty"`
	MaxPages int    `json:"max_pages,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// NewServer constructs a Server over the configured sites.
func NewServer(port int, sites []config.Site, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/sites", func(w http.ResponseWriter, _ *http.Request) {
		views := make([]siteView, 0, len(sites))
		for _, s := range sites {
			views = append(views, siteView{
				Name:     s.Name,
				URL:      s.URL,
				Schedule: s.Schedule,
				MaxPages: s.MaxPages,
				Enabled:  s.Enabled,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil {
			logger.Warn("encode sites response", zap.Error(err))
		}
	})

	return &Server{
		router: r,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
