// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handler "github.com/newthinker/cryptodash/internal/api/handler/api"
	"github.com/newthinker/cryptodash/internal/api/middleware"
	"github.com/newthinker/cryptodash/internal/app"
	"github.com/newthinker/cryptodash/internal/logger"
	"github.com/newthinker/cryptodash/internal/metrics"
)

// Server represents the HTTP server for the journal dashboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string // empty disables the metrics endpoint
}

// Dependencies holds the services routes are bound to.
type Dependencies struct {
	App     *app.App
	Metrics *metrics.Registry // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, log *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	log = logger.Named(log, "http")
	mux := http.NewServeMux()

	s := &Server{
		logger: log,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	mws := []func(http.Handler) http.Handler{metrics.LoggingMiddleware(log)}
	if deps.Metrics != nil {
		mws = append(mws, metrics.HTTPMiddleware(deps.Metrics))
	}
	s.handler = middleware.Chain(mux, mws...)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	trades := handler.NewTradesHandler(deps.App)
	analytics := handler.NewAnalyticsHandler(deps.App)
	market := handler.NewMarketHandler(deps.App)
	snapshots := handler.NewSnapshotsHandler(deps.App)

	auth := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, auth(h))
	}

	protect("GET /api/v1/trades", trades.List)
	protect("POST /api/v1/trades", trades.Create)
	protect("GET /api/v1/trades/{id}", trades.Get)
	protect("PUT /api/v1/trades/{id}", trades.Update)
	protect("DELETE /api/v1/trades/{id}", trades.Delete)

	protect("GET /api/v1/analytics", analytics.Report)
	protect("GET /api/v1/positions", analytics.Positions)

	protect("GET /api/v1/market", market.Overview)

	protect("POST /api/v1/snapshots", snapshots.Export)
	protect("POST /api/v1/snapshots/import", snapshots.Import)
}

// Handler returns the root handler including middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
