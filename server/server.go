// Package server exposes the marketplace over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/asterpay/x402/catalog"
	"github.com/asterpay/x402/gate"
	"github.com/asterpay/x402/ledger"
	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/textservice"
	"github.com/asterpay/x402/types"
)

const (
	ServiceName     = "asterpay-api-marketplace"
	shutdownTimeout = 10 * time.Second
)

// Marketplace is the payment core the server dispatches to.
type Marketplace interface {
	Guard(ctx context.Context, op types.Operation, proof, resource string) (types.Decision, error)
	Stats() ledger.Snapshot
	Prices() map[string]string
	Pricing() catalog.Pricing
}

type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

type Server struct {
	market   Marketplace
	text     textservice.Service
	router   *chi.Mux
	validate *validator.Validate

	logger         logger.Logger
	metricsHandler http.Handler
}

func New(market Marketplace, text textservice.Service, opts ...Option) *Server {
	s := &Server{
		market:   market,
		text:     text,
		router:   chi.NewRouter(),
		validate: validator.New(),
		logger:   logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestID)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", gate.ProofHeader},
		ExposedHeaders: []string{requestIDHeader},
	}))

	s.router.Get("/health", s.health)
	s.router.Get("/api/stats", s.stats)
	s.router.Get("/api/pricing", s.pricing)

	s.router.Post("/api/ai/summarize", handle(s, summarize))
	s.router.Post("/api/ai/translate", handle(s, translate))
	s.router.Post("/api/ai/analyze", handle(s, analyze))
	s.router.Post("/api/web/search", handle(s, search))

	if s.metricsHandler != nil {
		s.router.Handle("/metrics", s.metricsHandler)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests for a bounded time.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", map[string]any{"addr": addr})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
