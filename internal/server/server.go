// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads a config.Config and hands it to New, which creates:
//
//	sqlite.DB ──┬─→ AuthService ──→ AuthHandler
//	            ├─→ GoalService ──→ GoalHandler
//	            └─→ HealthHandler
//	GitHubGateway + AuthService (tokens) + GoalService ─→ InsightService ─→ InsightHandler
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/mydevjourney/internal/auth"
	"github.com/sakif/mydevjourney/internal/config"
	"github.com/sakif/mydevjourney/internal/gateway"
	"github.com/sakif/mydevjourney/internal/handler"
	"github.com/sakif/mydevjourney/internal/metrics"
	"github.com/sakif/mydevjourney/internal/middleware"
	sqliteRepo "github.com/sakif/mydevjourney/internal/repository/sqlite"
	"github.com/sakif/mydevjourney/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the file lock.
// This is handled in Start() during graceful shutdown, or by Close().
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	metrics *metrics.Metrics
	tokens  *auth.TokenService

	authHandler    *handler.AuthHandler
	goalHandler    *handler.GoalHandler
	insightHandler *handler.InsightHandler
	healthHandler  *handler.HealthHandler
}

// New creates a new Server from a validated config.
//
// DEPENDENCY INJECTION & WIRING:
//  1. Open the database (sqlite.New runs the migrations)
//  2. Build the auth primitives: JWT signer, token box, OAuth provider
//  3. Build the GitHub gateway and the metrics registry
//  4. Build the services, then the handlers on top of them
//  5. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services through small interfaces (not the repository or DB)
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}

	// === CREATE DATABASE ===
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	if err := s.wire(); err != nil {
		db.Close() // Clean up DB if wiring fails
		return nil, err
	}
	s.setupRoutes()

	return s, nil
}

// wire builds the service and handler graph.
func (s *Server) wire() error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	s.tokens = tokens

	box, err := auth.NewTokenBox(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token box: %w", err)
	}

	var providerOpts []auth.ProviderOption
	if cfg.GitHubAPIURL != "" {
		providerOpts = append(providerOpts, auth.WithAPIBaseURL(cfg.GitHubAPIURL))
	}
	github := auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.CallbackURL(), providerOpts...)

	fetcher, err := gateway.NewGitHubGateway(cfg.GitHubAPIURL, s.logger)
	if err != nil {
		return fmt.Errorf("creating GitHub gateway: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, box, s.logger)
	goalService := service.NewGoalService(s.db, s.db, s.metrics, time.Now, s.logger)
	insightService := service.NewInsightService(fetcher, authService, goalService, s.metrics, time.Now,
		service.InsightConfig{
			WindowDays: cfg.StatsWindowDays,
			PageSize:   cfg.EventsPageSize,
		}, s.logger)

	s.authHandler = handler.NewAuthHandler(github, authService, cfg.SessionTTL, s.logger)
	s.goalHandler = handler.NewGoalHandler(goalService, s.logger)
	s.insightHandler = handler.NewInsightHandler(insightService, time.Now, s.logger)
	s.healthHandler = handler.NewHealthHandler(s.db, s.logger)
	return nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                  → liveness + database ping
// GET    /metrics                  → Prometheus
// GET    /auth/github/login        → redirect to GitHub
// GET    /auth/github/callback     → OAuth callback, sets session cookie
// POST   /auth/logout              → clear session cookie
// GET    /api/me                   → current user              (auth)
// GET    /api/goals                → list goals                (auth)
// POST   /api/goals                → create goal               (auth)
// GET    /api/goals/streaks        → current streaks           (auth)
// DELETE /api/goals/{id}           → delete goal + progress    (auth)
// POST   /api/goals/{id}/progress  → record a day of progress  (auth)
// GET    /api/github/stats         → 30-day activity stats     (auth)
// GET    /api/recap?month=YYYY-MM  → monthly recap             (auth)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. Metrics — counts and times each request by route pattern
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))

	s.router.Get("/healthz", s.healthHandler.HandleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", s.authHandler.HandleGitHubLogin)
		r.Get("/github/callback", s.authHandler.HandleGitHubCallback)
		r.Post("/logout", s.authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens))

		r.Get("/me", s.authHandler.HandleMe)

		r.Get("/goals", s.goalHandler.HandleList)
		r.Post("/goals", s.goalHandler.HandleCreate)
		// Registered before /goals/{id}; chi prefers static segments anyway,
		// but reading top-down should say the same thing.
		r.Get("/goals/streaks", s.goalHandler.HandleStreaks)
		r.Delete("/goals/{id}", s.goalHandler.HandleDelete)
		r.Post("/goals/{id}/progress", s.goalHandler.HandleRecordProgress)

		r.Get("/github/stats", s.insightHandler.HandleStats)
		r.Get("/recap", s.insightHandler.HandleRecap)
	})
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.Close()

	// Create the HTTP server with sensible timeouts. WriteTimeout leaves
	// room for a recap, which waits on GitHub.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
