// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the one place where the database, services,
// handlers and middleware are wired together. main.go only builds a Config
// and calls New + Start.
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

	"github.com/sakif/hackathon-api/internal/auth"
	"github.com/sakif/hackathon-api/internal/handler"
	"github.com/sakif/hackathon-api/internal/middleware"
	sqliteRepo "github.com/sakif/hackathon-api/internal/repository/sqlite"
	"github.com/sakif/hackathon-api/internal/service"
)

// Config holds server configuration. Loaded from the environment in
// cmd/server; a struct keeps the New signature stable as options grow.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string        // required — New fails without it
	TokenTTL  time.Duration // zero means the token service default
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs — services get repository
// interfaces, handlers get services. The token secret is injected here
// rather than read from a constant, so a server simply cannot start with
// a known signing key.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("configuring token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// Middleware order matters: RequestID and RealIP first so the logger sees
// them, Recoverer before our logger so a panic still produces a log line
// with a 500 status.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()

	userService := service.NewUserService(s.db.Users(), passwords, s.logger)
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	scanService := service.NewScanService(s.db.Scans(), s.db.Users(), s.db.Connections(), s.logger)
	statsService := service.NewStatsService(s.db.Stats(), s.logger)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)
	scanHandler := handler.NewScanHandler(scanService)
	statsHandler := handler.NewStatsHandler(statsService)

	// Users
	s.router.Get("/users", userHandler.List)
	s.router.Post("/users", userHandler.Register)
	s.router.Get("/users/{id}", userHandler.Get)
	s.router.Put("/users/{id}", userHandler.Update)
	s.router.Get("/users/{id}/scans", scanHandler.ListByUser)
	s.router.Get("/users/{id}/activity-log", statsHandler.ActivityLog)

	// Auth
	s.router.Post("/login", authHandler.Login)
	s.router.With(middleware.Authenticate(tokens)).Get("/protected", authHandler.Protected)

	// Admin-only mutations
	admin := middleware.RequireAdmin(tokens, s.db.Users())
	s.router.With(admin).Delete("/users/{id}", userHandler.Delete)
	s.router.With(admin).Put("/promote-admin/{id}", userHandler.Promote)

	// Scans, badges, connections, snacks
	s.router.Get("/scans", scanHandler.List)
	s.router.Post("/scans/{user_id}", scanHandler.Record)
	s.router.Post("/check-in", scanHandler.CheckIn)
	s.router.Post("/check-out", scanHandler.CheckOut)
	s.router.Post("/connect/{user_id1}/{user_id2}", scanHandler.Connect)
	s.router.Post("/snacks/{user_id}", scanHandler.ClaimSnack)

	// Analytics
	s.router.Get("/scan-stats", statsHandler.ScanStats)
	s.router.Get("/scan-timeline", statsHandler.ScanTimeline)
	s.router.Get("/leaderboard", statsHandler.Leaderboard)
	s.router.Get("/popular-activities", statsHandler.PopularActivities)
	s.router.Get("/peak-times", statsHandler.PeakTimes)
	s.router.Get("/random-winner", statsHandler.RandomWinner)
}

// Router exposes the configured handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database connection. Start calls this on shutdown;
// tests that never call Start should call it themselves.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
