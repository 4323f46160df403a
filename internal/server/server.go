// Package server wires handlers, middleware, and routes together and
// runs the HTTP server.
//
// This is the composition root: the storage backend is selected and
// opened exactly once here, then injected down the chain. The service
// receives the store interface, the handlers receive the service, and
// nothing below this package knows which backend is active.
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
	"github.com/go-chi/cors"

	"github.com/rokerz/rokerz-server/internal/auth"
	"github.com/rokerz/rokerz-server/internal/handler"
	"github.com/rokerz/rokerz-server/internal/middleware"
	"github.com/rokerz/rokerz-server/internal/service"
	"github.com/rokerz/rokerz-server/internal/store"
	fileStore "github.com/rokerz/rokerz-server/internal/store/file"
	firestoreStore "github.com/rokerz/rokerz-server/internal/store/firestore"
	sqliteStore "github.com/rokerz/rokerz-server/internal/store/sqlite"
)

// Config holds server configuration, loaded from the environment in
// cmd/server.
type Config struct {
	Port int

	// StoreDriver selects the persistence backend: "firestore",
	// "sqlite", "file", or "auto" (try Firestore, fall back to file).
	StoreDriver string

	FirestoreProjectID   string
	FirestoreCredentials string // base64-encoded service-account JSON
	SQLitePath           string
	DataFile             string

	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the storage backend; the backend is closed
// during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	users  store.UserStore
}

// New selects and opens the storage backend, assembles the dependency
// chain, and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	users, err := openStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening user store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		users:  users,
	}

	if err := s.setupRoutes(); err != nil {
		users.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore opens the backend named by cfg.StoreDriver.
//
// "auto" reproduces the original deployment behavior: try the document
// store and, on any failure, log and permanently downgrade to the JSON
// file store for the process lifetime. The selection happens once; it
// is never re-evaluated per request.
func openStore(cfg Config, logger *slog.Logger) (store.UserStore, error) {
	switch cfg.StoreDriver {
	case "firestore":
		return firestoreStore.New(context.Background(), cfg.FirestoreProjectID, cfg.FirestoreCredentials)

	case "sqlite":
		return sqliteStore.New(cfg.SQLitePath)

	case "file":
		return fileStore.New(cfg.DataFile)

	case "", "auto":
		users, err := firestoreStore.New(context.Background(), cfg.FirestoreProjectID, cfg.FirestoreCredentials)
		if err == nil {
			logger.Info("user store: firestore")
			return users, nil
		}
		logger.Warn("document store unavailable, falling back to JSON file store",
			slog.String("error", err.Error()),
			slog.String("file", cfg.DataFile),
		)
		return fileStore.New(cfg.DataFile)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// setupRoutes configures middleware and registers all route handlers.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The site frontend is served from a different origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.TokenHeader},
		ExposedHeaders: []string{auth.TokenHeader},
	}))

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Rokerz Server is Running"))
	})

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authService := service.NewAuthService(s.users, tokens, passwords, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, s.logger)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: in-flight requests get 30 seconds to finish and the
// storage backend is closed afterwards.
func (s *Server) Start() error {
	defer s.users.Close()

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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
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
