// Package main is the entry point for the Rokerz auth server.
//
// main reads configuration, builds the logger, and starts the server;
// all actual logic lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rokerz/rokerz-server/internal/server"
)

// defaultJWTSecret is the documented insecure fallback used when
// JWT_SECRET is unset. It exists so the server runs out of the box for
// local development; a warning is logged whenever it is in effect.
const defaultJWTSecret = "rokerz_secret_key"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Optional .env file for local development; real deployments set
	// the environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded configuration from .env")
	}

	port := 5000
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		logger.Warn("JWT_SECRET not set — using the insecure built-in default; do not do this in production")
	}

	cfg := server.Config{
		Port:                 port,
		StoreDriver:          envOr("STORE_DRIVER", "auto"),
		FirestoreProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirestoreCredentials: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		SQLitePath:           envOr("DB_PATH", "data/rokerz.db"),
		DataFile:             envOr("DATA_FILE", "data/users.json"),
		JWTSecret:            jwtSecret,
		GitHubClientID:       os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret:   os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:    os.Getenv("GITHUB_CALLBACK_URL"),
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server shuts down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
