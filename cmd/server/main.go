// Package main is the entry point for the hackathon API server.
//
// main stays minimal: load configuration, build the logger, hand off to
// internal/server. All actual logic lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/hackathon-api/internal/server"
)

func main() {
	// .env is a development convenience; in production the variables come
	// from the real environment and the file simply doesn't exist.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/hackathon.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The signing key is mandatory. Refusing to start beats silently
	// falling back to a key an attacker could read out of the source.
	// Generate one with: openssl rand -hex 32
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET not set — refusing to start")
		os.Exit(1)
	}

	var tokenTTL time.Duration
	if ttlStr := os.Getenv("TOKEN_TTL_MINUTES"); ttlStr != "" {
		minutes, err := strconv.Atoi(ttlStr)
		if err != nil || minutes <= 0 {
			logger.Error("invalid TOKEN_TTL_MINUTES value", slog.String("value", ttlStr))
			os.Exit(1)
		}
		tokenTTL = time.Duration(minutes) * time.Minute
	}

	cfg := server.Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
