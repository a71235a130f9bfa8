package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/linkuphq/backend/internal/router"
	"github.com/linkuphq/backend/pkg/config"
	"github.com/linkuphq/backend/pkg/firebase"
	"github.com/linkuphq/backend/pkg/logger"
	"github.com/linkuphq/backend/pkg/storage"
	"github.com/linkuphq/backend/validators"
)

func main() {
	// Load configuration and initialize the logger first so everything
	// after this logs structured.
	cfg := config.Load()
	logger.Init(cfg.Env)
	logger.Info().Str("environment", cfg.Env).Msg("Starting LinkUp backend")

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	ctx := context.Background()

	// Firebase login is optional: without credentials the route is
	// simply not registered.
	var firebaseAuthClient *auth.Client
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Firebase disabled")
	}
	if firebaseApp != nil {
		firebaseAuthClient = firebaseApp.AuthClient
	}

	// Avatar uploads are optional the same way.
	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Avatar storage disabled")
		store = nil
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Validator
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, cfg, db, firebaseAuthClient, store); err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up routes")
	}

	// Start server with graceful shutdown
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
