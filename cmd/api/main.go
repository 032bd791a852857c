package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/mygallery/internal/api"
	"github.com/timmy/mygallery/internal/app"
	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/logger"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(appLogger)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	gallery, err := app.Build(ctx, cfg, appLogger, nil)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize application")
	}

	// Persisted collection is loaded once at startup; a failure leaves the
	// collection empty with the error recorded in state.
	if err := gallery.Effects.LoadSavedImages(ctx); err != nil {
		appLogger.WithError(err).Warn("Failed to load saved images")
	}

	router := api.SetupRouter(gallery.Effects, gallery.Source, cfg.Server, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
