package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorials/internal/api/v1/router"
	"tutorials/internal/config"
	"tutorials/internal/logger"

	"github.com/joho/godotenv"
)

// @title Tutorials API
// @version 1.0
// @description CRUD and search over tutorials
// @host localhost:8080
// @BasePath /api
// @Schemes http https

func main() {
	// 1. Load configuration
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := logger.New("development")
		l.Fatal().Msgf("Error loading config: %v", err)
	}

	logger := logger.New(cfg.Environment)
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	// 2. Build router (and open the store)
	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	r, cleanup, err := router.New(ctx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.Fatal().Msgf("Failed to build router: %v", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error().Err(err).Msg("Failed to release resources")
		}
	}()

	// 3. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Start server in a goroutine
	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Msgf("Listen: %s", err)
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	logger.Info().Msg("Server shut down gracefully")
}
