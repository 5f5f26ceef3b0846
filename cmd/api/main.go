// Command api is the EasyFitness Data API server.
//
// Usage:
//
//	easyfitness-api
//	API_PORT=8080 easyfitness-api

// @title EasyFitness Data API
// @version 1.0.0
// @description AI plan generation, exercise catalog enrichment, and reference data API. Workout plans are generated by Gemini and enriched against the ExerciseDB catalog.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name EasyFitness
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/easyfitness/easyfitness-data/internal/api"
	"github.com/easyfitness/easyfitness-data/internal/cache"
	"github.com/easyfitness/easyfitness-data/internal/config"
	"github.com/easyfitness/easyfitness-data/internal/db"
	"github.com/easyfitness/easyfitness-data/internal/enrich"
	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
	"github.com/easyfitness/easyfitness-data/internal/genai"
	"github.com/easyfitness/easyfitness-data/internal/maintenance"
	"github.com/easyfitness/easyfitness-data/internal/reference"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// External clients
	catalog := exercisedb.NewClient(cfg.ExerciseDBBaseURL, cfg.ExerciseDBAPIKey, cfg.ExerciseDBAPIHost,
		cfg.CatalogRPM, cfg.CatalogTimeout, logger)
	ai := genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel,
		cfg.GenerationTokens, cfg.GenerationTemp, cfg.GenerationTimeout, logger)

	// Reference store + enrichment engine
	store := reference.NewPgStore(pool.Pool, logger)
	engine := enrich.NewEngine(catalog, store, logger)

	// Start maintenance tickers (reference refresh, cache stats)
	maintCfg := maintenance.DefaultConfig()
	maintCfg.ReferenceRefreshInterval = cfg.ReferenceRefreshInterval
	go maintenance.Start(ctx, catalog, store, appCache, maintCfg, logger)

	// Create router
	router := api.NewRouter(cfg, api.Deps{
		Pool:    pool,
		Cache:   appCache,
		Catalog: catalog,
		AI:      ai,
		Enrich:  engine,
		Store:   store,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 4 * time.Minute, // plan generation can run up to the AI timeout
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting EasyFitness Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
