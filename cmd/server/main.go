package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petzzshop/ops-backend/internal/api"
	"github.com/petzzshop/ops-backend/internal/cache"
	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/engine"
	"github.com/petzzshop/ops-backend/internal/repository"
	"github.com/petzzshop/ops-backend/internal/repository/postgres"
	"github.com/petzzshop/ops-backend/internal/service"
	"github.com/petzzshop/ops-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize decision cache (noop when disabled)
	decisionCache, err := cache.NewDecisionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("decision cache unavailable, continuing without it")
		decisionCache = cache.NewNoopDecisionCache()
	}

	// Initialize engine and services
	eng := engine.New(cfg.Engine)
	signalRepo := repository.NewSignalRepository(db.DB)

	services := &api.Services{
		DecisionService:       service.NewDecisionService(signalRepo, eng, decisionCache),
		RecommendationService: service.NewRecommendationService(signalRepo, eng),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
