package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/analyzer"
	"github.com/BerylCAtieno/file-renamer-api/internal/config"
	"github.com/BerylCAtieno/file-renamer-api/internal/db"
	"github.com/BerylCAtieno/file-renamer-api/internal/export"
	"github.com/BerylCAtieno/file-renamer-api/internal/extractor"
	"github.com/BerylCAtieno/file-renamer-api/internal/handlers"
	"github.com/BerylCAtieno/file-renamer-api/internal/repository"
	"github.com/BerylCAtieno/file-renamer-api/internal/router"
	"github.com/BerylCAtieno/file-renamer-api/internal/services"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

const janitorInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.AppEnv, cfg.SentryDSN)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer database.Close()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err, "backend", cfg.StorageBackend)
	}

	model, closeModel, err := analyzer.NewModel(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model", "error", err, "provider", cfg.LLMProvider)
	}
	defer closeModel()

	proposerCfg := analyzer.ProposerConfig{Timeout: cfg.LLMTimeout}
	if cfg.NamingPolicy != nil {
		proposerCfg.Policy = cfg.NamingPolicy.Rules
		proposerCfg.DefaultInstructions = cfg.NamingPolicy.DefaultInstructions
	}
	proposer := analyzer.NewProposer(model, logger, proposerCfg)
	captioner := analyzer.NewCaptioner(model, logger, cfg.CaptionCacheSize, cfg.CaptionCacheTTL, cfg.LLMTimeout)

	pipeline := services.NewPipeline(extractor.New(logger), proposer, captioner, store, cfg.ProposeConcurrency, logger)
	archiver := export.NewArchiver(logger)

	sessionService := services.NewSessionService(repository.NewRepository(database), store, pipeline, cfg.SessionTTL, logger)
	stagingService := services.NewStagingService(store, cfg, logger)

	go services.RunJanitor(ctx, sessionService, janitorInterval, logger)

	// Setup HTTP router
	handler := router.NewRouter(
		handlers.NewRenameHandler(pipeline, stagingService, archiver, cfg.MaxUploadSize, logger),
		handlers.NewSessionHandler(sessionService, archiver, cfg.MaxUploadSize, logger),
		logger,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"provider", cfg.LLMProvider,
			"storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
