package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/visioncraft-labs/emoscope/internal/analysis"
	"github.com/visioncraft-labs/emoscope/internal/api"
	"github.com/visioncraft-labs/emoscope/internal/cache"
	"github.com/visioncraft-labs/emoscope/internal/classifier"
	"github.com/visioncraft-labs/emoscope/internal/config"
	"github.com/visioncraft-labs/emoscope/internal/database"
	"github.com/visioncraft-labs/emoscope/internal/detector"
	"github.com/visioncraft-labs/emoscope/internal/repository"
	"github.com/visioncraft-labs/emoscope/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Emoscope API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Face detector. Load failure is fatal: the service must not accept
	// analysis requests without a working detector.
	locator, err := detector.New(detector.Options{
		Type:        cfg.DetectorType,
		CascadePath: cfg.CascadePath,
		Config: detector.Config{
			ScaleFactor:  cfg.DetectorScaleFactor,
			MinNeighbors: cfg.DetectorMinNeighbors,
			MinSize:      cfg.DetectorMinSize,
			MaxSize:      cfg.DetectorMaxSize,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to load face detector: %w", err)
	}
	defer func() { _ = locator.Close() }()

	// Emotion classifier, tried through the loader chain. Same rule: no
	// model, no service.
	cls, err := classifier.New(ctx, logger, classifier.Options{
		Type:            cfg.ClassifierType,
		ModelPaths:      cfg.ModelPaths,
		ONNXLibraryPath: cfg.ONNXLibraryPath,
		AWSRegion:       cfg.AWSRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to load emotion classifier: %w", err)
	}
	defer func() { _ = cls.Close() }()

	// Analysis pipeline with the inference cache
	pipeline := analysis.New(locator, cls, cache.NewInference(cfg.CacheCapacity), logger)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		ResultRepo:  repository.NewResultRepository(pool),
		SessionRepo: repository.NewSessionRepository(pool),
		Pipeline:    pipeline,
		Locator:     locator,
		StreamConfig: stream.Config{
			FrameSkip:  cfg.FrameSkipFactor,
			MaxWidth:   cfg.CaptureMaxWidth,
			QueueDepth: cfg.StreamQueueDepth,
		},
		DB: pool,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
