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
	"github.com/visioncraft-labs/emoscope/internal/cache"
	"github.com/visioncraft-labs/emoscope/internal/capture"
	"github.com/visioncraft-labs/emoscope/internal/classifier"
	"github.com/visioncraft-labs/emoscope/internal/config"
	"github.com/visioncraft-labs/emoscope/internal/detector"
	"github.com/visioncraft-labs/emoscope/internal/stream"
)

// Live webcam demo: reads frames from the default capture device, runs them
// through the streaming scheduler and prints one line per analysis.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locator, err := detector.New(detector.Options{
		Type:        cfg.DetectorType,
		CascadePath: cfg.CascadePath,
		Config:      detector.StreamingConfig(),
	})
	if err != nil {
		return fmt.Errorf("failed to load face detector: %w", err)
	}
	defer func() { _ = locator.Close() }()

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

	pipeline := analysis.New(locator, cls, cache.NewInference(cfg.CacheCapacity), logger)

	sched := stream.NewScheduler(pipeline, locator, stream.Config{
		FrameSkip:   cfg.FrameSkipFactor,
		MaxWidth:    cfg.CaptureMaxWidth,
		QueueDepth:  cfg.StreamQueueDepth,
		ResultDepth: stream.DefaultResultDepth,
	}, logger)
	defer sched.Close()

	go sched.Run(ctx)

	go func() {
		for result := range sched.Results() {
			if result.Success {
				fmt.Printf("%s engagement=%s quality=%.2f cache_hit=%v %.1fms\n",
					result.DominantEmotion, result.Engagement,
					result.ImageQuality, result.CacheHit, result.ProcessingMs)
				continue
			}
			fmt.Printf("no result: %s quality=%.2f\n", result.Reason, result.ImageQuality)
		}
	}()

	cam := capture.NewCamera(0)
	if err := cam.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	defer func() { _ = cam.Close() }()

	logger.Info("streaming from camera, Ctrl-C to stop",
		slog.Int("frame_skip", cfg.FrameSkipFactor),
		slog.Int("max_width", cfg.CaptureMaxWidth),
	)

	ticker := time.NewTicker(time.Second / time.Duration(cam.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping",
				slog.Uint64("dropped_frames", sched.Dropped()),
				slog.Uint64("cache_hits", pipeline.CacheHits()),
			)
			return nil
		case <-ticker.C:
			frame, err := cam.ReadFrame()
			if err != nil {
				logger.Warn("frame read failed", slog.Any("error", err))
				continue
			}
			sched.Submit(frame)
		}
	}
}
