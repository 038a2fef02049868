// Package stream decouples frame capture from inference for live sources.
// A producer submits captured frames; a background worker drains a bounded
// queue of face crops and runs them through the analysis pipeline. When the
// queue is full the newest crop is dropped so a live feed stays fresh.
package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/visioncraft-labs/emoscope/internal/analysis"
	"github.com/visioncraft-labs/emoscope/internal/detector"
	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/vision"
)

const (
	// DefaultFrameSkip processes one of every two captured frames.
	DefaultFrameSkip = 2
	// DefaultMaxWidth caps capture resolution before detection.
	DefaultMaxWidth = 640
	// DefaultQueueDepth bounds pending face crops awaiting inference.
	DefaultQueueDepth = 3
	// DefaultResultDepth bounds finished results awaiting collection.
	DefaultResultDepth = 5
)

// Config tunes the scheduler's throughput controls.
type Config struct {
	FrameSkip   int
	MaxWidth    int
	QueueDepth  int
	ResultDepth int
}

// DefaultConfig returns the tuning used for webcam-class sources.
func DefaultConfig() Config {
	return Config{
		FrameSkip:   DefaultFrameSkip,
		MaxWidth:    DefaultMaxWidth,
		QueueDepth:  DefaultQueueDepth,
		ResultDepth: DefaultResultDepth,
	}
}

func (c Config) withDefaults() Config {
	if c.FrameSkip < 1 {
		c.FrameSkip = DefaultFrameSkip
	}
	if c.MaxWidth < 1 {
		c.MaxWidth = DefaultMaxWidth
	}
	if c.QueueDepth < 1 {
		c.QueueDepth = DefaultQueueDepth
	}
	if c.ResultDepth < 1 {
		c.ResultDepth = DefaultResultDepth
	}
	return c
}

type task struct {
	crop *vision.Frame
	pos  vision.Region
}

// Scheduler feeds face crops from a live frame source into the analysis
// pipeline without blocking capture on inference latency.
type Scheduler struct {
	pipeline *analysis.Pipeline
	locator  detector.Locator
	cfg      Config
	logger   *slog.Logger

	pending chan task
	results chan *domain.Result

	frameCount uint64
	dropped    atomic.Uint64

	closeOnce sync.Once
}

// NewScheduler creates a scheduler around an analysis pipeline and a face
// locator. The locator runs on the producer side so frames without faces
// are rejected before they occupy queue capacity.
func NewScheduler(pipeline *analysis.Pipeline, locator detector.Locator, cfg Config, logger *slog.Logger) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		pipeline: pipeline,
		locator:  locator,
		cfg:      cfg,
		logger:   logger,
		pending:  make(chan task, cfg.QueueDepth),
		results:  make(chan *domain.Result, cfg.ResultDepth),
	}
}

// Run drains the pending queue until the context is cancelled. Call it from
// a dedicated goroutine; it owns the consumer side of the queue.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("streaming worker started",
		"frame_skip", s.cfg.FrameSkip,
		"queue_depth", s.cfg.QueueDepth,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("streaming worker stopped", "dropped_frames", s.dropped.Load())
			return
		case t, ok := <-s.pending:
			if !ok {
				s.logger.Info("streaming worker stopped", "dropped_frames", s.dropped.Load())
				return
			}
			result := s.pipeline.AnalyzeCrop(ctx, t.crop, t.pos)
			s.deliver(result)
		}
	}
}

// deliver pushes a result, discarding the oldest one when the buffer is
// full. A slow collector sees recent results, not a growing backlog.
func (s *Scheduler) deliver(result *domain.Result) {
	for {
		select {
		case s.results <- result:
			return
		default:
			select {
			case <-s.results:
			default:
			}
		}
	}
}

// Submit offers a captured frame to the scheduler. It applies the frame-skip
// factor, downscales to the configured width, locates faces, and enqueues
// one crop per face up to queue capacity. It never blocks; crops that do not
// fit are dropped. The return value reports how many crops were enqueued.
func (s *Scheduler) Submit(frame *vision.Frame) int {
	n := atomic.AddUint64(&s.frameCount, 1)
	if (n-1)%uint64(s.cfg.FrameSkip) != 0 {
		return 0
	}

	scaled := frame.CapWidth(s.cfg.MaxWidth)
	regions, err := s.locator.Locate(scaled)
	if err != nil {
		s.logger.Warn("face detection failed on streamed frame", "error", err)
		return 0
	}

	enqueued := 0
	for _, region := range regions {
		crop, err := scaled.Crop(region)
		if err != nil {
			continue
		}
		select {
		case s.pending <- task{crop: crop, pos: region}:
			enqueued++
		default:
			s.dropped.Add(1)
			return enqueued
		}
	}
	return enqueued
}

// Results exposes the bounded result queue. Each capture tick may poll it
// non-blockingly for zero or one available result.
func (s *Scheduler) Results() <-chan *domain.Result {
	return s.results
}

// Poll returns the next available result without blocking.
func (s *Scheduler) Poll() (*domain.Result, bool) {
	select {
	case r := <-s.results:
		return r, true
	default:
		return nil, false
	}
}

// Dropped reports how many face crops were discarded because the pending
// queue was full.
func (s *Scheduler) Dropped() uint64 {
	return s.dropped.Load()
}

// Pending reports the number of crops currently awaiting inference.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Close releases queue resources once no more frames will be submitted.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.pending)
	})
}
