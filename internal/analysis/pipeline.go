// Package analysis orchestrates the per-image emotion pipeline: detection,
// preprocessing, cached inference, quality and engagement scoring.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/visioncraft-labs/emoscope/internal/cache"
	"github.com/visioncraft-labs/emoscope/internal/classifier"
	"github.com/visioncraft-labs/emoscope/internal/detector"
	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/engagement"
	"github.com/visioncraft-labs/emoscope/internal/preprocess"
	"github.com/visioncraft-labs/emoscope/internal/quality"
	"github.com/visioncraft-labs/emoscope/internal/vision"
)

// Pipeline runs the analysis stages for one frame at a time. A Pipeline is
// safe for concurrent use: per-call state lives on the stack, and the shared
// model and cache handle their own synchronization.
type Pipeline struct {
	locator    detector.Locator
	classifier classifier.Classifier
	cache      *cache.Inference
	logger     *slog.Logger
}

// New wires the pipeline. All collaborators are required; the process must
// not construct a pipeline around a missing detector or model.
func New(locator detector.Locator, cls classifier.Classifier, inferenceCache *cache.Inference, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		locator:    locator,
		classifier: cls,
		cache:      inferenceCache,
		logger:     logger,
	}
}

// CacheHits exposes the shared cache hit counter for session statistics.
func (p *Pipeline) CacheHits() uint64 {
	return p.cache.Hits()
}

// Analyze processes one frame end to end and always returns exactly one
// result; failures of any stage come back as failure results, never as
// panics or errors. Only the first detected face is classified; the count of
// all detected faces is reported.
func (p *Pipeline) Analyze(ctx context.Context, frame *vision.Frame) (result *domain.Result) {
	start := time.Now()
	imageQuality := quality.Assess(frame)

	// A panic in any stage must cost this call only.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("analysis panicked", slog.Any("panic", r))
			result = p.finish(domain.NewFailureResult(domain.ReasonInternalError, imageQuality, msSince(start)), frame)
		}
	}()

	if p.classifier == nil {
		return p.finish(domain.NewFailureResult(domain.ReasonModelUnavailable, imageQuality, msSince(start)), frame)
	}

	regions, err := p.locator.Locate(frame)
	if err != nil {
		p.logger.Error("face detection failed", slog.Any("error", err))
		return p.finish(domain.NewFailureResult(domain.ReasonInternalError, imageQuality, msSince(start)), frame)
	}
	if len(regions) == 0 {
		return p.finish(domain.NewFailureResult(domain.ReasonNoFaceDetected, imageQuality, msSince(start)), frame)
	}

	primary := regions[0]
	scores, hit, err := p.classifyRegion(ctx, frame, primary)
	if err != nil {
		p.logger.Error("classification failed", slog.Any("error", err))
		return p.finish(domain.NewFailureResult(classifyFailureReason(err), imageQuality, msSince(start)), frame)
	}

	dominant, score := scores.Dominant()
	tier := engagement.Classify(dominant, score)

	result = domain.NewSuccessResult(
		scores,
		tier,
		len(regions),
		&domain.FacePosition{X: primary.X, Y: primary.Y, Width: primary.Width, Height: primary.Height},
		imageQuality,
		msSince(start),
	)
	result.CacheHit = hit
	return p.finish(result, frame)
}

// AnalyzeCrop classifies a pre-cropped face frame, skipping detection. The
// streaming scheduler uses it for queued crops whose detection already
// happened on the capture side.
func (p *Pipeline) AnalyzeCrop(ctx context.Context, crop *vision.Frame, pos vision.Region) (result *domain.Result) {
	start := time.Now()
	imageQuality := quality.Assess(crop)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("crop analysis panicked", slog.Any("panic", r))
			result = p.finish(domain.NewFailureResult(domain.ReasonInternalError, imageQuality, msSince(start)), crop)
		}
	}()

	if p.classifier == nil {
		return p.finish(domain.NewFailureResult(domain.ReasonModelUnavailable, imageQuality, msSince(start)), crop)
	}

	full := vision.Region{X: 0, Y: 0, Width: crop.Width, Height: crop.Height}
	scores, hit, err := p.classifyRegion(ctx, crop, full)
	if err != nil {
		p.logger.Error("crop classification failed", slog.Any("error", err))
		return p.finish(domain.NewFailureResult(classifyFailureReason(err), imageQuality, msSince(start)), crop)
	}

	dominant, score := scores.Dominant()
	tier := engagement.Classify(dominant, score)

	result = domain.NewSuccessResult(scores, tier, 1, &domain.FacePosition{
		X: pos.X, Y: pos.Y, Width: pos.Width, Height: pos.Height,
	}, imageQuality, msSince(start))
	result.CacheHit = hit
	return p.finish(result, crop)
}

// classifyRegion runs preprocess → cache lookup → inference → cache store
// for one face region. The bool reports whether the cache answered.
func (p *Pipeline) classifyRegion(ctx context.Context, frame *vision.Frame, region vision.Region) (domain.Scores, bool, error) {
	tensor, err := preprocess.Prepare(frame, region)
	if err != nil {
		return domain.Scores{}, false, err
	}

	fingerprint := tensor.Fingerprint()
	if entry, ok := p.cache.Lookup(fingerprint); ok {
		return entry.Scores, true, nil
	}

	scores, err := p.classifier.Classify(ctx, tensor)
	if err != nil {
		return domain.Scores{}, false, err
	}

	dominant, _ := scores.Dominant()
	p.cache.Store(fingerprint, cache.Entry{Scores: scores, Dominant: dominant})
	return scores, false, nil
}

// classifyFailureReason distinguishes a backend that is down from a broken
// input or model.
func classifyFailureReason(err error) domain.FailureReason {
	if errors.Is(err, classifier.ErrUnavailable) {
		return domain.ReasonModelUnavailable
	}
	return domain.ReasonInternalError
}

func (p *Pipeline) finish(r *domain.Result, frame *vision.Frame) *domain.Result {
	if frame != nil {
		r.ImageSize = frame.Size()
	}
	return r
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
