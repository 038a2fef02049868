// Package classifier wraps the emotion scoring model behind a small
// interface with three backends: a local ONNX session, AWS Rekognition, and
// a deterministic mock for tests and development.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/preprocess"
)

// ErrUnavailable marks a backend that is temporarily unable to serve
// inference, as opposed to a bad input or a broken model. Callers report it
// as a model-unavailable outcome rather than an internal error.
var ErrUnavailable = errors.New("classifier backend unavailable")

// Classifier maps a preprocessed face tensor to a score per canonical
// emotion, scaled to [0,100]. A failed call surfaces as an error for that
// call only; the classifier is never restarted mid-process.
type Classifier interface {
	Classify(ctx context.Context, face *preprocess.Tensor) (domain.Scores, error)

	// Close releases model resources.
	Close() error
}

// scoresFromVector converts a raw model output vector (probabilities in
// [0,1]) into the domain representation scaled to [0,100].
func scoresFromVector(raw []float32) (domain.Scores, error) {
	if len(raw) != domain.EmotionCount {
		return domain.Scores{}, fmt.Errorf("model returned %d scores, want %d", len(raw), domain.EmotionCount)
	}
	var scores domain.Scores
	for i, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.Scores{}, fmt.Errorf("model returned non-finite score at index %d", i)
		}
		scores[i] = f * 100
	}
	if err := scores.Validate(); err != nil {
		return domain.Scores{}, err
	}
	return scores, nil
}
