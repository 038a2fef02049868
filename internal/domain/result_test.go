package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuccessResult(t *testing.T) {
	scores := Scores{1, 2, 3, 92.5, 4, 5, 6}
	pos := &FacePosition{X: 10, Y: 20, Width: 100, Height: 100}

	r := NewSuccessResult(scores, EngagementHigh, 1, pos, 0.8, 40)

	assert.True(t, r.Success)
	assert.Equal(t, EmotionHappy, r.DominantEmotion)
	assert.Equal(t, 92.5, r.DominantScore)
	require.NotNil(t, r.Scores)
	assert.Equal(t, scores, *r.Scores)
	assert.Equal(t, 1, r.FacesDetected)
	assert.Empty(t, r.Reason)
	assert.Equal(t, 0.8, r.ImageQuality)
	assert.InDelta(t, 25.0, r.AvgFPS, 1e-9)
}

func TestNewFailureResult(t *testing.T) {
	r := NewFailureResult(ReasonNoFaceDetected, 0.5, 12)

	assert.False(t, r.Success)
	assert.Equal(t, ReasonNoFaceDetected, r.Reason)
	assert.Zero(t, r.FacesDetected)
	assert.Nil(t, r.Scores)
	assert.Equal(t, EngagementNone, r.Engagement)
	assert.Equal(t, 0.5, r.ImageQuality)
}

func TestFPSZeroProcessingTime(t *testing.T) {
	r := NewFailureResult(ReasonDecodeError, 0.5, 0)
	assert.Zero(t, r.AvgFPS)
}

func TestSessionStats_Apply(t *testing.T) {
	var s SessionStats

	s.Apply(StatsDelta{Success: true, Engagement: EngagementHigh, ProcessingMs: 40, FPS: 25, CacheHit: false})
	s.Apply(StatsDelta{Success: false, ProcessingMs: 20, FPS: 50, CacheHit: false})
	s.Apply(StatsDelta{Success: true, Engagement: EngagementLow, ProcessingMs: 60, FPS: 25, CacheHit: true})

	assert.Equal(t, 3, s.TotalAnalyses)
	assert.Equal(t, 2, s.SuccessfulDetections)
	assert.Equal(t, 1, s.FailedDetections)
	assert.InDelta(t, 2.0/3.0, s.DetectionRate, 1e-9)
	assert.InDelta(t, 40.0, s.AvgProcessingMs, 1e-9)
	// Engagement averages over successful detections only.
	assert.InDelta(t, 0.5, s.AvgEngagement, 1e-9)
	assert.Equal(t, 1, s.CacheHits)
	assert.InDelta(t, 1.0/3.0, s.CacheHitRate, 1e-9)
}
