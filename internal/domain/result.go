package domain

import (
	"time"

	"github.com/google/uuid"
)

// Engagement is the coarse tier derived from the dominant emotion and its
// score.
type Engagement string

const (
	EngagementHigh   Engagement = "high"
	EngagementMedium Engagement = "medium"
	EngagementLow    Engagement = "low"
	// EngagementNone marks results where no face was found and no tier
	// applies.
	EngagementNone Engagement = "none"
)

// FailureReason classifies why an analysis produced no emotion breakdown.
type FailureReason string

const (
	ReasonNoFaceDetected   FailureReason = "no_face_detected"
	ReasonDecodeError      FailureReason = "decode_error"
	ReasonModelUnavailable FailureReason = "model_unavailable"
	ReasonInternalError    FailureReason = "internal_error"
)

// FacePosition locates the analyzed face inside the submitted image.
type FacePosition struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Result is the outcome of a single analysis call. Exactly one Result exists
// per call, for successes and failures alike. Use NewSuccessResult and
// NewFailureResult; they keep the success/failure halves consistent so
// consumers never read fields the other variant left unset.
type Result struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"-"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`

	Success       bool `json:"success"`
	FacesDetected int  `json:"faces_detected"`

	// Success fields. Scores is nil on failure.
	DominantEmotion Emotion       `json:"dominant_emotion,omitempty"`
	DominantScore   float64       `json:"dominant_emotion_score,omitempty"`
	Scores          *Scores       `json:"emotions_scores,omitempty"`
	Engagement      Engagement    `json:"engagement,omitempty"`
	FacePosition    *FacePosition `json:"face_position,omitempty"`

	// Failure field. Empty on success.
	Reason FailureReason `json:"error_reason,omitempty"`

	// Always present.
	ImageQuality float64   `json:"image_quality"`
	ProcessingMs float64   `json:"processing_time_ms"`
	AvgFPS       float64   `json:"avg_fps"`
	ImageSize    string    `json:"image_size,omitempty"`
	CacheHit     bool      `json:"cache_hit"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSuccessResult builds the success variant. The dominant label and score
// are derived from the score vector, never passed separately.
func NewSuccessResult(scores Scores, engagement Engagement, facesDetected int, pos *FacePosition, quality, processingMs float64) *Result {
	dominant, score := scores.Dominant()
	return &Result{
		Success:         true,
		FacesDetected:   facesDetected,
		DominantEmotion: dominant,
		DominantScore:   score,
		Scores:          &scores,
		Engagement:      engagement,
		FacePosition:    pos,
		ImageQuality:    quality,
		ProcessingMs:    processingMs,
		AvgFPS:          fpsFromMs(processingMs),
	}
}

// NewFailureResult builds the failure variant. FacesDetected is always zero:
// a detected face that later fails classification is reported through
// ReasonInternalError with the count reset, matching how failed analyses are
// counted in session statistics.
func NewFailureResult(reason FailureReason, quality, processingMs float64) *Result {
	return &Result{
		Success:      false,
		Reason:       reason,
		Engagement:   EngagementNone,
		ImageQuality: quality,
		ProcessingMs: processingMs,
		AvgFPS:       fpsFromMs(processingMs),
	}
}

func fpsFromMs(ms float64) float64 {
	if ms <= 0 {
		return 0
	}
	return 1000 / ms
}

// EngagementValue maps a tier to a numeric weight used for session-level
// engagement averaging.
func (e Engagement) Value() float64 {
	switch e {
	case EngagementHigh:
		return 1.0
	case EngagementMedium:
		return 0.5
	default:
		return 0.0
	}
}
