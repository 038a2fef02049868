package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session status values.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// Session groups the analyses of one streaming run and carries the rolled-up
// statistics the dashboards report on.
type Session struct {
	ID               uuid.UUID    `json:"id"`
	UserID           uuid.UUID    `json:"-"`
	Status           string       `json:"status"`
	CameraResolution string       `json:"camera_resolution,omitempty"`
	StartedAt        time.Time    `json:"started_at"`
	EndedAt          *time.Time   `json:"ended_at,omitempty"`
	Stats            SessionStats `json:"stats"`
}

// SessionStats are running counters updated after every recorded result.
// The session service owns accumulation; the pipeline only emits deltas.
type SessionStats struct {
	TotalAnalyses        int     `json:"total_analyses"`
	SuccessfulDetections int     `json:"successful_detections"`
	FailedDetections     int     `json:"failed_detections"`
	DetectionRate        float64 `json:"detection_rate"`
	AvgEngagement        float64 `json:"average_engagement"`
	AvgProcessingMs      float64 `json:"avg_processing_time_ms"`
	AvgFPS               float64 `json:"avg_fps"`
	CacheHits            int     `json:"total_cache_hits"`
	CacheHitRate         float64 `json:"cache_hit_rate"`
}

// StatsDelta is the per-result increment derived from one Result.
type StatsDelta struct {
	Success      bool
	Engagement   Engagement
	ProcessingMs float64
	FPS          float64
	CacheHit     bool
}

// DeltaFor extracts the stats increment for a recorded result.
func DeltaFor(r *Result) StatsDelta {
	return StatsDelta{
		Success:      r.Success,
		Engagement:   r.Engagement,
		ProcessingMs: r.ProcessingMs,
		FPS:          r.AvgFPS,
		CacheHit:     r.CacheHit,
	}
}

// Apply folds one delta into the running counters. Averages are maintained
// incrementally so no per-result history is needed.
func (s *SessionStats) Apply(d StatsDelta) {
	prev := float64(s.TotalAnalyses)
	s.TotalAnalyses++
	n := float64(s.TotalAnalyses)

	if d.Success {
		s.SuccessfulDetections++
	} else {
		s.FailedDetections++
	}
	s.DetectionRate = float64(s.SuccessfulDetections) / n

	s.AvgProcessingMs = (s.AvgProcessingMs*prev + d.ProcessingMs) / n
	s.AvgFPS = (s.AvgFPS*prev + d.FPS) / n

	if d.Success {
		m := float64(s.SuccessfulDetections)
		s.AvgEngagement = (s.AvgEngagement*(m-1) + d.Engagement.Value()) / m
	}

	if d.CacheHit {
		s.CacheHits++
	}
	s.CacheHitRate = float64(s.CacheHits) / n
}
