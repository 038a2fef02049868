package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

type SessionRepository struct {
	pool PgxPool
}

func NewSessionRepository(pool PgxPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO analysis_sessions (id, user_id, status, camera_resolution, started_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING started_at
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.Status = domain.SessionActive

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.Status,
		session.CameraResolution,
	).Scan(&session.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionExists
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, user_id, status, camera_resolution, started_at, ended_at,
			total_analyses, successful_detections, failed_detections,
			avg_engagement, avg_processing_ms, avg_fps, cache_hits
		FROM analysis_sessions
		WHERE id = $1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// End marks a session finished and returns its final state. Ending an
// already-ended session fails so clients cannot reopen closed runs.
func (r *SessionRepository) End(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		UPDATE analysis_sessions
		SET status = $2, ended_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING id, user_id, status, camera_resolution, started_at, ended_at,
			total_analyses, successful_detections, failed_detections,
			avg_engagement, avg_processing_ms, avg_fps, cache_hits
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, domain.SessionEnded, domain.SessionActive))
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing session from one that already ended.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrSessionEnded
	}
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}

	return session, nil
}

// ApplyDelta folds one result's increment into the session counters in a
// single statement, so concurrent record calls cannot lose updates. Averages
// are maintained incrementally from the pre-update totals.
func (r *SessionRepository) ApplyDelta(ctx context.Context, id uuid.UUID, delta domain.StatsDelta) error {
	query := `
		UPDATE analysis_sessions
		SET
			total_analyses = total_analyses + 1,
			successful_detections = successful_detections + $2,
			failed_detections = failed_detections + $3,
			avg_engagement = CASE
				WHEN $2 = 1 THEN (avg_engagement * successful_detections + $4) / (successful_detections + 1)
				ELSE avg_engagement
			END,
			avg_processing_ms = (avg_processing_ms * total_analyses + $5) / (total_analyses + 1),
			avg_fps = (avg_fps * total_analyses + $6) / (total_analyses + 1),
			cache_hits = cache_hits + $7
		WHERE id = $1
	`

	succ, fail, hit := 0, 1, 0
	if delta.Success {
		succ, fail = 1, 0
	}
	if delta.CacheHit {
		hit = 1
	}

	result, err := r.pool.Exec(ctx, query,
		id,
		succ,
		fail,
		delta.Engagement.Value(),
		delta.ProcessingMs,
		delta.FPS,
		hit,
	)
	if err != nil {
		return fmt.Errorf("apply session delta: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Status,
		&session.CameraResolution,
		&session.StartedAt,
		&session.EndedAt,
		&session.Stats.TotalAnalyses,
		&session.Stats.SuccessfulDetections,
		&session.Stats.FailedDetections,
		&session.Stats.AvgEngagement,
		&session.Stats.AvgProcessingMs,
		&session.Stats.AvgFPS,
		&session.Stats.CacheHits,
	)
	if err != nil {
		return nil, err
	}

	// Rates are derived, not stored.
	if session.Stats.TotalAnalyses > 0 {
		n := float64(session.Stats.TotalAnalyses)
		session.Stats.DetectionRate = float64(session.Stats.SuccessfulDetections) / n
		session.Stats.CacheHitRate = float64(session.Stats.CacheHits) / n
	}

	return &session, nil
}
