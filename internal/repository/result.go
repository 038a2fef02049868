package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

type ResultRepository struct {
	pool PgxPool
}

func NewResultRepository(pool PgxPool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create persists one analysis result. Inserting the same result ID twice is
// a no-op so a retried record call cannot double-count a session's stats row.
func (r *ResultRepository) Create(ctx context.Context, result *domain.Result) error {
	query := `
		INSERT INTO emotion_results (
			id, user_id, session_id, success, faces_detected,
			dominant_emotion, dominant_score, scores, engagement, error_reason,
			face_x, face_y, face_width, face_height,
			image_quality, processing_ms, avg_fps, image_size, cache_hit, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}

	var scores *pgvector.Vector
	if result.Scores != nil {
		vec := pgvector.NewVector(result.Scores.Vector())
		scores = &vec
	}

	var faceX, faceY, faceWidth, faceHeight *int
	if pos := result.FacePosition; pos != nil {
		faceX, faceY, faceWidth, faceHeight = &pos.X, &pos.Y, &pos.Width, &pos.Height
	}

	_, err := r.pool.Exec(ctx, query,
		result.ID,
		result.UserID,
		result.SessionID,
		result.Success,
		result.FacesDetected,
		nullableLabel(string(result.DominantEmotion)),
		result.DominantScore,
		scores,
		string(result.Engagement),
		nullableLabel(string(result.Reason)),
		faceX,
		faceY,
		faceWidth,
		faceHeight,
		result.ImageQuality,
		result.ProcessingMs,
		result.AvgFPS,
		result.ImageSize,
		result.CacheHit,
	)
	if err != nil {
		return fmt.Errorf("create emotion result: %w", err)
	}

	return nil
}

func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Result, error) {
	query := `
		SELECT id, user_id, session_id, success, faces_detected,
			dominant_emotion, dominant_score, scores, engagement, error_reason,
			face_x, face_y, face_width, face_height,
			image_quality, processing_ms, avg_fps, image_size, cache_hit, created_at
		FROM emotion_results
		WHERE id = $1
	`

	result, err := scanResult(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get emotion result by id: %w", err)
	}

	return result, nil
}

func (r *ResultRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Result, error) {
	query := `
		SELECT id, user_id, session_id, success, faces_detected,
			dominant_emotion, dominant_score, scores, engagement, error_reason,
			face_x, face_y, face_width, face_height,
			image_quality, processing_ms, avg_fps, image_size, cache_hit, created_at
		FROM emotion_results
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list emotion results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan emotion result: %w", err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list emotion results: %w", err)
	}

	return results, nil
}

// ListSimilar returns the user's successful analyses whose emotion profile
// is closest to the given score vector, nearest first. Distance is L2 over
// the stored 7-dim vector. The reference result itself is excluded.
func (r *ResultRepository) ListSimilar(ctx context.Context, userID, excludeID uuid.UUID, scores domain.Scores, limit int) ([]domain.Result, error) {
	query := `
		SELECT id, user_id, session_id, success, faces_detected,
			dominant_emotion, dominant_score, scores, engagement, error_reason,
			face_x, face_y, face_width, face_height,
			image_quality, processing_ms, avg_fps, image_size, cache_hit, created_at
		FROM emotion_results
		WHERE user_id = $1 AND id <> $2 AND success AND scores IS NOT NULL
		ORDER BY scores <-> $3
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, userID, excludeID, pgvector.NewVector(scores.Vector()), limit)
	if err != nil {
		return nil, fmt.Errorf("list similar results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan emotion result: %w", err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list similar results: %w", err)
	}

	return results, nil
}

func scanResult(row pgx.Row) (*domain.Result, error) {
	var result domain.Result
	var dominant, reason *string
	var engagement string
	var scores *pgvector.Vector
	var faceX, faceY, faceWidth, faceHeight *int

	err := row.Scan(
		&result.ID,
		&result.UserID,
		&result.SessionID,
		&result.Success,
		&result.FacesDetected,
		&dominant,
		&result.DominantScore,
		&scores,
		&engagement,
		&reason,
		&faceX,
		&faceY,
		&faceWidth,
		&faceHeight,
		&result.ImageQuality,
		&result.ProcessingMs,
		&result.AvgFPS,
		&result.ImageSize,
		&result.CacheHit,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dominant != nil {
		result.DominantEmotion = domain.Emotion(*dominant)
	}
	result.Engagement = domain.Engagement(engagement)
	if reason != nil {
		result.Reason = domain.FailureReason(*reason)
	}
	if scores != nil && scores.Slice() != nil {
		s, err := domain.ScoresFromVector(scores.Slice())
		if err != nil {
			return nil, err
		}
		result.Scores = &s
	}
	if faceX != nil && faceY != nil && faceWidth != nil && faceHeight != nil {
		result.FacePosition = &domain.FacePosition{X: *faceX, Y: *faceY, Width: *faceWidth, Height: *faceHeight}
	}

	return &result, nil
}

func nullableLabel(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
