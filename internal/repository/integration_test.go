//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "emoscope_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/emoscope_test?sslmode=disable", host, port.Port())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS "pgcrypto";
		CREATE EXTENSION IF NOT EXISTS "vector";

		CREATE TABLE analysis_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			camera_resolution TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			total_analyses INTEGER NOT NULL DEFAULT 0,
			successful_detections INTEGER NOT NULL DEFAULT 0,
			failed_detections INTEGER NOT NULL DEFAULT 0,
			avg_engagement DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_processing_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_fps DOUBLE PRECISION NOT NULL DEFAULT 0,
			cache_hits INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE emotion_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			session_id UUID REFERENCES analysis_sessions (id) ON DELETE CASCADE,
			success BOOLEAN NOT NULL,
			faces_detected INTEGER NOT NULL DEFAULT 0,
			dominant_emotion TEXT,
			dominant_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			scores VECTOR(7),
			engagement TEXT NOT NULL DEFAULT 'none',
			error_reason TEXT,
			face_x INTEGER,
			face_y INTEGER,
			face_width INTEGER,
			face_height INTEGER,
			image_quality DOUBLE PRECISION NOT NULL DEFAULT 0,
			processing_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_fps DOUBLE PRECISION NOT NULL DEFAULT 0,
			image_size TEXT NOT NULL DEFAULT '',
			cache_hit BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func scoresWith(dominant domain.Emotion, value float64) domain.Scores {
	var s domain.Scores
	for i, label := range domain.Emotions {
		if label == dominant {
			s[i] = value
		}
	}
	return s
}

func TestResultLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	results := NewResultRepository(db)
	sessions := NewSessionRepository(db)
	userID := uuid.New()

	session := &domain.Session{UserID: userID, CameraResolution: "1280x720"}
	require.NoError(t, sessions.Create(ctx, session))
	require.NotEqual(t, uuid.Nil, session.ID)

	// One success and one failure, both attached to the session.
	success := domain.NewSuccessResult(scoresWith(domain.EmotionHappy, 92), domain.EngagementHigh, 1, nil, 0.8, 20)
	success.UserID = userID
	success.SessionID = &session.ID
	require.NoError(t, results.Create(ctx, success))

	failure := domain.NewFailureResult(domain.ReasonNoFaceDetected, 0.4, 12)
	failure.UserID = userID
	failure.SessionID = &session.ID
	require.NoError(t, results.Create(ctx, failure))

	// Re-inserting the same ID must not create a second row.
	require.NoError(t, results.Create(ctx, success))
	listed, err := results.ListBySession(ctx, session.ID, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	got, err := results.GetByID(ctx, success.ID)
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, domain.EmotionHappy, got.DominantEmotion)
	require.NotNil(t, got.Scores)
	assert.InDelta(t, 92, got.Scores.Get(domain.EmotionHappy), 1e-4)

	// Fold both results into the running counters.
	require.NoError(t, sessions.ApplyDelta(ctx, session.ID, domain.DeltaFor(success)))
	require.NoError(t, sessions.ApplyDelta(ctx, session.ID, domain.DeltaFor(failure)))

	stats, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Stats.TotalAnalyses)
	assert.Equal(t, 1, stats.Stats.SuccessfulDetections)
	assert.Equal(t, 1, stats.Stats.FailedDetections)
	assert.InDelta(t, 0.5, stats.Stats.DetectionRate, 1e-9)

	ended, err := sessions.End(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)

	_, err = sessions.End(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
}

func TestListSimilar_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	results := NewResultRepository(db)
	userID := uuid.New()

	insert := func(scores domain.Scores) *domain.Result {
		r := domain.NewSuccessResult(scores, domain.EngagementHigh, 1, nil, 0.8, 20)
		r.UserID = userID
		require.NoError(t, results.Create(ctx, r))
		return r
	}

	reference := insert(scoresWith(domain.EmotionHappy, 90))
	close1 := insert(scoresWith(domain.EmotionHappy, 85))
	far := insert(scoresWith(domain.EmotionSad, 90))

	// A different user's rows must never surface.
	foreign := domain.NewSuccessResult(scoresWith(domain.EmotionHappy, 90), domain.EngagementHigh, 1, nil, 0.8, 20)
	foreign.UserID = uuid.New()
	require.NoError(t, results.Create(ctx, foreign))

	require.NotNil(t, reference.Scores)
	neighbors, err := results.ListSimilar(ctx, userID, reference.ID, *reference.Scores, 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, close1.ID, neighbors[0].ID)
	assert.Equal(t, far.ID, neighbors[1].ID)
}
