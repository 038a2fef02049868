package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

// PgxPool is the pool subset the repositories use. Satisfied by
// pgxpool.Pool in production and pgxmock in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ResultRepositoryInterface defines operations for analysis result persistence
type ResultRepositoryInterface interface {
	Create(ctx context.Context, result *domain.Result) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Result, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Result, error)
	ListSimilar(ctx context.Context, userID, excludeID uuid.UUID, scores domain.Scores, limit int) ([]domain.Result, error)
}

// SessionRepositoryInterface defines operations for analysis session data access
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	End(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ApplyDelta(ctx context.Context, id uuid.UUID, delta domain.StatsDelta) error
}
