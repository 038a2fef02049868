package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/vision"
	"github.com/visioncraft-labs/emoscope/internal/ws"
)

type ResultRepositoryInterface interface {
	Create(ctx context.Context, result *domain.Result) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Result, error)
	ListSimilar(ctx context.Context, userID, excludeID uuid.UUID, scores domain.Scores, limit int) ([]domain.Result, error)
}

type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	End(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ApplyDelta(ctx context.Context, id uuid.UUID, delta domain.StatsDelta) error
}

// Analyzer runs the detection and classification pipeline on one frame.
type Analyzer interface {
	Analyze(ctx context.Context, frame *vision.Frame) *domain.Result
}

// Broadcaster pushes analysis events to connected websocket clients.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, eventType ws.EventType, data interface{})
}

type EmotionService struct {
	analyzer    Analyzer
	resultRepo  ResultRepositoryInterface
	sessionRepo SessionRepositoryInterface
	hub         Broadcaster
	logger      *slog.Logger
}

func NewEmotionService(
	analyzer Analyzer,
	resultRepo ResultRepositoryInterface,
	sessionRepo SessionRepositoryInterface,
	hub Broadcaster,
	logger *slog.Logger,
) *EmotionService {
	return &EmotionService{
		analyzer:    analyzer,
		resultRepo:  resultRepo,
		sessionRepo: sessionRepo,
		hub:         hub,
		logger:      logger,
	}
}

// AnalyzeImage decodes raw image bytes and runs one analysis. Every call
// records exactly one result, including decode failures, so the session's
// detection-rate statistic counts all attempts. The returned error is an
// AppError only for request-level problems; a no-face frame is a recorded,
// error-free outcome.
func (s *EmotionService) AnalyzeImage(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, imageBytes []byte) (*domain.Result, error) {
	start := time.Now()

	frame, err := vision.Decode(imageBytes)
	if err != nil {
		result := domain.NewFailureResult(domain.ReasonDecodeError, 0.5, msSince(start))
		s.record(ctx, userID, sessionID, result)
		return result, err
	}

	result := s.analyzer.Analyze(ctx, frame)
	s.record(ctx, userID, sessionID, result)

	return result, nil
}

// AnalyzeBase64 accepts a base64 payload, with or without a data-URI prefix.
func (s *EmotionService) AnalyzeBase64(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, payload string) (*domain.Result, error) {
	start := time.Now()

	frame, err := vision.DecodeBase64(payload)
	if err != nil {
		result := domain.NewFailureResult(domain.ReasonDecodeError, 0.5, msSince(start))
		s.record(ctx, userID, sessionID, result)
		return result, err
	}

	result := s.analyzer.Analyze(ctx, frame)
	s.record(ctx, userID, sessionID, result)

	return result, nil
}

// RecordStreamResult persists a result produced by the streaming scheduler
// and notifies websocket subscribers.
func (s *EmotionService) RecordStreamResult(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, result *domain.Result) {
	s.recordAs(ctx, userID, sessionID, result, ws.EventStreamResult)
}

func (s *EmotionService) GetResult(ctx context.Context, id uuid.UUID) (*domain.Result, error) {
	return s.resultRepo.GetByID(ctx, id)
}

// SimilarResults finds the caller's past analyses with the closest emotion
// profile to the given result. Only successful analyses carry a score
// vector, so a failure result has no neighbors and yields an empty list.
func (s *EmotionService) SimilarResults(ctx context.Context, userID, id uuid.UUID, limit int) ([]domain.Result, error) {
	reference, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reference.UserID != userID {
		return nil, domain.ErrResultNotFound
	}
	if reference.Scores == nil {
		return []domain.Result{}, nil
	}

	return s.resultRepo.ListSimilar(ctx, userID, id, *reference.Scores, limit)
}

// record persists the result and folds its delta into the session counters.
// Persistence errors are logged, not returned: the analysis outcome was
// already determined and the caller still gets it.
func (s *EmotionService) record(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, result *domain.Result) {
	s.recordAs(ctx, userID, sessionID, result, ws.EventAnalysisCompleted)
}

func (s *EmotionService) recordAs(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, result *domain.Result, event ws.EventType) {
	result.UserID = userID
	result.SessionID = sessionID

	if err := s.resultRepo.Create(ctx, result); err != nil {
		s.logger.Error("failed to record analysis result",
			"error", err,
			"user_id", userID,
		)
		return
	}

	if sessionID != nil {
		if err := s.sessionRepo.ApplyDelta(ctx, *sessionID, domain.DeltaFor(result)); err != nil {
			s.logger.Warn("failed to update session stats",
				"error", err,
				"session_id", *sessionID,
			)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToUser(userID, event, result)
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
