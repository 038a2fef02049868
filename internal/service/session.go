package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/visioncraft-labs/emoscope/internal/domain"
	"github.com/visioncraft-labs/emoscope/internal/ws"
)

type SessionService struct {
	sessionRepo SessionRepositoryInterface
	hub         Broadcaster
	logger      *slog.Logger
}

func NewSessionService(sessionRepo SessionRepositoryInterface, hub Broadcaster, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		hub:         hub,
		logger:      logger,
	}
}

func (s *SessionService) Start(ctx context.Context, userID uuid.UUID, cameraResolution string) (*domain.Session, error) {
	session := &domain.Session{
		UserID:           userID,
		CameraResolution: cameraResolution,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("analysis session started",
		"session_id", session.ID,
		"user_id", userID,
	)

	if s.hub != nil {
		s.hub.BroadcastToUser(userID, ws.EventSessionStarted, session)
	}

	return session, nil
}

func (s *SessionService) End(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	// Ownership check happens before the update so one user cannot end
	// another user's session.
	existing, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.sessionRepo.End(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("analysis session ended",
		"session_id", session.ID,
		"total_analyses", session.Stats.TotalAnalyses,
		"detection_rate", session.Stats.DetectionRate,
	)

	if s.hub != nil {
		s.hub.BroadcastToUser(userID, ws.EventSessionEnded, session)
	}

	return session, nil
}

func (s *SessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}
