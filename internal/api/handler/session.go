package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/visioncraft-labs/emoscope/internal/api/middleware"
	"github.com/visioncraft-labs/emoscope/internal/domain"
)

// SessionService interface for the service
type SessionService interface {
	Start(ctx context.Context, userID uuid.UUID, cameraResolution string) (*domain.Session, error)
	End(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)
}

// SessionHandler handles analysis session requests
type SessionHandler struct {
	service SessionService
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(service SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

type startSessionRequest struct {
	CameraResolution string `json:"camera_resolution"`
}

// Start POST /v1/sessions - open a new analysis session
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req startSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	session, err := h.service.Start(c.Context(), userID, req.CameraResolution)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// End POST /v1/sessions/:id/end - close a session
func (h *SessionHandler) End(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	session, err := h.service.End(c.Context(), userID, sessionID)
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// Stats GET /v1/sessions/:id/stats - rolled-up session statistics
func (h *SessionHandler) Stats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	sessionID, err := parseSessionID(c)
	if err != nil {
		return err
	}

	session, err := h.service.Get(c.Context(), userID, sessionID)
	if err != nil {
		return err
	}

	return c.JSON(session.Stats)
}

func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(errors.New("session id must be a valid UUID"))
	}
	return id, nil
}
