package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/visioncraft-labs/emoscope/internal/api/middleware"
	"github.com/visioncraft-labs/emoscope/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB

	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// EmotionService interface for the service
type EmotionService interface {
	AnalyzeImage(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, imageBytes []byte) (*domain.Result, error)
	AnalyzeBase64(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, payload string) (*domain.Result, error)
	GetResult(ctx context.Context, id uuid.UUID) (*domain.Result, error)
	SimilarResults(ctx context.Context, userID, id uuid.UUID, limit int) ([]domain.Result, error)
}

// AnalyzeHandler handles emotion analysis requests
type AnalyzeHandler struct {
	service EmotionService
	logger  *slog.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler instance
func NewAnalyzeHandler(service EmotionService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  logger,
	}
}

// analyzeJSONRequest is the JSON body variant carrying a base64 image.
type analyzeJSONRequest struct {
	Image     string `json:"image"`
	SessionID string `json:"session_id"`
}

// Analyze POST /v1/analyze - run one emotion analysis
//
// Accepts either a multipart upload (field "image", optional form field
// "session_id") or a JSON body with a base64 payload. Success and no-face
// outcomes both return 200 with the full result; only an undecodable image
// is a client error.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return h.analyzeJSON(c, userID)
	}

	sessionID, err := parseOptionalSessionID(c.FormValue("session_id"))
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	result, err := h.service.AnalyzeImage(c.Context(), userID, sessionID, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *AnalyzeHandler) analyzeJSON(c *fiber.Ctx, userID uuid.UUID) error {
	var req analyzeJSONRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.Image == "" {
		return domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	sessionID, err := parseOptionalSessionID(req.SessionID)
	if err != nil {
		return err
	}

	result, err := h.service.AnalyzeBase64(c.Context(), userID, sessionID, req.Image)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetResult GET /v1/results/:id - fetch a recorded analysis result
func (h *AnalyzeHandler) GetResult(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("result id must be a valid UUID"))
	}

	result, err := h.service.GetResult(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetSimilar GET /v1/results/:id/similar - past analyses with the closest
// emotion profile
func (h *AnalyzeHandler) GetSimilar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("result id must be a valid UUID"))
	}

	limit := c.QueryInt("limit", defaultSimilarLimit)
	if limit < 1 || limit > maxSimilarLimit {
		return domain.ErrValidationFailed.WithError(errors.New("limit must be between 1 and 50"))
	}

	results, err := h.service.SimilarResults(c.Context(), userID, id, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"results": results})
}

func parseOptionalSessionID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(errors.New("session_id must be a valid UUID"))
	}
	return &id, nil
}

// extractAndValidateImage extracts and validates the image from the form
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	if file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
