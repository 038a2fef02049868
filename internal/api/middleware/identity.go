package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

const (
	// LocalUserID is the key to retrieve user_id from context
	LocalUserID = "user_id"
	// HeaderUserID carries the caller's identity. Authentication proper is
	// handled upstream (gateway); this service only needs a stable user id
	// to attribute results and sessions to.
	HeaderUserID = "X-User-ID"
)

// Identity extracts the calling user's id from the request header and makes
// it available to handlers and the websocket upgrade.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderUserID)
		if raw == "" {
			return domain.ErrValidationFailed.WithError(errors.New("X-User-ID header is required"))
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return domain.ErrValidationFailed.WithError(errors.New("X-User-ID must be a valid UUID"))
		}

		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// GetUserID retrieves user_id from Fiber context
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals(LocalUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrInternal.WithError(errors.New("user_id missing from context"))
	}
	return userID, nil
}
