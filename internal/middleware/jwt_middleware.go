package middleware

import (
	"context"
	"errors"
	"strings"

	"expensebuddy/internal/auth"
	"expensebuddy/internal/models"
	"expensebuddy/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const sessionKey = "session"

// SessionResolver confirms that a token's session still belongs to an existing user.
type SessionResolver interface {
	Resolve(ctx context.Context, session models.Session) (models.Session, error)
}

// AuthRequired is a Fiber middleware that checks for a valid session token whose user
// still exists and stores the session for subsequent handlers.
func AuthRequired(tokens *auth.TokenManager, users SessionResolver, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		session, err := tokens.Parse(parts[1])
		if err != nil {
			log.WithError(err).Debug("Token validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		resolved, err := users.Resolve(c.UserContext(), session)
		if errors.Is(err, services.ErrUnauthenticated) {
			log.WithField("user_id", session.UserID).Debug("Token refers to an unknown user")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		if err != nil {
			log.WithError(err).Error("Failed to resolve session")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not verify session",
			})
		}

		c.Locals(sessionKey, resolved)
		return c.Next()
	}
}

// SessionFrom returns the session stored by AuthRequired, or a zero Session if there is none.
func SessionFrom(c *fiber.Ctx) models.Session {
	session, _ := c.Locals(sessionKey).(models.Session)
	return session
}
