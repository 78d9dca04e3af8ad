package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lexlink/lexlink-backend/internal/models"
	"github.com/lexlink/lexlink-backend/internal/services"
)

const accountLocal = "account"

// RequireAuth validates the bearer token and loads the account into the
// request context. An invalid or expired token always answers 401 so
// clients take the re-authentication path.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing credential token",
			})
		}

		account, err := auth.Authenticate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Credential token is no longer valid",
			})
		}

		c.Locals(accountLocal, account)
		return c.Next()
	}
}

// OptionalAuth loads the account when a valid token is present and
// continues anonymously otherwise. Used by endpoints that accept
// unauthenticated visitors.
func OptionalAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token != "" {
			if account, err := auth.Authenticate(token); err == nil {
				c.Locals(accountLocal, account)
			}
		}
		return c.Next()
	}
}

// AccountFromContext returns the authenticated account, or nil for an
// anonymous request.
func AccountFromContext(c *fiber.Ctx) *models.Account {
	account, _ := c.Locals(accountLocal).(*models.Account)
	return account
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
