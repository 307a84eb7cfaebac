package middleware

import (
	"errors"
	"log"
	"strings"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

const localUser = "user"

// AuthRequired is a Fiber middleware that rejects requests without a valid bearer token.
// The authenticated user is available to later handlers through ActingUser.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.Authenticate(tokenString)
		if err != nil {
			log.Printf("JWT authentication failed: %v", err)
			if !errors.Is(err, services.ErrInvalidToken) {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not authenticate request",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(localUser, user)
		return c.Next()
	}
}

// ActingUser names the user behind the request, or "anonymous" when the
// route is not behind AuthRequired.
func ActingUser(c *fiber.Ctx) string {
	if user, ok := c.Locals(localUser).(*models.User); ok && user != nil {
		return user.Username
	}
	return "anonymous"
}
