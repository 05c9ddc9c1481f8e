package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/config"
	"pinkilang/internal/utils"
)

const devTokenPrefix = "dev-token-"

// AuthMiddleware resolves the bearer token into the acting user. Services
// stamp this actor on every journal entry they write.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Authorization header is required",
			})
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid authorization header format",
			})
		}

		token := parts[1]

		// Development mode: dev-token-<name> acts as <name>
		if cfg.IsDevelopment() && strings.HasPrefix(token, devTokenPrefix) {
			name := strings.TrimPrefix(token, devTokenPrefix)
			if name == "" {
				name = "admin"
			}
			c.Locals("username", name)
			c.Locals("role", "admin")
			return c.Next()
		}

		claims, err := utils.ValidateToken(token, cfg.JWTSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
		}

		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// AdminOnly guards chart-of-accounts maintenance.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Locals("role")
		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// Actor returns the username AuthMiddleware stored, or "system".
func Actor(c *fiber.Ctx) string {
	if name, ok := c.Locals("username").(string); ok && name != "" {
		return name
	}
	return "system"
}
