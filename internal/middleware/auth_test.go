package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/config"
	"pinkilang/internal/utils"
)

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		return c.SendString(Actor(c))
	})
	app.Get("/admin", AuthMiddleware(cfg), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func call(t *testing.T, app *fiber.App, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_JWT(t *testing.T) {
	cfg := &config.Config{AppEnv: "production", JWTSecret: "s3cret"}
	app := newApp(cfg)

	token, err := utils.GenerateToken("siti", "staff", cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	status, body := call(t, app, "/whoami", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "siti", body)

	status, _ = call(t, app, "/admin", token)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, "/whoami", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	forged, err := utils.GenerateToken("siti", "admin", "other-secret", time.Hour)
	require.NoError(t, err)
	status, _ = call(t, app, "/whoami", forged)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAuthMiddleware_DevTokens(t *testing.T) {
	dev := newApp(&config.Config{AppEnv: "development", JWTSecret: "x"})
	status, body := call(t, dev, "/whoami", "dev-token-budi")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "budi", body)

	prod := newApp(&config.Config{AppEnv: "production", JWTSecret: "x"})
	status, _ = call(t, prod, "/whoami", "dev-token-budi")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
