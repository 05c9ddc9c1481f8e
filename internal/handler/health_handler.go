package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	appName string
	store   Pinger
	redis   *redis.Client
}

func NewHealthHandler(appName string, store Pinger, redis *redis.Client) *HealthHandler {
	return &HealthHandler{appName: appName, store: store, redis: redis}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := fiber.Map{"store": "ok", "redis": "disabled"}
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			checks["store"] = err.Error()
			status = fiber.StatusServiceUnavailable
		}
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = fiber.StatusServiceUnavailable
		}
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": state,
		"app":    h.appName,
		"checks": checks,
	})
}
