package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"pinkilang/internal/config"
	"pinkilang/internal/handler"
	"pinkilang/internal/repository"
)

// Dependencies are the collaborators the HTTP layer is built from. Redis
// and Jobs may be nil: reports are then computed on every request and
// background requests run synchronously.
type Dependencies struct {
	Config   *config.Config
	Store    repository.LedgerStore
	Accounts repository.AccountStore
	Redis    *redis.Client
	Jobs     handler.JobEnqueuer
	Logger   *logrus.Logger
}

func Setup(app *fiber.App, deps Dependencies) {
	// Health check
	var pinger handler.Pinger
	if p, ok := deps.Store.(handler.Pinger); ok {
		pinger = p
	}
	health := handler.NewHealthHandler(deps.Config.AppName, pinger, deps.Redis)
	app.Get("/health", health.Check)

	// API routes (JSON)
	api := app.Group("/api/v1")
	api.Get("/health", health.Check)
	SetupAPIRoutes(api, deps)
}
