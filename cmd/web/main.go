package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"

	"pinkilang/internal/config"
	"pinkilang/internal/database"
	"pinkilang/internal/repository"
	"pinkilang/internal/router"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
	"pinkilang/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.SetLogLevel(cfg.LogLevel)
	appLogger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deps := router.Dependencies{Config: cfg, Logger: appLogger}

	// Initialize database
	db, err := database.NewMySQL(ctx, cfg)
	if err != nil {
		if !cfg.IsDevelopment() {
			appLogger.WithError(err).Fatal("Failed to connect to database")
		}
		appLogger.WithError(err).Warn("Database unavailable, using in-memory ledger (data is lost on restart)")
		store := repository.NewMemoryStore(cfg.StockKey)
		deps.Store = store
		deps.Accounts = store
	} else {
		defer db.Close()
		deps.Store = repository.NewLedgerRepository(db, cfg.StockKey)
		deps.Accounts = repository.NewAccountRepository(db)
	}

	// Initialize Redis (optional - for report caching and background jobs)
	redisClient, err := database.NewRedis(ctx, cfg)
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, report caching and background jobs disabled")
	} else {
		defer redisClient.Close()
		deps.Redis = redisClient

		client := asynq.NewClient(worker.RedisOpt(cfg))
		defer client.Close()
		deps.Jobs = worker.NewDispatcher(client, service.NewJobStore(redisClient, cfg.JobResultTTL))
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    cfg.UploadMaxSize,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	router.Setup(app, deps)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nGracefully shutting down...")
		_ = app.ShutdownWithTimeout(30 * time.Second)
	}()

	// Start server
	port := fmt.Sprintf(":%s", cfg.AppPort)
	appLogger.WithField("port", port).Info("Server starting")
	if err := app.Listen(port); err != nil {
		appLogger.WithError(err).Fatal("Failed to start server")
	}

	fmt.Println("Server exited")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(utils.Response{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
