package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"pinkilang/internal/config"
	"pinkilang/internal/database"
	"pinkilang/internal/repository"
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
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize database
	db, err := database.NewMySQL(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := database.NewRedis(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	store := repository.NewLedgerRepository(db, cfg.StockKey)
	accounts := repository.NewAccountRepository(db)
	reports := service.NewReportService(store, accounts, redisClient, cfg.ReportCacheTTL, logger)
	generator := service.NewJournalGenerator(store, reports, logger)
	adjustments := service.NewAdjustmentService(store, accounts, reports, logger)
	jobs := service.NewJobStore(redisClient, cfg.JobResultTTL)

	location, err := time.LoadLocation(cfg.SchedulerLocation)
	if err != nil {
		logger.WithError(err).Fatal("Invalid scheduler location")
	}

	// Register task handlers
	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, worker.NewTaskHandler(generator, adjustments, jobs, location, logger))

	srv := worker.NewServer(cfg, logger)

	scheduler, err := worker.NewScheduler(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create scheduler")
	}
	if err := scheduler.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Shutdown()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nGracefully shutting down worker...")
		srv.Shutdown()
	}()

	// Start worker
	logger.WithFields(map[string]interface{}{
		"concurrency":       cfg.WorkerConcurrency,
		"depreciation_cron": cfg.DepreciationCron,
	}).Info("Worker starting")
	if err := srv.Run(mux); err != nil {
		logger.WithError(err).Fatal("Failed to start worker")
	}

	fmt.Println("Worker exited")
}
