package router

import (
	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/handler"
	"pinkilang/internal/middleware"
	"pinkilang/internal/service"
)

func SetupAPIRoutes(router fiber.Router, deps Dependencies) {
	cfg := deps.Config
	logger := deps.Logger

	// Initialize services
	reportService := service.NewReportService(deps.Store, deps.Accounts, deps.Redis, cfg.ReportCacheTTL, logger)
	transactionService := service.NewTransactionService(deps.Store, reportService, logger)
	generator := service.NewJournalGenerator(deps.Store, reportService, logger)
	adjustmentService := service.NewAdjustmentService(deps.Store, deps.Accounts, reportService, logger)
	authService := service.NewAuthService(cfg)
	excelService := service.NewExcelService()

	var jobStore *service.JobStore
	if deps.Redis != nil {
		jobStore = service.NewJobStore(deps.Redis, cfg.JobResultTTL)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	transactionHandler := handler.NewTransactionHandler(transactionService, excelService)
	journalHandler := handler.NewJournalHandler(transactionService, generator, deps.Jobs)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentService, deps.Jobs)
	reportHandler := handler.NewReportHandler(reportService, excelService)
	accountHandler := handler.NewAccountHandler(deps.Accounts, excelService, reportService)
	jobHandler := handler.NewJobHandler(jobStore)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	// Business transactions
	transactions := protected.Group("/transactions")
	transactions.Get("/", transactionHandler.List)
	transactions.Get("/template", transactionHandler.DownloadTemplate)
	transactions.Post("/import", transactionHandler.Import)
	transactions.Post("/:kind", transactionHandler.Record)

	// Journal
	journals := protected.Group("/journals")
	journals.Get("/", journalHandler.List)
	journals.Post("/generate", journalHandler.Generate)
	journals.Post("/opening-balance", journalHandler.OpeningBalance)

	// Adjustments
	adjustments := protected.Group("/adjustments")
	adjustments.Post("/manual", adjustmentHandler.Manual)
	adjustments.Post("/depreciation-sweep", adjustmentHandler.DepreciationSweep)

	// Fixed assets
	assets := protected.Group("/fixed-assets")
	assets.Get("/", adjustmentHandler.ListFixedAssets)
	assets.Post("/", adjustmentHandler.CreateFixedAsset)
	assets.Get("/:id", adjustmentHandler.GetFixedAsset)
	assets.Post("/:id/depreciate", adjustmentHandler.Depreciate)

	// Stock
	protected.Get("/stock", transactionHandler.Stock)
	protected.Get("/stock/movements", transactionHandler.StockMovements)

	// Reports
	reports := protected.Group("/reports")
	reports.Get("/:name/export", reportHandler.Export)
	reports.Get("/:name", reportHandler.Get)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.Get("/", accountHandler.GetAccounts)
	accounts.Get("/export", accountHandler.ExportAccounts)
	accounts.Get("/:id", accountHandler.GetAccount)
	accounts.Post("/", middleware.AdminOnly(), accountHandler.CreateAccount)
	accounts.Put("/:id", middleware.AdminOnly(), accountHandler.UpdateAccount)
	accounts.Delete("/:id", middleware.AdminOnly(), accountHandler.DeleteAccount)

	// Job progress routes
	protected.Get("/jobs/:id", jobHandler.Get)
}
