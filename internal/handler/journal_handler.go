package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/middleware"
	"pinkilang/internal/models"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

type JournalHandler struct {
	transactions *service.TransactionService
	generator    *service.JournalGenerator
	jobs         JobEnqueuer
}

// NewJournalHandler wires the journal endpoints. A nil enqueuer makes every
// generation request run synchronously.
func NewJournalHandler(transactions *service.TransactionService, generator *service.JournalGenerator, jobs JobEnqueuer) *JournalHandler {
	return &JournalHandler{
		transactions: transactions,
		generator:    generator,
		jobs:         jobs,
	}
}

type GenerateRequest struct {
	Source string `json:"source"`
	Async  bool   `json:"async"`
}

func (h *JournalHandler) List(c *fiber.Ctx) error {
	rng, err := parseRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	filter := models.JournalFilter{
		TransactionID:      c.Query("transaction_id"),
		TransactionType:    models.TransactionType(strings.ToUpper(c.Query("type"))),
		From:               rng.From,
		To:                 rng.To,
		ExcludeAdjustments: c.QueryBool("exclude_adjustments"),
	}
	entries, err := h.transactions.Journal(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Failed to retrieve journal")
	}
	return utils.SuccessResponse(c, "Journal retrieved successfully", entries)
}

// Generate journals every business transaction that has no batch yet.
func (h *JournalHandler) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &req); !ok {
			return err
		}
	}
	source := models.TransactionType(strings.ToUpper(strings.TrimSpace(req.Source)))

	if req.Async && h.jobs != nil {
		jobID, err := h.jobs.EnqueueJournalGeneration(c.UserContext(), source, middleware.Actor(c))
		if err != nil {
			return respondError(c, err, "Failed to queue journal generation")
		}
		return c.Status(fiber.StatusAccepted).JSON(utils.Response{
			Success: true,
			Message: "Journal generation queued",
			Data:    fiber.Map{"job_id": jobID},
		})
	}

	report, err := h.generator.Generate(c.UserContext(), source, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to generate journal")
	}
	return utils.SuccessResponse(c, "Journal generation finished", report)
}

func (h *JournalHandler) OpeningBalance(c *fiber.Ctx) error {
	var req models.OpeningBalanceRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	entries, err := h.transactions.RecordOpeningBalance(c.UserContext(), req, middleware.Actor(c))
	if err != nil {
		return respondError(c, err, "Failed to record opening balance")
	}
	return utils.CreatedResponse(c, "Opening balance recorded successfully", entries)
}
