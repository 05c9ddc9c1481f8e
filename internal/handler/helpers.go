package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/repository"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JobEnqueuer hands long-running ledger work to the background worker.
type JobEnqueuer interface {
	EnqueueJournalGeneration(ctx context.Context, source models.TransactionType, actor string) (string, error)
	EnqueueDepreciationSweep(ctx context.Context, asOf time.Time, actor string) (string, error)
}

// respondError maps service and store errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error, message string) error {
	var verr *accounting.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ErrorResponseWithData(c, fiber.StatusUnprocessableEntity, "Validation failed", []utils.FieldError{
			{Field: verr.Field, Message: verr.Reason},
		})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrJobNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", err)
	case errors.Is(err, repository.ErrInsufficientStock):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Insufficient stock", err)
	case errors.Is(err, repository.ErrAlreadyJournaled):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Transaction already journaled", err)
	case errors.Is(err, repository.ErrDuplicateAccount):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Account code already exists", err)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}

// bind parses and validates the request body. When it returns false the
// response has already been written.
func bind(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if errs := utils.ValidateStruct(out); len(errs) > 0 {
		return false, utils.ErrorResponseWithData(c, fiber.StatusUnprocessableEntity, "Validation failed", errs)
	}
	return true, nil
}

// parseRange reads the from/to query parameters.
func parseRange(c *fiber.Ctx) (service.ReportRange, error) {
	var rng service.ReportRange
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &rng.From}, {"to", &rng.To}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		t, err := service.ParseDate(raw, time.Now())
		if err != nil {
			return rng, &accounting.ValidationError{Field: p.name, Reason: fmt.Sprintf("unable to parse %q", raw)}
		}
		*p.dst = &t
	}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, &accounting.ValidationError{Field: "to", Reason: "is before from"}
	}
	return rng, nil
}

// sendWorkbook renders a workbook into memory and sends it as a download.
func sendWorkbook(c *fiber.Ctx, filename string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate Excel file", err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
