package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/accounting"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

type ReportHandler struct {
	reports      *service.ReportService
	excelService *service.ExcelService
}

func NewReportHandler(reports *service.ReportService, excelService *service.ExcelService) *ReportHandler {
	return &ReportHandler{reports: reports, excelService: excelService}
}

// Get handles GET /reports/:name.
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	rng, err := parseRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	ctx := c.UserContext()

	var data interface{}
	name := c.Params("name")
	switch name {
	case "general-journal":
		data, err = h.reports.GeneralJournal(ctx, rng)
	case "general-ledger":
		data, err = h.reports.GeneralLedger(ctx, rng)
	case "trial-balance":
		data, err = h.reports.TrialBalance(ctx, rng, c.QueryBool("exclude_adjustments"))
	case "adjusted-trial-balance":
		data, err = h.reports.AdjustedTrialBalance(ctx, rng)
	case "worksheet":
		data, err = h.reports.Worksheet(ctx, rng)
	case "income-statement":
		data, err = h.reports.IncomeStatement(ctx, rng)
	case "cash-flow":
		data, err = h.reports.CashFlow(ctx, rng)
	case "equity-changes":
		data, err = h.reports.EquityChanges(ctx, rng)
	case "receivables":
		data, err = h.reports.Subsidiary(ctx, accounting.Receivables, rng)
	case "payables":
		data, err = h.reports.Subsidiary(ctx, accounting.Payables, rng)
	default:
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown report", nil)
	}
	if err != nil {
		return respondError(c, err, "Failed to build report")
	}
	return utils.SuccessResponse(c, "Report generated successfully", data)
}

// Export handles GET /reports/:name/export.
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	rng, err := parseRange(c)
	if err != nil {
		return respondError(c, err, "Invalid date range")
	}
	ctx := c.UserContext()
	name := c.Params("name")
	title := reportTitle(name, rng)
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102_150405"))

	var write func(w io.Writer) error
	switch name {
	case "trial-balance":
		report, err := h.reports.TrialBalance(ctx, rng, c.QueryBool("exclude_adjustments"))
		if err != nil {
			return respondError(c, err, "Failed to build report")
		}
		write = func(w io.Writer) error { return h.excelService.ExportTrialBalance(report, title, w) }
	case "worksheet":
		ws, err := h.reports.Worksheet(ctx, rng)
		if err != nil {
			return respondError(c, err, "Failed to build report")
		}
		write = func(w io.Writer) error { return h.excelService.ExportWorksheet(ws, title, w) }
	case "income-statement":
		is, err := h.reports.IncomeStatement(ctx, rng)
		if err != nil {
			return respondError(c, err, "Failed to build report")
		}
		write = func(w io.Writer) error { return h.excelService.ExportIncomeStatement(is, title, w) }
	case "general-journal":
		gj, err := h.reports.GeneralJournal(ctx, rng)
		if err != nil {
			return respondError(c, err, "Failed to build report")
		}
		write = func(w io.Writer) error { return h.excelService.ExportGeneralJournal(gj, title, w) }
	default:
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Report cannot be exported", nil)
	}
	return sendWorkbook(c, filename, write)
}

var reportTitles = map[string]string{
	"trial-balance":    "Neraca Saldo",
	"worksheet":        "Neraca Lajur",
	"income-statement": "Laporan Laba Rugi",
	"general-journal":  "Jurnal Umum",
}

func reportTitle(name string, rng service.ReportRange) string {
	title := reportTitles[name]
	switch {
	case rng.From != nil && rng.To != nil:
		return fmt.Sprintf("%s %s s.d. %s", title, rng.From.Format("02/01/2006"), rng.To.Format("02/01/2006"))
	case rng.To != nil:
		return fmt.Sprintf("%s per %s", title, rng.To.Format("02/01/2006"))
	case rng.From != nil:
		return fmt.Sprintf("%s sejak %s", title, rng.From.Format("02/01/2006"))
	}
	return title
}
