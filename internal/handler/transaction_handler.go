package handler

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/middleware"
	"pinkilang/internal/models"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

// transactionRoutes maps the URL segment of each entry form onto its type.
var transactionRoutes = map[string]models.TransactionType{
	"sales":                  models.TxSale,
	"purchases":              models.TxPurchase,
	"expenses":               models.TxOperatingExpense,
	"owner-draws":            models.TxOwnerDraw,
	"capital-contributions":  models.TxCapitalContribution,
	"receivable-settlements": models.TxReceivableSettlement,
	"payable-settlements":    models.TxPayableSettlement,
}

type TransactionHandler struct {
	transactions *service.TransactionService
	excelService *service.ExcelService
}

func NewTransactionHandler(transactions *service.TransactionService, excelService *service.ExcelService) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		excelService: excelService,
	}
}

// Record handles POST /transactions/:kind.
func (h *TransactionHandler) Record(c *fiber.Ctx) error {
	txType, ok := transactionRoutes[c.Params("kind")]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown transaction kind", nil)
	}

	var req models.TransactionRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	opts := service.RecordOptions{DeferJournal: c.QueryBool("defer_journal")}
	result, err := h.transactions.Record(c.UserContext(), txType, req, middleware.Actor(c), opts)
	if err != nil {
		return respondError(c, err, "Failed to record transaction")
	}
	return utils.CreatedResponse(c, "Transaction recorded successfully", result)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	txType := models.TransactionType(strings.ToUpper(c.Query("type")))
	txs, err := h.transactions.ListTransactions(c.UserContext(), txType)
	if err != nil {
		return respondError(c, err, "Failed to retrieve transactions")
	}
	return utils.SuccessResponse(c, "Transactions retrieved successfully", txs)
}

func (h *TransactionHandler) DownloadTemplate(c *fiber.Ctx) error {
	return sendWorkbook(c, "transactions_import_template.xlsx", h.excelService.GenerateTransactionTemplate)
}

// Import records every valid row of an uploaded workbook. Rows are
// recorded one by one; a failing row does not undo the others.
func (h *TransactionHandler) Import(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx) are allowed", nil)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read file", err)
	}
	defer src.Close()

	result, err := h.excelService.ParseTransactionFile(src)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse Excel file", err)
	}

	deferJournal := c.QueryBool("defer_journal") || c.FormValue("defer_journal") == "true"
	h.transactions.ImportTransactions(c.UserContext(), result, middleware.Actor(c), service.RecordOptions{DeferJournal: deferJournal})

	if c.Query("error_report") == "xlsx" && len(result.ValidationErrors) > 0 {
		name := fmt.Sprintf("import_errors_%s.xlsx", time.Now().Format("20060102_150405"))
		return sendWorkbook(c, name, func(w io.Writer) error {
			return h.excelService.GenerateImportErrorReport(result, w)
		})
	}

	switch {
	case result.Recorded == 0:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":     false,
			"message":     "No valid transactions found in the file",
			"total_rows":  result.TotalRows,
			"error_count": result.ErrorCount,
			"errors":      getFirstNErrors(result.ValidationErrors, 10),
		})
	case result.ErrorCount > 0:
		return c.Status(fiber.StatusPartialContent).JSON(fiber.Map{
			"success":     true,
			"message":     fmt.Sprintf("Import completed with %d errors. %d transactions recorded.", result.ErrorCount, result.Recorded),
			"total_rows":  result.TotalRows,
			"recorded":    result.Recorded,
			"error_count": result.ErrorCount,
			"errors":      getFirstNErrors(result.ValidationErrors, 10),
		})
	}
	return utils.SuccessResponse(c, "All transactions imported successfully", result)
}

func (h *TransactionHandler) Stock(c *fiber.Ctx) error {
	qty, err := h.transactions.GetStock(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to retrieve stock")
	}
	return utils.SuccessResponse(c, "Stock retrieved successfully", fiber.Map{"quantity": qty})
}

func (h *TransactionHandler) StockMovements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	movements, err := h.transactions.StockMovements(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err, "Failed to retrieve stock movements")
	}
	return utils.SuccessResponse(c, "Stock movements retrieved successfully", movements)
}

// getFirstNErrors returns the first n errors from a slice
func getFirstNErrors(errors []models.TransactionImportError, n int) []models.TransactionImportError {
	if len(errors) <= n {
		return errors
	}
	return errors[:n]
}
