package handler

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/models"
	"pinkilang/internal/repository"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

// AccountHandler maintains the custom chart rows. Every change bumps the
// ledger version because it can reclassify existing entries.
type AccountHandler struct {
	accountRepo  repository.AccountStore
	excelService *service.ExcelService
	notifier     service.ChangeNotifier
}

func NewAccountHandler(accountRepo repository.AccountStore, excelService *service.ExcelService, notifier service.ChangeNotifier) *AccountHandler {
	return &AccountHandler{
		accountRepo:  accountRepo,
		excelService: excelService,
		notifier:     notifier,
	}
}

func (h *AccountHandler) changed(c *fiber.Ctx) {
	if h.notifier != nil {
		h.notifier.LedgerChanged(c.UserContext())
	}
}

func (h *AccountHandler) GetAccounts(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	accounts, total, err := h.accountRepo.FindAll(c.UserContext(), params.Limit, offset, params.Search)
	if err != nil {
		return respondError(c, err, "Failed to retrieve accounts")
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"accounts":   accounts,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Accounts retrieved successfully", responseData, pagination)
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	account, err := h.accountRepo.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to retrieve account")
	}

	return utils.SuccessResponse(c, "Account retrieved successfully", account)
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req models.AccountRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	account := &models.Account{
		AccountCode:   req.AccountCode,
		AccountName:   req.AccountName,
		AccountType:   req.AccountType,
		NormalBalance: req.NormalBalance,
		Role:          req.Role,
		Aliases:       req.Aliases,
		IsActive:      true, // Default to active
	}

	if err := h.accountRepo.Create(c.UserContext(), account); err != nil {
		return respondError(c, err, "Failed to create account")
	}
	h.changed(c)

	return utils.CreatedResponse(c, "Account created successfully", account)
}

func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	var req models.AccountRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	account, err := h.accountRepo.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to retrieve account")
	}

	account.AccountCode = req.AccountCode
	account.AccountName = req.AccountName
	account.AccountType = req.AccountType
	account.NormalBalance = req.NormalBalance
	account.Role = req.Role
	account.Aliases = req.Aliases
	account.IsActive = req.IsActive

	if err := h.accountRepo.Update(c.UserContext(), account); err != nil {
		return respondError(c, err, "Failed to update account")
	}
	h.changed(c)

	return utils.SuccessResponse(c, "Account updated successfully", account)
}

func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid account ID", err)
	}

	if err := h.accountRepo.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete account")
	}
	h.changed(c)

	return utils.SuccessResponse(c, "Account deleted successfully", nil)
}

func (h *AccountHandler) ExportAccounts(c *fiber.Ctx) error {
	accounts, err := h.accountRepo.GetAllActive(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to retrieve accounts")
	}

	exportFileName := fmt.Sprintf("accounts_export_%s.xlsx", time.Now().Format("20060102_150405"))
	return sendWorkbook(c, exportFileName, func(w io.Writer) error {
		return h.excelService.ExportAccounts(accounts, w)
	})
}
