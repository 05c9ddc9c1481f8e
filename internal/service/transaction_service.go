package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/repository"
)

// RecordOptions tunes how a business transaction is recorded.
type RecordOptions struct {
	// DeferJournal stores the raw row and leaves journaling to the generator.
	DeferJournal bool
}

// RecordResult is what recording one business transaction produced.
type RecordResult struct {
	Transaction models.RawTransaction `json:"transaction"`
	Entries     []models.JournalEntry `json:"entries"`
	Stock       int                   `json:"stock"`
}

type TransactionService struct {
	store    repository.LedgerStore
	notifier ChangeNotifier
	logger   *logrus.Logger
	now      func() time.Time
}

func NewTransactionService(store repository.LedgerStore, notifier ChangeNotifier, logger *logrus.Logger) *TransactionService {
	return &TransactionService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Record stores a business transaction and its journal batch as one unit:
// lock stock, check it, move it, insert the raw row, append the batch.
// Nothing is written when any step fails.
func (s *TransactionService) Record(ctx context.Context, txType models.TransactionType, req models.TransactionRequest, actor string, opts RecordOptions) (*RecordResult, error) {
	if !txType.IsRaw() {
		return nil, &accounting.ValidationError{Field: "transaction_type", Reason: fmt.Sprintf("%s: %q", accounting.ReasonUnsupported, txType)}
	}
	raw, err := s.rawFromRequest(txType, req, actor)
	if err != nil {
		return nil, err
	}

	// Build once up front so invalid input never takes the stock lock.
	if _, err := accounting.BuildEntries(txType, accounting.FieldsFromRaw(raw), actor); err != nil {
		return nil, err
	}

	result := &RecordResult{}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		stock, err := tx.LockStock(ctx)
		if err != nil {
			return err
		}
		if delta := stockDelta(raw); delta != 0 {
			if stock+delta < 0 {
				return fmt.Errorf("%w: have %d, need %d", repository.ErrInsufficientStock, stock, -delta)
			}
			stock += delta
			if err := tx.SetStock(ctx, stock, stockReference(raw), actor); err != nil {
				return err
			}
		}
		result.Stock = stock

		if err := tx.InsertRawTransaction(ctx, &raw); err != nil {
			return err
		}
		result.Transaction = raw
		if opts.DeferJournal {
			return nil
		}

		entries, err := accounting.BuildEntries(txType, accounting.FieldsFromRaw(raw), actor)
		if err != nil {
			return err
		}
		if err := tx.AppendJournalEntries(ctx, entries); err != nil {
			return err
		}
		result.Entries = entries
		return nil
	})
	if err != nil {
		if !accounting.IsValidationError(err) && !errors.Is(err, repository.ErrInsufficientStock) {
			s.logger.WithError(err).WithField("transaction_type", txType).Error("Failed to record transaction")
		}
		return nil, err
	}

	notify(ctx, s.notifier)
	s.logger.WithFields(logrus.Fields{
		"transaction_id":   result.Transaction.ID,
		"transaction_type": txType,
		"amount":           raw.Amount.String(),
		"actor":            actor,
	}).Info("Transaction recorded")
	return result, nil
}

func (s *TransactionService) rawFromRequest(txType models.TransactionType, req models.TransactionRequest, actor string) (models.RawTransaction, error) {
	date, err := ParseDate(req.Date, s.now())
	if err != nil {
		return models.RawTransaction{}, err
	}
	if req.Quantity < 0 {
		return models.RawTransaction{}, &accounting.ValidationError{Field: "quantity", Reason: accounting.ReasonNegativeAmount}
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Description)); n > accounting.MaxDescriptionLength {
		return models.RawTransaction{}, &accounting.ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("must be at most %d characters", accounting.MaxDescriptionLength),
		}
	}
	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.PaymentMethod))))
	if method == "" {
		method = models.PaymentCash
	}
	raw := models.RawTransaction{
		Type:            txType,
		Date:            date,
		Amount:          req.Amount,
		CostOfGoods:     req.CostOfGoods,
		PaymentMethod:   method,
		ItemName:        strings.TrimSpace(req.ItemName),
		PartyName:       strings.TrimSpace(req.PartyName),
		ExpenseCategory: strings.TrimSpace(req.ExpenseCategory),
		Description:     strings.TrimSpace(req.Description),
		Actor:           actor,
	}
	if txType == models.TxSale || txType == models.TxPurchase {
		raw.Quantity = req.Quantity
	}
	return raw, nil
}

// stockDelta is the change a transaction makes to the integrated stock.
func stockDelta(raw models.RawTransaction) int {
	switch raw.Type {
	case models.TxSale:
		return -raw.Quantity
	case models.TxPurchase:
		return raw.Quantity
	}
	return 0
}

// maxReferenceLength matches stock_movements.reference, counted in characters.
const maxReferenceLength = 100

func stockReference(raw models.RawTransaction) string {
	ref := strings.ToLower(string(raw.Type))
	if raw.ItemName != "" {
		ref += ": " + raw.ItemName
	}
	return truncateRunes(ref, maxReferenceLength)
}

// RecordOpeningBalance journals caller-supplied opening balances under a
// generated transaction id.
func (s *TransactionService) RecordOpeningBalance(ctx context.Context, req models.OpeningBalanceRequest, actor string) ([]models.JournalEntry, error) {
	date, err := ParseDate(req.Date, s.now())
	if err != nil {
		return nil, err
	}
	entries, err := accounting.BuildEntries(models.TxOpeningBalance, accounting.TransactionFields{
		TransactionID: "OB-" + uuid.NewString(),
		Date:          date,
		Description:   req.Description,
		Lines:         req.Lines,
	}, actor)
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendJournalEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to record opening balance: %w", err)
	}
	notify(ctx, s.notifier)
	debit, _ := accounting.BatchTotals(entries)
	s.logger.WithFields(logrus.Fields{
		"lines": len(entries),
		"total": debit.String(),
		"actor": actor,
	}).Info("Opening balance recorded")
	return entries, nil
}

// ImportTransactions records every valid row of an import. Rows are
// recorded one by one so a failing row does not undo the others.
func (s *TransactionService) ImportTransactions(ctx context.Context, result *models.TransactionImportResult, actor string, opts RecordOptions) *models.TransactionImportResult {
	for _, row := range result.ValidRows {
		if _, err := s.Record(ctx, row.Type, row.Request, actor, opts); err != nil {
			result.ErrorCount++
			result.ValidCount--
			result.ValidationErrors = append(result.ValidationErrors, models.TransactionImportError{
				Row:     row.Row,
				Field:   importErrorField(err),
				Value:   row.Request.Amount.String(),
				Message: err.Error(),
			})
			continue
		}
		result.Recorded++
	}
	return result
}

func importErrorField(err error) string {
	var verr *accounting.ValidationError
	if errors.As(err, &verr) {
		return verr.Field
	}
	if errors.Is(err, repository.ErrInsufficientStock) {
		return "quantity"
	}
	return "row"
}

func (s *TransactionService) ListTransactions(ctx context.Context, txType models.TransactionType) ([]models.RawTransaction, error) {
	if txType != "" && !txType.IsRaw() {
		return nil, &accounting.ValidationError{Field: "type", Reason: fmt.Sprintf("%s: %q", accounting.ReasonUnsupported, txType)}
	}
	raws, err := s.store.ListRawTransactions(ctx, txType)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if raws == nil {
		raws = []models.RawTransaction{}
	}
	return raws, nil
}

func (s *TransactionService) GetStock(ctx context.Context) (int, error) {
	return s.store.GetStock(ctx)
}

func (s *TransactionService) StockMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	return s.store.ListStockMovements(ctx, limit)
}

// Journal returns journal entries matching the filter.
func (s *TransactionService) Journal(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, error) {
	return s.store.QueryJournalEntries(ctx, filter)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
