package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pinkilang/internal/models"
)

// LedgerStore persists journal batches, business transactions, the stock
// counter and fixed assets.
//
// AppendJournalEntries writes one batch atomically and returns
// ErrAlreadyJournaled when a batch for the same transaction id and type
// exists.
type LedgerStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error

	AppendJournalEntries(ctx context.Context, entries []models.JournalEntry) error
	QueryJournalEntries(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, error)
	JournalExists(ctx context.Context, transactionID string, txType models.TransactionType) (bool, error)

	ListRawTransactions(ctx context.Context, source models.TransactionType) ([]models.RawTransaction, error)
	GetRawTransaction(ctx context.Context, id int64) (models.RawTransaction, error)
	InsertRawTransaction(ctx context.Context, raw *models.RawTransaction) error

	GetStock(ctx context.Context) (int, error)
	ListStockMovements(ctx context.Context, limit int) ([]models.StockMovement, error)

	ListFixedAssets(ctx context.Context) ([]models.FixedAsset, error)
	GetFixedAsset(ctx context.Context, id int64) (models.FixedAsset, error)
	CreateFixedAsset(ctx context.Context, asset *models.FixedAsset) error
}

// LedgerTx is the unit of work handed to WithTx. The stock row and fixed
// asset rows it locks stay locked until the transaction ends.
type LedgerTx interface {
	LockStock(ctx context.Context) (int, error)
	SetStock(ctx context.Context, quantity int, reference, actor string) error
	InsertRawTransaction(ctx context.Context, raw *models.RawTransaction) error
	AppendJournalEntries(ctx context.Context, entries []models.JournalEntry) error
	LockFixedAsset(ctx context.Context, id int64) (models.FixedAsset, error)
	UpdateFixedAsset(ctx context.Context, asset models.FixedAsset) error
}

// AccountStore persists custom chart-of-accounts rows.
type AccountStore interface {
	FindAll(ctx context.Context, limit, offset int, search string) ([]models.Account, int, error)
	FindByID(ctx context.Context, id int) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int) error
	GetAllActive(ctx context.Context) ([]models.Account, error)
}

// prepareBatch checks that entries form one batch and stamps the batch id
// and creation time on a copy.
func prepareBatch(entries []models.JournalEntry, now time.Time) ([]models.JournalEntry, models.BatchKey, error) {
	if len(entries) == 0 {
		return nil, models.BatchKey{}, ErrEmptyBatch
	}
	key := entries[0].Key()
	batchID := uuid.NewString()
	out := make([]models.JournalEntry, len(entries))
	for i, e := range entries {
		if e.Key() != key {
			return nil, models.BatchKey{}, ErrMixedBatch
		}
		e.BatchID = batchID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		out[i] = e
	}
	return out, key, nil
}
