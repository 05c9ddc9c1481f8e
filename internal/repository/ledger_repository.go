package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pinkilang/internal/models"
)

const journalColumns = `id, batch_id, entry_date, account_name, account_code, debit, credit,
	description, transaction_type, transaction_id, actor, created_at`

const rawColumns = `id, transaction_type, transaction_date, amount, quantity, cost_of_goods,
	payment_method, item_name, party_name, expense_category, description, actor, created_at`

const assetColumns = `id, name, acquisition_date, acquisition_value, residual_value, useful_life_years,
	accumulated_depreciation, book_value, created_at, updated_at`

// LedgerRepository is the MySQL LedgerStore.
type LedgerRepository struct {
	db       *sqlx.DB
	stockKey string
}

func NewLedgerRepository(db *sqlx.DB, stockKey string) *LedgerRepository {
	return &LedgerRepository{db: db, stockKey: stockKey}
}

type mysqlTx struct {
	tx       *sqlx.Tx
	stockKey string
	stock    int
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	if err := fn(ctx, &mysqlTx{tx: tx, stockKey: r.stockKey}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// LockStock creates the stock row on first use and locks it for the rest
// of the transaction.
func (t *mysqlTx) LockStock(ctx context.Context) (int, error) {
	if _, err := t.tx.ExecContext(ctx,
		"INSERT IGNORE INTO stock (stock_key, quantity, updated_at) VALUES (?, 0, ?)",
		t.stockKey, time.Now()); err != nil {
		return 0, wrap("init stock", err)
	}
	var qty int
	if err := t.tx.GetContext(ctx, &qty, "SELECT quantity FROM stock WHERE stock_key = ? FOR UPDATE", t.stockKey); err != nil {
		return 0, wrap("lock stock", err)
	}
	t.stock = qty
	return qty, nil
}

func (t *mysqlTx) SetStock(ctx context.Context, quantity int, reference, actor string) error {
	if quantity < 0 {
		return ErrInsufficientStock
	}
	now := time.Now()
	if _, err := t.tx.ExecContext(ctx,
		"UPDATE stock SET quantity = ?, updated_at = ? WHERE stock_key = ?",
		quantity, now, t.stockKey); err != nil {
		return wrap("update stock", err)
	}
	movement := models.StockMovement{
		StockKey:      t.stockKey,
		Delta:         quantity - t.stock,
		QuantityAfter: quantity,
		Reference:     reference,
		Actor:         actor,
		CreatedAt:     now,
	}
	query := `INSERT INTO stock_movements (stock_key, delta, quantity_after, reference, actor, created_at)
	          VALUES (:stock_key, :delta, :quantity_after, :reference, :actor, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, movement); err != nil {
		return wrap("insert stock movement", err)
	}
	t.stock = quantity
	return nil
}

func (t *mysqlTx) InsertRawTransaction(ctx context.Context, raw *models.RawTransaction) error {
	return insertRaw(ctx, t.tx, raw)
}

func (t *mysqlTx) AppendJournalEntries(ctx context.Context, entries []models.JournalEntry) error {
	return appendJournal(ctx, t.tx, entries)
}

func (t *mysqlTx) LockFixedAsset(ctx context.Context, id int64) (models.FixedAsset, error) {
	var asset models.FixedAsset
	query := "SELECT " + assetColumns + " FROM fixed_assets WHERE id = ? FOR UPDATE"
	if err := t.tx.GetContext(ctx, &asset, query, id); err != nil {
		return models.FixedAsset{}, wrap("lock fixed asset", err)
	}
	return asset, nil
}

func (t *mysqlTx) UpdateFixedAsset(ctx context.Context, asset models.FixedAsset) error {
	asset.UpdatedAt = time.Now()
	query := `UPDATE fixed_assets SET name = :name, acquisition_date = :acquisition_date,
	          acquisition_value = :acquisition_value, residual_value = :residual_value,
	          useful_life_years = :useful_life_years, accumulated_depreciation = :accumulated_depreciation,
	          book_value = :book_value, updated_at = :updated_at
	          WHERE id = :id`
	res, err := t.tx.NamedExecContext(ctx, query, asset)
	if err != nil {
		return wrap("update fixed asset", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func insertRaw(ctx context.Context, ext sqlx.ExtContext, raw *models.RawTransaction) error {
	if raw.CreatedAt.IsZero() {
		raw.CreatedAt = time.Now()
	}
	query := `INSERT INTO business_transactions (transaction_type, transaction_date, amount, quantity,
	          cost_of_goods, payment_method, item_name, party_name, expense_category, description, actor, created_at)
	          VALUES (:transaction_type, :transaction_date, :amount, :quantity, :cost_of_goods, :payment_method,
	          :item_name, :party_name, :expense_category, :description, :actor, :created_at)`
	result, err := sqlx.NamedExecContext(ctx, ext, query, raw)
	if err != nil {
		return wrap("insert business transaction", err)
	}
	id, _ := result.LastInsertId()
	raw.ID = id
	return nil
}

// appendJournal claims the batch key first; the unique key on
// journal_batches turns a concurrent second append into ErrAlreadyJournaled.
func appendJournal(ctx context.Context, ext sqlx.ExtContext, entries []models.JournalEntry) error {
	batch, key, err := prepareBatch(entries, time.Now())
	if err != nil {
		return err
	}
	_, err = ext.ExecContext(ctx,
		`INSERT INTO journal_batches (batch_id, transaction_id, transaction_type, entry_date, actor, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch[0].BatchID, key.TransactionID, key.TransactionType, batch[0].Date, batch[0].Actor, batch[0].CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyJournaled
		}
		return wrap("insert journal batch", err)
	}
	query := `INSERT INTO journal_entries (batch_id, entry_date, account_name, account_code, debit, credit,
	          description, transaction_type, transaction_id, actor, created_at)
	          VALUES (:batch_id, :entry_date, :account_name, :account_code, :debit, :credit,
	          :description, :transaction_type, :transaction_id, :actor, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, batch); err != nil {
		return wrap("insert journal entries", err)
	}
	return nil
}

func (r *LedgerRepository) AppendJournalEntries(ctx context.Context, entries []models.JournalEntry) error {
	return r.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		return tx.AppendJournalEntries(ctx, entries)
	})
}

// journalQuery builds the SELECT for a journal filter.
func journalQuery(filter models.JournalFilter) (string, []interface{}) {
	var where []string
	var args []interface{}
	if filter.TransactionID != "" {
		where = append(where, "transaction_id = ?")
		args = append(args, filter.TransactionID)
	}
	if filter.TransactionType != "" {
		where = append(where, "transaction_type = ?")
		args = append(args, filter.TransactionType)
	}
	if filter.From != nil {
		where = append(where, "entry_date >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "entry_date <= ?")
		args = append(args, *filter.To)
	}
	if filter.ExcludeAdjustments {
		where = append(where, "transaction_type NOT IN (?, ?, ?)")
		args = append(args, models.TxAdjustmentManual, models.TxAdjustmentAsset, models.TxAdjustmentAuto)
	}
	query := "SELECT " + journalColumns + " FROM journal_entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY entry_date, created_at, id"
	return query, args
}

func (r *LedgerRepository) QueryJournalEntries(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, error) {
	query, args := journalQuery(filter)
	entries := []models.JournalEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, wrap("query journal entries", err)
	}
	return entries, nil
}

func (r *LedgerRepository) JournalExists(ctx context.Context, transactionID string, txType models.TransactionType) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM journal_batches WHERE transaction_id = ? AND transaction_type = ?)"
	if err := r.db.GetContext(ctx, &exists, query, transactionID, txType); err != nil {
		return false, wrap("check journal batch", err)
	}
	return exists, nil
}

func (r *LedgerRepository) ListRawTransactions(ctx context.Context, source models.TransactionType) ([]models.RawTransaction, error) {
	query := "SELECT " + rawColumns + " FROM business_transactions"
	args := []interface{}{}
	if source != "" {
		query += " WHERE transaction_type = ?"
		args = append(args, source)
	}
	query += " ORDER BY transaction_date, id"
	raws := []models.RawTransaction{}
	if err := r.db.SelectContext(ctx, &raws, query, args...); err != nil {
		return nil, wrap("list business transactions", err)
	}
	return raws, nil
}

func (r *LedgerRepository) GetRawTransaction(ctx context.Context, id int64) (models.RawTransaction, error) {
	var raw models.RawTransaction
	query := "SELECT " + rawColumns + " FROM business_transactions WHERE id = ? LIMIT 1"
	if err := r.db.GetContext(ctx, &raw, query, id); err != nil {
		return models.RawTransaction{}, wrap("get business transaction", err)
	}
	return raw, nil
}

func (r *LedgerRepository) InsertRawTransaction(ctx context.Context, raw *models.RawTransaction) error {
	return insertRaw(ctx, r.db, raw)
}

func (r *LedgerRepository) GetStock(ctx context.Context) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, "SELECT quantity FROM stock WHERE stock_key = ?", r.stockKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, wrap("get stock", err)
	}
	return qty, nil
}

func (r *LedgerRepository) ListStockMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	movements := []models.StockMovement{}
	query := `SELECT id, stock_key, delta, quantity_after, reference, actor, created_at
	          FROM stock_movements WHERE stock_key = ? ORDER BY id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &movements, query, r.stockKey, limit); err != nil {
		return nil, wrap("list stock movements", err)
	}
	return movements, nil
}

func (r *LedgerRepository) ListFixedAssets(ctx context.Context) ([]models.FixedAsset, error) {
	assets := []models.FixedAsset{}
	if err := r.db.SelectContext(ctx, &assets, "SELECT "+assetColumns+" FROM fixed_assets ORDER BY id"); err != nil {
		return nil, wrap("list fixed assets", err)
	}
	return assets, nil
}

func (r *LedgerRepository) GetFixedAsset(ctx context.Context, id int64) (models.FixedAsset, error) {
	var asset models.FixedAsset
	if err := r.db.GetContext(ctx, &asset, "SELECT "+assetColumns+" FROM fixed_assets WHERE id = ? LIMIT 1", id); err != nil {
		return models.FixedAsset{}, wrap("get fixed asset", err)
	}
	return asset, nil
}

func (r *LedgerRepository) CreateFixedAsset(ctx context.Context, asset *models.FixedAsset) error {
	now := time.Now()
	asset.CreatedAt, asset.UpdatedAt = now, now
	query := `INSERT INTO fixed_assets (name, acquisition_date, acquisition_value, residual_value, useful_life_years,
	          accumulated_depreciation, book_value, created_at, updated_at)
	          VALUES (:name, :acquisition_date, :acquisition_value, :residual_value, :useful_life_years,
	          :accumulated_depreciation, :book_value, :created_at, :updated_at)`
	result, err := r.db.NamedExecContext(ctx, query, asset)
	if err != nil {
		return wrap("create fixed asset", err)
	}
	id, _ := result.LastInsertId()
	asset.ID = id
	return nil
}

// Ping reports whether the database is reachable.
func (r *LedgerRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
