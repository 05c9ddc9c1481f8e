package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pinkilang/internal/models"
)

// MemoryStore is an in-process LedgerStore and AccountStore used by tests
// and by the development server when MySQL is unavailable. A single mutex
// serialises every unit of work, so WithTx callbacks must only use the tx
// they are given.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	stockKey  string
	stock     int
	movements []models.StockMovement

	raws    []models.RawTransaction
	entries []models.JournalEntry
	batches map[models.BatchKey]string

	assets   map[int64]models.FixedAsset
	accounts map[int]models.Account

	nextRawID      int64
	nextEntryID    int64
	nextMovementID int64
	nextAssetID    int64
	nextAccountID  int
}

// NewMemoryStore creates an empty store for the given stock key.
func NewMemoryStore(stockKey string) *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		stockKey: stockKey,
		batches:  make(map[models.BatchKey]string),
		assets:   make(map[int64]models.FixedAsset),
		accounts: make(map[int]models.Account),
	}
}

// SetClock replaces the time source. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// memTx stages writes and applies them to the store on commit.
type memTx struct {
	s *MemoryStore

	stock        int
	stockTouched bool
	movements    []models.StockMovement
	raws         []models.RawTransaction
	entries      []models.JournalEntry
	batches      map[models.BatchKey]string
	assets       map[int64]models.FixedAsset
	nextRawID    int64
	nextEntryID  int64
	nextMoveID   int64
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:           s,
		stock:       s.stock,
		batches:     make(map[models.BatchKey]string),
		assets:      make(map[int64]models.FixedAsset),
		nextRawID:   s.nextRawID,
		nextEntryID: s.nextEntryID,
		nextMoveID:  s.nextMovementID,
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (tx *memTx) commit() {
	s := tx.s
	if tx.stockTouched {
		s.stock = tx.stock
	}
	s.movements = append(s.movements, tx.movements...)
	s.raws = append(s.raws, tx.raws...)
	s.entries = append(s.entries, tx.entries...)
	for k, v := range tx.batches {
		s.batches[k] = v
	}
	for id, a := range tx.assets {
		s.assets[id] = a
	}
	s.nextRawID = tx.nextRawID
	s.nextEntryID = tx.nextEntryID
	s.nextMovementID = tx.nextMoveID
}

func (tx *memTx) LockStock(ctx context.Context) (int, error) {
	return tx.stock, nil
}

func (tx *memTx) SetStock(ctx context.Context, quantity int, reference, actor string) error {
	if quantity < 0 {
		return ErrInsufficientStock
	}
	delta := quantity - tx.stock
	tx.stock = quantity
	tx.stockTouched = true
	tx.nextMoveID++
	tx.movements = append(tx.movements, models.StockMovement{
		ID:            tx.nextMoveID,
		StockKey:      tx.s.stockKey,
		Delta:         delta,
		QuantityAfter: quantity,
		Reference:     reference,
		Actor:         actor,
		CreatedAt:     tx.s.now(),
	})
	return nil
}

func (tx *memTx) InsertRawTransaction(ctx context.Context, raw *models.RawTransaction) error {
	tx.nextRawID++
	raw.ID = tx.nextRawID
	if raw.CreatedAt.IsZero() {
		raw.CreatedAt = tx.s.now()
	}
	tx.raws = append(tx.raws, *raw)
	return nil
}

func (tx *memTx) AppendJournalEntries(ctx context.Context, entries []models.JournalEntry) error {
	batch, key, err := prepareBatch(entries, tx.s.now())
	if err != nil {
		return err
	}
	if _, ok := tx.s.batches[key]; ok {
		return ErrAlreadyJournaled
	}
	if _, ok := tx.batches[key]; ok {
		return ErrAlreadyJournaled
	}
	for i := range batch {
		tx.nextEntryID++
		batch[i].ID = tx.nextEntryID
	}
	tx.batches[key] = batch[0].BatchID
	tx.entries = append(tx.entries, batch...)
	return nil
}

func (tx *memTx) LockFixedAsset(ctx context.Context, id int64) (models.FixedAsset, error) {
	if a, ok := tx.assets[id]; ok {
		return a, nil
	}
	a, ok := tx.s.assets[id]
	if !ok {
		return models.FixedAsset{}, ErrNotFound
	}
	return a, nil
}

func (tx *memTx) UpdateFixedAsset(ctx context.Context, asset models.FixedAsset) error {
	if _, ok := tx.s.assets[asset.ID]; !ok {
		return ErrNotFound
	}
	asset.UpdatedAt = tx.s.now()
	tx.assets[asset.ID] = asset
	return nil
}

func (s *MemoryStore) AppendJournalEntries(ctx context.Context, entries []models.JournalEntry) error {
	return s.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		return tx.AppendJournalEntries(ctx, entries)
	})
}

func (s *MemoryStore) QueryJournalEntries(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.JournalEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) JournalExists(ctx context.Context, transactionID string, txType models.TransactionType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.batches[models.BatchKey{TransactionID: transactionID, TransactionType: txType}]
	return ok, nil
}

func (s *MemoryStore) ListRawTransactions(ctx context.Context, source models.TransactionType) ([]models.RawTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RawTransaction
	for _, r := range s.raws {
		if source == "" || r.Type == source {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetRawTransaction(ctx context.Context, id int64) (models.RawTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.raws {
		if r.ID == id {
			return r, nil
		}
	}
	return models.RawTransaction{}, ErrNotFound
}

func (s *MemoryStore) InsertRawTransaction(ctx context.Context, raw *models.RawTransaction) error {
	return s.WithTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		return tx.InsertRawTransaction(ctx, raw)
	})
}

func (s *MemoryStore) GetStock(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock, nil
}

func (s *MemoryStore) ListStockMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StockMovement, 0, len(s.movements))
	for i := len(s.movements) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.movements[i])
	}
	return out, nil
}

func (s *MemoryStore) ListFixedAssets(ctx context.Context) ([]models.FixedAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FixedAsset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetFixedAsset(ctx context.Context, id int64) (models.FixedAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return models.FixedAsset{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) CreateFixedAsset(ctx context.Context, asset *models.FixedAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAssetID++
	asset.ID = s.nextAssetID
	asset.CreatedAt = s.now()
	asset.UpdatedAt = asset.CreatedAt
	s.assets[asset.ID] = *asset
	return nil
}

// Accounts

func (s *MemoryStore) FindAll(ctx context.Context, limit, offset int, search string) ([]models.Account, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(search)
	var matched []models.Account
	for _, a := range s.accounts {
		if needle == "" || strings.Contains(strings.ToLower(a.AccountCode), needle) ||
			strings.Contains(strings.ToLower(a.AccountName), needle) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].AccountCode < matched[j].AccountCode })
	total := len(matched)
	if offset >= total {
		return []models.Account{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.AccountCode == account.AccountCode {
			return ErrDuplicateAccount
		}
	}
	s.nextAccountID++
	account.ID = s.nextAccountID
	account.CreatedAt = s.now()
	account.UpdatedAt = account.CreatedAt
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.accounts[account.ID]
	if !ok {
		return ErrNotFound
	}
	for id, a := range s.accounts {
		if id != account.ID && a.AccountCode == account.AccountCode {
			return ErrDuplicateAccount
		}
	}
	account.CreatedAt = old.CreatedAt
	account.UpdatedAt = s.now()
	s.accounts[account.ID] = *account
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryStore) GetAllActive(ctx context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Account
	for _, a := range s.accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out, nil
}

// Ping always succeeds; the store lives in process.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
