package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/repository"
)

func TestReportService_CacheIsInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newStore()
	reports := NewReportService(store, nil, client, time.Minute, testLogger())
	txs := NewTransactionService(store, reports, testLogger())

	_, err := txs.Record(ctx, models.TxCapitalContribution, models.TransactionRequest{Date: "2024-03-01", Amount: dec("1000000")}, "tester", RecordOptions{})
	require.NoError(t, err)

	tb, err := reports.TrialBalance(ctx, ReportRange{}, false)
	require.NoError(t, err)
	assertDecimal(t, "1000000", tb.TotalDebit)

	var cached []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "report:trial-balance:") {
			cached = append(cached, k)
		}
	}
	require.Len(t, cached, 1)
	assert.Equal(t, "report:trial-balance:v1:-:-", cached[0])

	// A write that skips the notifier is invisible until the version moves.
	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertRawTransaction(ctx, &models.RawTransaction{Type: models.TxOwnerDraw, Date: date, Amount: dec("20000")}))
	gen := NewJournalGenerator(store, nil, testLogger())
	_, err = gen.GenerateMissing(ctx, models.TxOwnerDraw, "tester")
	require.NoError(t, err)

	tb, err = reports.TrialBalance(ctx, ReportRange{}, false)
	require.NoError(t, err)
	assertDecimal(t, "1000000", tb.TotalDebit)

	reports.LedgerChanged(ctx)
	tb, err = reports.TrialBalance(ctx, ReportRange{}, false)
	require.NoError(t, err)
	assertDecimal(t, "1020000", tb.TotalDebit)
	assert.True(t, tb.Balanced)
}

func TestReportService_WithoutCache(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	reports := NewReportService(store, nil, nil, time.Minute, testLogger())
	txs := NewTransactionService(store, reports, testLogger())
	opts := RecordOptions{}

	_, err := txs.RecordOpeningBalance(ctx, models.OpeningBalanceRequest{
		Date: "2024-02-29",
		Lines: []models.OpeningBalanceLine{
			{AccountName: "Kas", Debit: dec("200000")},
			{AccountName: "Modal Pemilik", Credit: dec("200000")},
		},
	}, "tester")
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxCapitalContribution, models.TransactionRequest{Date: "2024-03-01", Amount: dec("1000000")}, "tester", opts)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxPurchase, models.TransactionRequest{Date: "2024-03-02", Amount: dec("60000"), Quantity: 10}, "tester", opts)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxSale, models.TransactionRequest{Date: "2024-03-03", Amount: dec("100000"), Quantity: 5, CostOfGoods: dec("60000"), PaymentMethod: models.PaymentCredit, PartyName: "Toko Mawar"}, "tester", opts)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxOperatingExpense, models.TransactionRequest{Date: "2024-03-04", Amount: dec("10000"), ExpenseCategory: "listrik"}, "tester", opts)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxOwnerDraw, models.TransactionRequest{Date: "2024-03-05", Amount: dec("20000")}, "tester", opts)
	require.NoError(t, err)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rng := ReportRange{From: &from}

	is, err := reports.IncomeStatement(ctx, rng)
	require.NoError(t, err)
	assertDecimal(t, "40000", is.GrossProfit)
	assertDecimal(t, "30000", is.NetIncome)
	assertDecimal(t, "30", is.MarginPct)

	eq, err := reports.EquityChanges(ctx, rng)
	require.NoError(t, err)
	assertDecimal(t, "200000", eq.BeginningEquity)
	assertDecimal(t, "1210000", eq.EndingEquity)

	cf, err := reports.CashFlow(ctx, rng)
	require.NoError(t, err)
	assertDecimal(t, "200000", cf.OpeningCash)
	assert.True(t, cf.Reconciled)

	ws, err := reports.Worksheet(ctx, rng)
	require.NoError(t, err)
	assert.True(t, ws.Balanced())

	receivables, err := reports.Subsidiary(ctx, accounting.Receivables, ReportRange{})
	require.NoError(t, err)
	require.Len(t, receivables.Parties, 1)
	assertDecimal(t, "100000", receivables.Parties[0].Balance)

	gj, err := reports.GeneralJournal(ctx, rng)
	require.NoError(t, err)
	assert.Len(t, gj.Batches, 5)
}

func TestReportService_RangeCarriesEarlierBalances(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	reports := NewReportService(store, nil, nil, time.Minute, testLogger())
	txs := NewTransactionService(store, reports, testLogger())
	opts := RecordOptions{}

	_, err := txs.Record(ctx, models.TxCapitalContribution, models.TransactionRequest{Date: "2024-01-10", Amount: dec("1000000")}, "tester", opts)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxOperatingExpense, models.TransactionRequest{Date: "2024-01-20", Amount: dec("10000"), ExpenseCategory: "listrik"}, "tester", opts)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxCapitalContribution, models.TransactionRequest{Date: "2024-03-05", Amount: dec("500000")}, "tester", opts)
	require.NoError(t, err)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rng := ReportRange{From: &from}

	tb, err := reports.TrialBalance(ctx, rng, false)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	rows := tb.Map()
	assertDecimal(t, "1500000", rows[accounting.AccKas].Debit)
	assertDecimal(t, "10000", rows[accounting.AccKas].Credit)
	assertDecimal(t, "10000", rows[accounting.AccModalPemilik].Debit)
	assertDecimal(t, "1500000", rows[accounting.AccModalPemilik].Credit)
	_, hasExpense := rows[accounting.AccBebanListrikAir]
	assert.False(t, hasExpense)

	is, err := reports.IncomeStatement(ctx, rng)
	require.NoError(t, err)
	assertDecimal(t, "0", is.NetIncome)

	ws, err := reports.Worksheet(ctx, rng)
	require.NoError(t, err)
	assert.True(t, ws.Balanced())

	full, err := reports.IncomeStatement(ctx, ReportRange{})
	require.NoError(t, err)
	assertDecimal(t, "-10000", full.NetIncome)
}

type blockingStore struct {
	*repository.MemoryStore
	once     sync.Once
	entered  chan struct{}
	release  chan struct{}
	buildErr chan error
}

func (b *blockingStore) QueryJournalEntries(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
		b.buildErr <- ctx.Err()
	})
	return b.MemoryStore.QueryJournalEntries(ctx, filter)
}

func TestReportService_BuildOutlivesCanceledCaller(t *testing.T) {
	store := &blockingStore{
		MemoryStore: newStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
		buildErr:    make(chan error, 1),
	}
	reports := NewReportService(store, nil, nil, time.Minute, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := reports.TrialBalance(ctx, ReportRange{}, false)
		done <- err
	}()

	<-store.entered
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(store.release)
	select {
	case err := <-store.buildErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("report build did not finish")
	}

	tb, err := reports.TrialBalance(context.Background(), ReportRange{}, false)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
}
