package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
)

func TestGenerateMissing_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	txs := NewTransactionService(store, nil, testLogger())
	gen := NewJournalGenerator(store, nil, testLogger())

	for i := 0; i < 3; i++ {
		_, err := txs.Record(ctx, models.TxCapitalContribution, models.TransactionRequest{
			Date: "2024-03-01", Amount: dec("1000"),
		}, "tester", RecordOptions{DeferJournal: true})
		require.NoError(t, err)
	}

	first, err := gen.GenerateMissing(ctx, models.TxCapitalContribution, "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)
	assert.Equal(t, 3, first.NewlyJournaled)
	assert.Equal(t, 0, first.AlreadyJournaled)

	second, err := gen.GenerateMissing(ctx, models.TxCapitalContribution, "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Processed)
	assert.Equal(t, 0, second.NewlyJournaled)
	assert.Equal(t, 3, second.AlreadyJournaled)

	entries, err := store.QueryJournalEntries(ctx, models.JournalFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestGenerateMissing_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	gen := NewJournalGenerator(store, nil, testLogger())
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertRawTransaction(ctx, &models.RawTransaction{Type: models.TxOperatingExpense, Date: date, Amount: dec("100"), PaymentMethod: models.PaymentCash}))
	bad := &models.RawTransaction{Type: models.TxOperatingExpense, Date: date, Amount: dec("-5"), PaymentMethod: models.PaymentCash}
	require.NoError(t, store.InsertRawTransaction(ctx, bad))
	require.NoError(t, store.InsertRawTransaction(ctx, &models.RawTransaction{Type: models.TxOperatingExpense, Date: date, Amount: dec("300"), PaymentMethod: models.PaymentBank}))

	report, err := gen.GenerateMissing(ctx, models.TxOperatingExpense, "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.NewlyJournaled)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad.TransactionID(), report.Failures[0].TransactionID)
	assert.Contains(t, report.Failures[0].Reason, accounting.ReasonNonPositiveAmount)
}

func TestGenerateAll_CoversEverySource(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	txs := NewTransactionService(store, nil, testLogger())
	gen := NewJournalGenerator(store, nil, testLogger())

	deferred := RecordOptions{DeferJournal: true}
	_, err := txs.Record(ctx, models.TxCapitalContribution, models.TransactionRequest{Date: "2024-03-01", Amount: dec("1000")}, "tester", deferred)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxPurchase, models.TransactionRequest{Date: "2024-03-02", Amount: dec("400"), Quantity: 2}, "tester", deferred)
	require.NoError(t, err)
	_, err = txs.Record(ctx, models.TxSale, models.TransactionRequest{Date: "2024-03-03", Amount: dec("300"), Quantity: 1, CostOfGoods: dec("200"), PaymentMethod: models.PaymentCredit, PartyName: "Toko A"}, "tester", deferred)
	require.NoError(t, err)

	report, err := gen.Generate(ctx, "", "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 3, report.NewlyJournaled)

	entries, err := store.QueryJournalEntries(ctx, models.JournalFilter{})
	require.NoError(t, err)
	assert.True(t, accounting.IsBalanced(entries))

	_, err = gen.GenerateMissing(ctx, models.TxOpeningBalance, "tester")
	assert.True(t, accounting.IsValidationError(err))
}
