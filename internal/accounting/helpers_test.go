package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func mustBuild(t *testing.T, txType models.TransactionType, f TransactionFields) []models.JournalEntry {
	t.Helper()
	if f.Date.IsZero() {
		f.Date = day(1)
	}
	entries, err := BuildEntries(txType, f, "tester")
	require.NoError(t, err)
	require.True(t, IsBalanced(entries))
	return entries
}

func findTotals(t *testing.T, rows []AccountTotals, name string) AccountTotals {
	t.Helper()
	for _, r := range rows {
		if r.AccountName == name {
			return r
		}
	}
	t.Fatalf("account %q not found", name)
	return AccountTotals{}
}

// sampleJournal is a capital contribution, a cash sale with cost of goods,
// a credit purchase, an owner draw and a utilities expense.
func sampleJournal(t *testing.T) []models.JournalEntry {
	t.Helper()
	var all []models.JournalEntry
	all = append(all, mustBuild(t, models.TxCapitalContribution, TransactionFields{
		TransactionID: "1", Date: day(1), Amount: dec("1000000"), PaymentMethod: models.PaymentCash,
	})...)
	all = append(all, mustBuild(t, models.TxSale, TransactionFields{
		TransactionID: "2", Date: day(2), Amount: dec("100000"), CostOfGoods: dec("60000"), PaymentMethod: models.PaymentCash,
	})...)
	all = append(all, mustBuild(t, models.TxPurchase, TransactionFields{
		TransactionID: "3", Date: day(3), Amount: dec("50000"), PaymentMethod: models.PaymentCredit, PartyName: "CV Sumber",
	})...)
	all = append(all, mustBuild(t, models.TxOwnerDraw, TransactionFields{
		TransactionID: "4", Date: day(4), Amount: dec("20000"), PaymentMethod: models.PaymentCash,
	})...)
	all = append(all, mustBuild(t, models.TxOperatingExpense, TransactionFields{
		TransactionID: "5", Date: day(5), Amount: dec("10000"), PaymentMethod: models.PaymentCash, ExpenseCategory: "listrik",
	})...)
	return all
}
