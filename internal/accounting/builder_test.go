package accounting

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/models"
)

func TestBuildEntriesCashSale(t *testing.T) {
	entries := mustBuild(t, models.TxSale, TransactionFields{
		TransactionID: "10",
		Amount:        dec("100000"),
		CostOfGoods:   dec("60000"),
		PaymentMethod: models.PaymentCash,
		ItemName:      "Sabun",
	})
	require.Len(t, entries, 4)

	assert.Equal(t, AccKas, entries[0].AccountName)
	assertDecimal(t, "100000", entries[0].Debit)
	assert.Equal(t, AccPenjualan, entries[1].AccountName)
	assertDecimal(t, "100000", entries[1].Credit)
	assert.Equal(t, AccHPP, entries[2].AccountName)
	assertDecimal(t, "60000", entries[2].Debit)
	assert.Equal(t, AccPersediaan, entries[3].AccountName)
	assertDecimal(t, "60000", entries[3].Credit)

	for _, e := range entries {
		assert.Equal(t, "10", e.TransactionID)
		assert.Equal(t, models.TxSale, e.TransactionType)
		assert.Equal(t, "tester", e.Actor)
		assert.NotEmpty(t, e.AccountCode)
	}

	tb := TrialBalance(entries, TrialBalanceOptions{})
	assertDecimal(t, "100000", findTotals(t, tb.Rows, AccKas).Debit)
	assertDecimal(t, "100000", findTotals(t, tb.Rows, AccPenjualan).Credit)
	assertDecimal(t, "60000", findTotals(t, tb.Rows, AccHPP).Debit)
	assertDecimal(t, "60000", findTotals(t, tb.Rows, AccPersediaan).Credit)
	assert.True(t, tb.Balanced)
}

func TestBuildEntriesSaleWithoutCostOfGoods(t *testing.T) {
	entries := mustBuild(t, models.TxSale, TransactionFields{Amount: dec("5000"), PaymentMethod: models.PaymentBank})
	require.Len(t, entries, 2)
	assert.Equal(t, AccBank, entries[0].AccountName)
}

func TestBuildEntriesCreditSaleDebitsReceivable(t *testing.T) {
	entries := mustBuild(t, models.TxSale, TransactionFields{
		Amount: dec("75000"), PaymentMethod: models.PaymentCredit, PartyName: "Toko Maju",
	})
	assert.Equal(t, AccPiutangUsaha, entries[0].AccountName)
	assert.Contains(t, entries[0].Description, "Toko Maju")
}

func TestBuildEntriesCreditPurchase(t *testing.T) {
	entries := mustBuild(t, models.TxPurchase, TransactionFields{Amount: dec("50000"), PaymentMethod: models.PaymentCredit})
	require.Len(t, entries, 2)
	assert.Equal(t, AccPersediaan, entries[0].AccountName)
	assertDecimal(t, "50000", entries[0].Debit)
	assert.Equal(t, AccUtangUsaha, entries[1].AccountName)
	assertDecimal(t, "50000", entries[1].Credit)
}

func TestBuildEntriesOwnerDraw(t *testing.T) {
	entries := mustBuild(t, models.TxOwnerDraw, TransactionFields{Amount: dec("20000")})
	require.Len(t, entries, 2)
	assert.Equal(t, AccPrive, entries[0].AccountName)
	assertDecimal(t, "20000", entries[0].Debit)
	assert.Equal(t, AccKas, entries[1].AccountName)
	assertDecimal(t, "20000", entries[1].Credit)
}

func TestBuildEntriesSettlements(t *testing.T) {
	recv := mustBuild(t, models.TxReceivableSettlement, TransactionFields{Amount: dec("30000"), PaymentMethod: models.PaymentBank})
	assert.Equal(t, AccBank, recv[0].AccountName)
	assert.Equal(t, AccPiutangUsaha, recv[1].AccountName)

	pay := mustBuild(t, models.TxPayableSettlement, TransactionFields{Amount: dec("30000")})
	assert.Equal(t, AccUtangUsaha, pay[0].AccountName)
	assert.Equal(t, AccKas, pay[1].AccountName)
}

func TestBuildEntriesExpenseCategories(t *testing.T) {
	cases := map[string]string{
		"supplies":        AccBebanPerlengkapan,
		"Perlengkapan":    AccBebanPerlengkapan,
		"listrik":         AccBebanListrikAir,
		"utilities":       AccBebanListrikAir,
		"sewa":            AccBebanSewa,
		"payroll":         AccBebanGaji,
		"Gaji":            AccBebanGaji,
		"":                AccBebanLain,
		"something weird": AccBebanLain,
	}
	for label, want := range cases {
		t.Run(label, func(t *testing.T) {
			entries := mustBuild(t, models.TxOperatingExpense, TransactionFields{Amount: dec("1000"), ExpenseCategory: label})
			assert.Equal(t, want, entries[0].AccountName)
			assert.Equal(t, AccKas, entries[1].AccountName)
		})
	}
}

func TestBuildEntriesRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		txType models.TransactionType
		fields TransactionFields
		field  string
	}{
		{"zero amount", models.TxSale, TransactionFields{Date: day(1)}, "amount"},
		{"negative amount", models.TxPurchase, TransactionFields{Date: day(1), Amount: dec("-1")}, "amount"},
		{"missing date", models.TxSale, TransactionFields{Amount: dec("1")}, "date"},
		{"negative cogs", models.TxSale, TransactionFields{Date: day(1), Amount: dec("1"), CostOfGoods: dec("-5")}, "cost_of_goods"},
		{"credit draw", models.TxOwnerDraw, TransactionFields{Date: day(1), Amount: dec("1"), PaymentMethod: models.PaymentCredit}, "payment_method"},
		{"credit contribution", models.TxCapitalContribution, TransactionFields{Date: day(1), Amount: dec("1"), PaymentMethod: models.PaymentCredit}, "payment_method"},
		{"unknown type", models.TransactionType("REFUND"), TransactionFields{Date: day(1), Amount: dec("1")}, "transaction_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := BuildEntries(tc.txType, tc.fields, "tester")
			require.Error(t, err)
			assert.Nil(t, entries)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestBuildEntriesOpeningBalance(t *testing.T) {
	lines := []models.OpeningBalanceLine{
		{AccountName: "kas", Debit: dec("500000")},
		{AccountName: "Peralatan", Debit: dec("1500000")},
		{AccountName: "modal", Credit: dec("2000000")},
	}
	entries := mustBuild(t, models.TxOpeningBalance, TransactionFields{TransactionID: "ob-1", Lines: lines})
	require.Len(t, entries, 3)
	assert.Equal(t, AccKas, entries[0].AccountName)
	assert.Equal(t, "1110", entries[0].AccountCode)
	assert.Equal(t, AccModalPemilik, entries[2].AccountName)

	_, err := BuildEntries(models.TxOpeningBalance, TransactionFields{Date: day(1), Lines: lines[:2]}, "tester")
	assert.True(t, IsValidationError(err), "unbalanced lines must be rejected")

	_, err = BuildEntries(models.TxOpeningBalance, TransactionFields{Date: day(1), Lines: lines[:1]}, "tester")
	assert.True(t, IsValidationError(err), "a single line must be rejected")

	twoSided := []models.OpeningBalanceLine{
		{AccountName: "Kas", Debit: dec("10"), Credit: dec("10")},
		{AccountName: "Modal Pemilik", Credit: dec("0")},
	}
	_, err = BuildEntries(models.TxOpeningBalance, TransactionFields{Date: day(1), Lines: twoSided}, "tester")
	assert.True(t, IsValidationError(err))
}

func TestBuilderOutputAlwaysBalances(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	types := []models.TransactionType{
		models.TxSale, models.TxPurchase, models.TxOperatingExpense, models.TxOwnerDraw,
		models.TxCapitalContribution, models.TxReceivableSettlement, models.TxPayableSettlement,
	}
	methods := []models.PaymentMethod{models.PaymentCash, models.PaymentBank, models.PaymentCredit}
	categories := []string{"supplies", "utilities", "rent", "payroll", "other"}

	var journal []models.JournalEntry
	for i := 0; i < 500; i++ {
		txType := types[rng.Intn(len(types))]
		method := methods[rng.Intn(len(methods))]
		if method == models.PaymentCredit && txType != models.TxSale && txType != models.TxPurchase && txType != models.TxOperatingExpense {
			method = models.PaymentCash
		}
		amount := decimal.New(int64(rng.Intn(1_000_000)+1), -2)
		cogs := decimal.Zero
		if txType == models.TxSale {
			cogs = amount.Mul(decimal.NewFromFloat(0.6)).Round(2)
		}
		entries := mustBuild(t, txType, TransactionFields{
			TransactionID:   fmt.Sprint(i),
			Date:            day(1 + i%28),
			Amount:          amount,
			CostOfGoods:     cogs,
			PaymentMethod:   method,
			ExpenseCategory: categories[rng.Intn(len(categories))],
		})
		journal = append(journal, entries...)
	}

	debit, credit := BatchTotals(journal)
	assert.True(t, debit.Equal(credit))
	tb := TrialBalance(journal, TrialBalanceOptions{})
	assert.True(t, tb.Balanced)
	assertDecimal(t, "0", tb.Difference)
}

func TestBuildEntriesClampsGeneratedDescription(t *testing.T) {
	entries := mustBuild(t, models.TxSale, TransactionFields{
		TransactionID: "11",
		Amount:        dec("100000"),
		PaymentMethod: models.PaymentCredit,
		ItemName:      strings.Repeat("k", 255),
		PartyName:     strings.Repeat("ü", 255),
	})
	for _, e := range entries {
		assert.True(t, utf8.ValidString(e.Description))
		assert.Equal(t, MaxDescriptionLength, utf8.RuneCountInString(e.Description))
	}

	entries = mustBuild(t, models.TxOwnerDraw, TransactionFields{TransactionID: "12", Amount: dec("1000")})
	assert.Equal(t, "Pengambilan prive pemilik", entries[0].Description)
}
