package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/models"
)

func TestTrialBalanceFoldsAliases(t *testing.T) {
	entries := []models.JournalEntry{
		{AccountName: "HPP", Debit: dec("100"), Credit: decimal.Zero},
		{AccountName: "Harga Pokok Penjualan", Debit: dec("50"), Credit: decimal.Zero},
		{AccountName: "persediaan", Debit: decimal.Zero, Credit: dec("150")},
	}
	tb := TrialBalance(entries, TrialBalanceOptions{})
	require.Len(t, tb.Rows, 2)
	assert.Equal(t, "1140", tb.Rows[0].AccountCode)
	assert.Equal(t, AccHPP, tb.Rows[1].AccountName)
	assertDecimal(t, "150", tb.Rows[1].Debit)
	assert.True(t, tb.Balanced)
}

func TestTrialBalanceReportsImbalance(t *testing.T) {
	entries := []models.JournalEntry{
		{AccountName: AccKas, Debit: dec("100")},
		{AccountName: AccPenjualan, Credit: dec("90")},
	}
	tb := TrialBalance(entries, TrialBalanceOptions{})
	assert.False(t, tb.Balanced)
	assertDecimal(t, "10", tb.Difference)
}

func TestTrialBalanceAdjustmentFilters(t *testing.T) {
	journal := sampleJournal(t)
	adj, err := ManualAdjustment(ManualFields{
		TransactionID: "adj-1", Date: day(31), DebitAccount: "Beban Perlengkapan", CreditAccount: "Perlengkapan", Amount: dec("5000"),
	}, "tester", nil)
	require.NoError(t, err)
	journal = append(journal, adj...)

	without := TrialBalance(journal, TrialBalanceOptions{ExcludeAdjustments: true})
	for _, r := range without.Rows {
		assert.NotEqual(t, AccBebanPerlengkapan, r.AccountName)
	}
	only := TrialBalance(journal, TrialBalanceOptions{OnlyAdjustments: true})
	require.Len(t, only.Rows, 2)
	assertDecimal(t, "5000", only.TotalDebit)

	atb := AdjustedTrialBalance(journal, nil)
	assert.True(t, atb.Balanced)
	assertDecimal(t, without.TotalDebit.Add(dec("5000")).String(), atb.TotalAdjustedDebit)
	for _, r := range atb.Rows {
		assert.True(t, r.AdjustedDebit.Equal(r.TrialDebit.Add(r.AdjustmentDebit)))
		assert.True(t, r.AdjustedCredit.Equal(r.TrialCredit.Add(r.AdjustmentCredit)))
	}
}

func TestWorksheetBalances(t *testing.T) {
	journal := sampleJournal(t)
	dep, err := DepreciateAsset(models.FixedAsset{
		ID: 1, Name: "Etalase", AcquisitionValue: dec("1200000"), UsefulLifeYears: 1,
	}, 1, DepreciationFields{TransactionType: models.TxAdjustmentAsset, TransactionID: "dep-1", Date: day(31)}, "tester")
	require.NoError(t, err)
	journal = append(journal, dep.Entries...)

	ws := BuildWorksheet(journal, nil)
	assert.True(t, ws.Balanced())
	assert.Empty(t, ws.UnclassifiedAccounts)

	tot := ws.Totals
	assert.True(t, tot.IncomeStatementDebit.Add(tot.BalanceSheetDebit).Equal(tot.IncomeStatementCredit.Add(tot.BalanceSheetCredit)))
	assertDecimal(t, "100000", tot.AdjustmentDebit)

	// revenue 100000 - hpp 60000 - listrik 10000 - penyusutan 100000
	assertDecimal(t, "-70000", ws.ProfitOrLoss)
	assert.True(t, tot.IncomeStatementDebit.Add(ws.ProfitOrLoss).Equal(tot.IncomeStatementCredit))
	assert.True(t, tot.BalanceSheetCredit.Add(ws.ProfitOrLoss).Equal(tot.BalanceSheetDebit))

	for _, row := range ws.Rows {
		if row.AccountName == AccPenjualan {
			assert.Equal(t, IncomeStatement, row.Statement)
			assertDecimal(t, "100000", row.IncomeStatementCredit)
		}
		if row.AccountName == AccAkumulasiPenyusutan {
			assert.Equal(t, BalanceSheet, row.Statement)
			assertDecimal(t, "100000", row.BalanceSheetCredit)
		}
	}
}

func TestWorksheetFlagsUnclassifiedAccounts(t *testing.T) {
	entries := []models.JournalEntry{
		{AccountName: "Misc Thing", Debit: dec("40"), Credit: decimal.Zero, TransactionType: models.TxOpeningBalance},
		{AccountName: AccModalPemilik, Debit: decimal.Zero, Credit: dec("40"), TransactionType: models.TxOpeningBalance},
	}
	ws := BuildWorksheet(entries, nil)
	assert.Equal(t, []string{"Misc Thing"}, ws.UnclassifiedAccounts)
	assert.True(t, ws.Balanced())
	for _, row := range ws.Rows {
		if row.AccountName == "Misc Thing" {
			assert.True(t, row.Unclassified)
			assert.Equal(t, BalanceSheet, row.Statement)
			assertDecimal(t, "40", row.BalanceSheetDebit)
		}
	}
}

func TestIncomeStatementScenario(t *testing.T) {
	balances := []AccountTotals{
		{AccountName: AccPenjualan, Debit: decimal.Zero, Credit: dec("100000")},
		{AccountName: AccHPP, Debit: dec("60000"), Credit: decimal.Zero},
		{AccountName: AccBebanListrikAir, Debit: dec("10000"), Credit: decimal.Zero},
	}
	is := ComputeIncomeStatement(balances, nil)
	assertDecimal(t, "100000", is.RevenueTotal)
	assertDecimal(t, "60000", is.COGS)
	assert.Equal(t, COGSDirect, is.COGSMethod)
	assertDecimal(t, "40000", is.GrossProfit)
	assertDecimal(t, "10000", is.OpexTotal)
	assertDecimal(t, "0", is.OtherExpenseTotal)
	assertDecimal(t, "30000", is.NetIncome)
	assertDecimal(t, "30", is.MarginPct)
}

func TestIncomeStatementPeriodicCOGSAndOtherExpenses(t *testing.T) {
	balances := []AccountTotals{
		{AccountName: AccPenjualan, Credit: dec("300")},
		{AccountName: AccPersediaanAwal, Debit: dec("20")},
		{AccountName: AccPembelian, Debit: dec("150")},
		{AccountName: AccPersediaanAkhir, Credit: dec("30")},
		{AccountName: AccBebanBunga, Debit: dec("7")},
		{AccountName: "Beban Iklan", Debit: dec("3")},
		{AccountName: AccBebanGaji, Debit: dec("40")},
	}
	is := ComputeIncomeStatement(balances, nil)
	assert.Equal(t, COGSPeriodic, is.COGSMethod)
	assertDecimal(t, "140", is.COGS)
	assertDecimal(t, "160", is.GrossProfit)
	assertDecimal(t, "40", is.OpexTotal)
	assertDecimal(t, "10", is.OtherExpenseTotal)
	assertDecimal(t, "110", is.NetIncome)
	assertDecimal(t, "36.67", is.MarginPct)
}

func TestMarginWithoutRevenueIsZero(t *testing.T) {
	is := ComputeIncomeStatement([]AccountTotals{{AccountName: AccBebanSewa, Debit: dec("500")}}, nil)
	assertDecimal(t, "-500", is.NetIncome)
	assertDecimal(t, "0", is.MarginPct)
}

func cashFlowJournal(t *testing.T) []models.JournalEntry {
	t.Helper()
	journal := sampleJournal(t)
	equipment, err := ManualAdjustment(ManualFields{
		TransactionID: "adj-eq", Date: day(6), DebitAccount: AccPeralatan, CreditAccount: AccBank, Amount: dec("500000"),
	}, "tester", nil)
	require.NoError(t, err)
	dep, err := DepreciateAsset(models.FixedAsset{
		ID: 7, Name: "Mesin", AcquisitionValue: dec("600000"), UsefulLifeYears: 5,
	}, 1, DepreciationFields{TransactionType: models.TxAdjustmentAsset, TransactionID: "dep-7", Date: day(31)}, "tester")
	require.NoError(t, err)
	assertDecimal(t, "10000", dep.Amount)
	return append(append(journal, equipment...), dep.Entries...)
}

func TestCashFlowReconcilesWithCashAccounts(t *testing.T) {
	cf := CashFlow(cashFlowJournal(t), decimal.Zero, nil)

	assertDecimal(t, "20000", cf.NetIncome)
	// 20000 net income + 10000 depreciation + 10000 inventory decrease + 50000 payables increase
	assertDecimal(t, "90000", cf.OperatingCash)
	assertDecimal(t, "-500000", cf.InvestingCash)
	assertDecimal(t, "980000", cf.FinancingCash)
	assertDecimal(t, "570000", cf.NetChange)
	assertDecimal(t, "570000", cf.ActualCashMovement)
	assert.True(t, cf.Reconciled)
	assert.Empty(t, cf.UnmappedAccounts)
	assertDecimal(t, "570000", cf.EndingCash)
}

func TestCashFlowSkipsOpeningBalances(t *testing.T) {
	opening := mustBuild(t, models.TxOpeningBalance, TransactionFields{
		TransactionID: "ob", Date: day(1),
		Lines: []models.OpeningBalanceLine{
			{AccountName: AccKas, Debit: dec("200000")},
			{AccountName: AccModalPemilik, Credit: dec("200000")},
		},
	})
	journal := append(opening, cashFlowJournal(t)...)
	prior, period := SplitPeriod(journal, nil)
	require.Len(t, prior, 2)

	openingCash := CashBalance(prior, nil)
	assertDecimal(t, "200000", openingCash)

	cf := CashFlow(journal, openingCash, nil)
	assertDecimal(t, "980000", cf.FinancingCash)
	assertDecimal(t, "770000", cf.EndingCash)
	assert.True(t, cf.Reconciled)
	assert.Equal(t, len(journal)-2, len(period))
}

func TestEquityRollForward(t *testing.T) {
	opening := mustBuild(t, models.TxOpeningBalance, TransactionFields{
		TransactionID: "ob", Date: day(1),
		Lines: []models.OpeningBalanceLine{
			{AccountName: AccKas, Debit: dec("200000")},
			{AccountName: AccModalPemilik, Credit: dec("200000")},
		},
	})
	eq := EquityChanges(append(opening, sampleJournal(t)...), nil)
	assertDecimal(t, "200000", eq.BeginningEquity)
	assertDecimal(t, "1000000", eq.Contributions)
	assertDecimal(t, "30000", eq.NetIncome)
	assertDecimal(t, "20000", eq.Draws)
	assertDecimal(t, "1210000", eq.EndingEquity)
}

func TestEquityOwnerDrawReducesEndingEquity(t *testing.T) {
	base := mustBuild(t, models.TxCapitalContribution, TransactionFields{TransactionID: "1", Amount: dec("100000")})
	before := EquityChanges(base, nil)
	draw := mustBuild(t, models.TxOwnerDraw, TransactionFields{TransactionID: "2", Amount: dec("20000")})
	after := EquityChanges(append(base, draw...), nil)
	assertDecimal(t, "20000", before.EndingEquity.Sub(after.EndingEquity))
}

func TestEquityChangesSinceUsesPriorActivity(t *testing.T) {
	journal := sampleJournal(t)
	from := day(3)
	eq := EquityChangesSince(journal, &from, nil)
	// capital 1000000 plus the day-2 sale profit of 40000
	assertDecimal(t, "1040000", eq.BeginningEquity)
	assertDecimal(t, "0", eq.Contributions)
	assertDecimal(t, "-10000", eq.NetIncome)
	assertDecimal(t, "20000", eq.Draws)
	assertDecimal(t, "1010000", eq.EndingEquity)
}

func TestCarryForwardClosesEarlierProfitIntoCapital(t *testing.T) {
	entries := []models.JournalEntry{
		{TransactionType: models.TxOperatingExpense, Date: day(1), AccountCode: "6120", AccountName: AccBebanListrikAir, Debit: dec("10000"), Credit: decimal.Zero},
		{TransactionType: models.TxOperatingExpense, Date: day(1), AccountCode: "1110", AccountName: AccKas, Debit: decimal.Zero, Credit: dec("10000")},
		{TransactionType: models.TxSale, Date: day(10), AccountCode: "1110", AccountName: AccKas, Debit: dec("30000"), Credit: decimal.Zero},
		{TransactionType: models.TxSale, Date: day(10), AccountCode: "4110", AccountName: AccPenjualan, Debit: decimal.Zero, Credit: dec("30000")},
	}

	assert.Equal(t, entries, CarryForward(entries, nil, nil))

	from := day(5)
	carried := CarryForward(entries, &from, nil)
	require.Len(t, carried, 4)
	assert.Equal(t, models.TxOpeningBalance, carried[0].TransactionType)
	assert.Equal(t, AccModalPemilik, carried[0].AccountName)
	assert.Equal(t, "3110", carried[0].AccountCode)
	assert.Equal(t, models.TxOpeningBalance, carried[1].TransactionType)
	assert.Equal(t, AccKas, carried[1].AccountName)
	assert.Equal(t, entries[2], carried[2])
	assert.Equal(t, entries[3], carried[3])
	assert.Equal(t, AccBebanListrikAir, entries[0].AccountName)

	tb := TrialBalance(carried, TrialBalanceOptions{})
	assert.True(t, tb.Balanced)
	_, hasExpense := tb.Map()[AccBebanListrikAir]
	assert.False(t, hasExpense)

	is := ComputeIncomeStatement(AdjustedTrialBalance(carried, nil).Balances(), nil)
	assertDecimal(t, "30000", is.NetIncome)

	ws := BuildWorksheet(carried, nil)
	assert.True(t, ws.Balanced())
	assertDecimal(t, "0", ws.Totals.AdjustmentDebit)
}
