package accounting

import (
	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// WorksheetRow is one account across the ten neraca lajur columns.
type WorksheetRow struct {
	AccountCode           string          `json:"account_code"`
	AccountName           string          `json:"account_name"`
	Statement             Statement       `json:"statement"`
	ClassifiedBy          Source          `json:"classified_by"`
	Unclassified          bool            `json:"unclassified"`
	TrialDebit            decimal.Decimal `json:"trial_debit"`
	TrialCredit           decimal.Decimal `json:"trial_credit"`
	AdjustmentDebit       decimal.Decimal `json:"adjustment_debit"`
	AdjustmentCredit      decimal.Decimal `json:"adjustment_credit"`
	AdjustedDebit         decimal.Decimal `json:"adjusted_debit"`
	AdjustedCredit        decimal.Decimal `json:"adjusted_credit"`
	IncomeStatementDebit  decimal.Decimal `json:"income_statement_debit"`
	IncomeStatementCredit decimal.Decimal `json:"income_statement_credit"`
	BalanceSheetDebit     decimal.Decimal `json:"balance_sheet_debit"`
	BalanceSheetCredit    decimal.Decimal `json:"balance_sheet_credit"`
}

// WorksheetTotals holds the column totals of a worksheet.
type WorksheetTotals struct {
	TrialDebit            decimal.Decimal `json:"trial_debit"`
	TrialCredit           decimal.Decimal `json:"trial_credit"`
	AdjustmentDebit       decimal.Decimal `json:"adjustment_debit"`
	AdjustmentCredit      decimal.Decimal `json:"adjustment_credit"`
	AdjustedDebit         decimal.Decimal `json:"adjusted_debit"`
	AdjustedCredit        decimal.Decimal `json:"adjusted_credit"`
	IncomeStatementDebit  decimal.Decimal `json:"income_statement_debit"`
	IncomeStatementCredit decimal.Decimal `json:"income_statement_credit"`
	BalanceSheetDebit     decimal.Decimal `json:"balance_sheet_debit"`
	BalanceSheetCredit    decimal.Decimal `json:"balance_sheet_credit"`
}

func newWorksheetTotals() WorksheetTotals {
	return WorksheetTotals{
		TrialDebit: decimal.Zero, TrialCredit: decimal.Zero,
		AdjustmentDebit: decimal.Zero, AdjustmentCredit: decimal.Zero,
		AdjustedDebit: decimal.Zero, AdjustedCredit: decimal.Zero,
		IncomeStatementDebit: decimal.Zero, IncomeStatementCredit: decimal.Zero,
		BalanceSheetDebit: decimal.Zero, BalanceSheetCredit: decimal.Zero,
	}
}

func (t *WorksheetTotals) add(r WorksheetRow) {
	t.TrialDebit = t.TrialDebit.Add(r.TrialDebit)
	t.TrialCredit = t.TrialCredit.Add(r.TrialCredit)
	t.AdjustmentDebit = t.AdjustmentDebit.Add(r.AdjustmentDebit)
	t.AdjustmentCredit = t.AdjustmentCredit.Add(r.AdjustmentCredit)
	t.AdjustedDebit = t.AdjustedDebit.Add(r.AdjustedDebit)
	t.AdjustedCredit = t.AdjustedCredit.Add(r.AdjustedCredit)
	t.IncomeStatementDebit = t.IncomeStatementDebit.Add(r.IncomeStatementDebit)
	t.IncomeStatementCredit = t.IncomeStatementCredit.Add(r.IncomeStatementCredit)
	t.BalanceSheetDebit = t.BalanceSheetDebit.Add(r.BalanceSheetDebit)
	t.BalanceSheetCredit = t.BalanceSheetCredit.Add(r.BalanceSheetCredit)
}

// Worksheet is the neraca lajur with its balance checks.
type Worksheet struct {
	Rows   []WorksheetRow  `json:"rows"`
	Totals WorksheetTotals `json:"totals"`

	TrialBalanced      bool `json:"trial_balanced"`
	AdjustedBalanced   bool `json:"adjusted_balanced"`
	StatementsBalanced bool `json:"statements_balanced"`

	// ProfitOrLoss is income statement credit minus debit. Placed on the
	// income statement debit and balance sheet credit side it balances
	// both column pairs.
	ProfitOrLoss         decimal.Decimal `json:"profit_or_loss"`
	UnclassifiedAccounts []string        `json:"unclassified_accounts"`
}

// Balanced reports whether all three balance checks hold.
func (w Worksheet) Balanced() bool {
	return w.TrialBalanced && w.AdjustedBalanced && w.StatementsBalanced
}

// BuildWorksheet builds the ten-column worksheet from the journal. The net
// of each account's adjusted totals goes to the income statement or balance
// sheet columns depending on its classification.
func BuildWorksheet(entries []models.JournalEntry, chart *Chart) Worksheet {
	if chart == nil {
		chart = DefaultChart()
	}
	atb := AdjustedTrialBalance(entries, chart)
	ws := Worksheet{Totals: newWorksheetTotals(), UnclassifiedAccounts: []string{}}

	for _, a := range atb.Rows {
		cls := chart.Classify(a.AccountCode, a.AccountName)
		row := WorksheetRow{
			AccountCode:           a.AccountCode,
			AccountName:           a.AccountName,
			Statement:             cls.Statement(),
			ClassifiedBy:          cls.Source,
			Unclassified:          cls.Unclassified,
			TrialDebit:            a.TrialDebit,
			TrialCredit:           a.TrialCredit,
			AdjustmentDebit:       a.AdjustmentDebit,
			AdjustmentCredit:      a.AdjustmentCredit,
			AdjustedDebit:         a.AdjustedDebit,
			AdjustedCredit:        a.AdjustedCredit,
			IncomeStatementDebit:  decimal.Zero,
			IncomeStatementCredit: decimal.Zero,
			BalanceSheetDebit:     decimal.Zero,
			BalanceSheetCredit:    decimal.Zero,
		}
		net := a.AdjustedDebit.Sub(a.AdjustedCredit)
		debitSide, creditSide := net, decimal.Zero
		if net.IsNegative() {
			debitSide, creditSide = decimal.Zero, net.Neg()
		}
		if row.Statement == IncomeStatement {
			row.IncomeStatementDebit, row.IncomeStatementCredit = debitSide, creditSide
		} else {
			row.BalanceSheetDebit, row.BalanceSheetCredit = debitSide, creditSide
		}
		if row.Unclassified {
			ws.UnclassifiedAccounts = append(ws.UnclassifiedAccounts, row.AccountName)
		}
		ws.Rows = append(ws.Rows, row)
		ws.Totals.add(row)
	}

	t := ws.Totals
	ws.TrialBalanced = t.TrialDebit.Equal(t.TrialCredit)
	ws.AdjustedBalanced = t.AdjustedDebit.Equal(t.AdjustedCredit)
	ws.StatementsBalanced = t.IncomeStatementDebit.Add(t.BalanceSheetDebit).
		Equal(t.IncomeStatementCredit.Add(t.BalanceSheetCredit))
	ws.ProfitOrLoss = t.IncomeStatementCredit.Sub(t.IncomeStatementDebit)
	return ws
}
