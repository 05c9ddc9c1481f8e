package accounting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// AccountTotals is the debit and credit total of one account.
type AccountTotals struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Net is debit minus credit.
func (a AccountTotals) Net() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// TrialBalanceOptions selects which entries the trial balance folds.
type TrialBalanceOptions struct {
	ExcludeAdjustments bool
	OnlyAdjustments    bool
	Chart              *Chart
}

// TrialBalanceReport is the neraca saldo.
type TrialBalanceReport struct {
	Rows        []AccountTotals `json:"rows"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Difference  decimal.Decimal `json:"difference"`
	Balanced    bool            `json:"balanced"`
}

// Map returns the rows keyed by account name.
func (r TrialBalanceReport) Map() map[string]AccountTotals {
	out := make(map[string]AccountTotals, len(r.Rows))
	for _, row := range r.Rows {
		out[row.AccountName] = row
	}
	return out
}

// TrialBalance folds journal entries into per-account totals. Alias names
// are folded onto their canonical account. It never fails; an imbalance is
// reported through Balanced and Difference.
func TrialBalance(entries []models.JournalEntry, opts TrialBalanceOptions) TrialBalanceReport {
	chart := opts.Chart
	if chart == nil {
		chart = DefaultChart()
	}
	rows := accumulate(entries, chart, func(e models.JournalEntry) bool {
		adj := e.TransactionType.IsAdjustment()
		if opts.ExcludeAdjustments && adj {
			return false
		}
		if opts.OnlyAdjustments && !adj {
			return false
		}
		return true
	})
	report := TrialBalanceReport{Rows: rows, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, r := range rows {
		report.TotalDebit = report.TotalDebit.Add(r.Debit)
		report.TotalCredit = report.TotalCredit.Add(r.Credit)
	}
	report.Difference = report.TotalDebit.Sub(report.TotalCredit)
	report.Balanced = report.Difference.IsZero()
	return report
}

// CarryForward prepares entries for a report period starting at from.
// Entries dated before from become the opening position: balance sheet
// accounts keep their balances and income statement accounts are closed
// into Modal Pemilik. Carried entries are tagged as opening balances so
// they never show up in an adjustment column.
func CarryForward(entries []models.JournalEntry, from *time.Time, chart *Chart) []models.JournalEntry {
	if from == nil {
		return entries
	}
	if chart == nil {
		chart = DefaultChart()
	}
	capital := chart.MustLookup(AccModalPemilik)
	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Date.Before(*from) {
			out = append(out, e)
			continue
		}
		if chart.Classify(e.AccountCode, e.AccountName).Statement() == IncomeStatement {
			e.AccountName = capital.Name
			e.AccountCode = capital.Code
		}
		e.TransactionType = models.TxOpeningBalance
		out = append(out, e)
	}
	return out
}

func accumulate(entries []models.JournalEntry, chart *Chart, keep func(models.JournalEntry) bool) []AccountTotals {
	byName := make(map[string]*AccountTotals)
	var order []string
	for _, e := range entries {
		if keep != nil && !keep(e) {
			continue
		}
		name := chart.CanonicalName(e.AccountName)
		t, ok := byName[name]
		if !ok {
			t = &AccountTotals{AccountName: name, Debit: decimal.Zero, Credit: decimal.Zero}
			if d, known := chart.Lookup(name); known {
				t.AccountCode = d.Code
			}
			byName[name] = t
			order = append(order, name)
		}
		if t.AccountCode == "" && e.AccountCode != "" && e.AccountCode != placeholderCode {
			t.AccountCode = e.AccountCode
		}
		t.Debit = t.Debit.Add(e.Debit)
		t.Credit = t.Credit.Add(e.Credit)
	}
	rows := make([]AccountTotals, 0, len(order))
	for _, name := range order {
		rows = append(rows, *byName[name])
	}
	sortAccounts(rows)
	return rows
}

// sortAccounts orders rows by code, accounts without a code last by name.
func sortAccounts(rows []AccountTotals) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.AccountCode == "") != (b.AccountCode == "") {
			return a.AccountCode != ""
		}
		if a.AccountCode != b.AccountCode {
			return a.AccountCode < b.AccountCode
		}
		return a.AccountName < b.AccountName
	})
}

// AdjustedRow is one account of the adjusted trial balance.
type AdjustedRow struct {
	AccountCode      string          `json:"account_code"`
	AccountName      string          `json:"account_name"`
	TrialDebit       decimal.Decimal `json:"trial_debit"`
	TrialCredit      decimal.Decimal `json:"trial_credit"`
	AdjustmentDebit  decimal.Decimal `json:"adjustment_debit"`
	AdjustmentCredit decimal.Decimal `json:"adjustment_credit"`
	AdjustedDebit    decimal.Decimal `json:"adjusted_debit"`
	AdjustedCredit   decimal.Decimal `json:"adjusted_credit"`
}

// Totals returns the adjusted totals as an AccountTotals row.
func (r AdjustedRow) Totals() AccountTotals {
	return AccountTotals{
		AccountCode: r.AccountCode,
		AccountName: r.AccountName,
		Debit:       r.AdjustedDebit,
		Credit:      r.AdjustedCredit,
	}
}

// AdjustedTrialBalanceReport is the NSSP: trial balance plus adjustments.
type AdjustedTrialBalanceReport struct {
	Rows                  []AdjustedRow   `json:"rows"`
	TotalTrialDebit       decimal.Decimal `json:"total_trial_debit"`
	TotalTrialCredit      decimal.Decimal `json:"total_trial_credit"`
	TotalAdjustmentDebit  decimal.Decimal `json:"total_adjustment_debit"`
	TotalAdjustmentCredit decimal.Decimal `json:"total_adjustment_credit"`
	TotalAdjustedDebit    decimal.Decimal `json:"total_adjusted_debit"`
	TotalAdjustedCredit   decimal.Decimal `json:"total_adjusted_credit"`
	Balanced              bool            `json:"balanced"`
}

// Balances returns the adjusted per-account totals.
func (r AdjustedTrialBalanceReport) Balances() []AccountTotals {
	out := make([]AccountTotals, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Totals()
	}
	return out
}

// AdjustedTrialBalance computes NSSP by simple addition of the trial
// balance and adjustment totals of every account.
func AdjustedTrialBalance(entries []models.JournalEntry, chart *Chart) AdjustedTrialBalanceReport {
	if chart == nil {
		chart = DefaultChart()
	}
	tb := TrialBalance(entries, TrialBalanceOptions{ExcludeAdjustments: true, Chart: chart}).Map()
	adj := TrialBalance(entries, TrialBalanceOptions{OnlyAdjustments: true, Chart: chart}).Map()
	all := accumulate(entries, chart, nil)

	report := AdjustedTrialBalanceReport{
		TotalTrialDebit:       decimal.Zero,
		TotalTrialCredit:      decimal.Zero,
		TotalAdjustmentDebit:  decimal.Zero,
		TotalAdjustmentCredit: decimal.Zero,
		TotalAdjustedDebit:    decimal.Zero,
		TotalAdjustedCredit:   decimal.Zero,
	}
	for _, acc := range all {
		t, a := tb[acc.AccountName], adj[acc.AccountName]
		row := AdjustedRow{
			AccountCode:      acc.AccountCode,
			AccountName:      acc.AccountName,
			TrialDebit:       zeroIfNil(t.Debit),
			TrialCredit:      zeroIfNil(t.Credit),
			AdjustmentDebit:  zeroIfNil(a.Debit),
			AdjustmentCredit: zeroIfNil(a.Credit),
		}
		row.AdjustedDebit = row.TrialDebit.Add(row.AdjustmentDebit)
		row.AdjustedCredit = row.TrialCredit.Add(row.AdjustmentCredit)
		report.Rows = append(report.Rows, row)

		report.TotalTrialDebit = report.TotalTrialDebit.Add(row.TrialDebit)
		report.TotalTrialCredit = report.TotalTrialCredit.Add(row.TrialCredit)
		report.TotalAdjustmentDebit = report.TotalAdjustmentDebit.Add(row.AdjustmentDebit)
		report.TotalAdjustmentCredit = report.TotalAdjustmentCredit.Add(row.AdjustmentCredit)
		report.TotalAdjustedDebit = report.TotalAdjustedDebit.Add(row.AdjustedDebit)
		report.TotalAdjustedCredit = report.TotalAdjustedCredit.Add(row.AdjustedCredit)
	}
	report.Balanced = report.TotalAdjustedDebit.Equal(report.TotalAdjustedCredit)
	return report
}

// zeroIfNil replaces the zero Decimal of a missing map key with decimal.Zero.
func zeroIfNil(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}
