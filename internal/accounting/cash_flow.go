package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// CashFlowLine is one reconciling item of the cash flow statement.
type CashFlowLine struct {
	Label       string          `json:"label"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// CashFlowStatement is the indirect-method laporan arus kas.
type CashFlowStatement struct {
	NetIncome     decimal.Decimal `json:"net_income"`
	Operating     []CashFlowLine  `json:"operating"`
	OperatingCash decimal.Decimal `json:"operating_cash"`
	Investing     []CashFlowLine  `json:"investing"`
	InvestingCash decimal.Decimal `json:"investing_cash"`
	Financing     []CashFlowLine  `json:"financing"`
	FinancingCash decimal.Decimal `json:"financing_cash"`
	NetChange     decimal.Decimal `json:"net_change"`
	OpeningCash   decimal.Decimal `json:"opening_cash"`
	EndingCash    decimal.Decimal `json:"ending_cash"`

	// ActualCashMovement is the net debit on cash accounts over the same
	// entries. Difference is ActualCashMovement minus NetChange.
	ActualCashMovement decimal.Decimal `json:"actual_cash_movement"`
	Difference         decimal.Decimal `json:"difference"`
	Reconciled         bool            `json:"reconciled"`

	UnmappedAccounts []string `json:"unmapped_accounts"`
}

// CashFlow derives the cash flow statement from the entries of a period.
// Opening balance entries are not movements and are skipped.
func CashFlow(entries []models.JournalEntry, openingCash decimal.Decimal, chart *Chart) CashFlowStatement {
	if chart == nil {
		chart = DefaultChart()
	}
	movements := accumulate(entries, chart, func(e models.JournalEntry) bool {
		return e.TransactionType != models.TxOpeningBalance
	})
	is := ComputeIncomeStatement(movements, chart)

	cf := CashFlowStatement{
		NetIncome:          is.NetIncome,
		Operating:          []CashFlowLine{},
		Investing:          []CashFlowLine{},
		Financing:          []CashFlowLine{},
		OperatingCash:      is.NetIncome,
		InvestingCash:      decimal.Zero,
		FinancingCash:      decimal.Zero,
		OpeningCash:        openingCash,
		ActualCashMovement: decimal.Zero,
		UnmappedAccounts:   []string{},
	}
	add := func(section *[]CashFlowLine, total *decimal.Decimal, label, account string, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		*section = append(*section, CashFlowLine{Label: label, AccountName: account, Amount: amount})
		*total = total.Add(amount)
	}

	for _, m := range movements {
		cls := chart.Classify(m.AccountCode, m.AccountName)
		if cls.Unclassified {
			cf.UnmappedAccounts = append(cf.UnmappedAccounts, m.AccountName)
			continue
		}
		debitNet := m.Debit.Sub(m.Credit)
		name := m.AccountName
		switch {
		case cls.Role == RoleDepreciation:
			add(&cf.Operating, &cf.OperatingCash, "Penyusutan", name, debitNet)
		case cls.Statement() == IncomeStatement:
			// already part of net income
		case cls.Role == RoleCash:
			cf.ActualCashMovement = cf.ActualCashMovement.Add(debitNet)
		case cls.Role == RoleAccumulatedDepreciation:
			// offset of the depreciation add-back
		case cls.Role == RoleWorkingCapital && cls.Type == TypeAsset:
			label := "Kenaikan " + name
			if debitNet.IsNegative() {
				label = "Penurunan " + name
			}
			add(&cf.Operating, &cf.OperatingCash, label, name, debitNet.Neg())
		case cls.Role == RoleWorkingCapital && cls.Type == TypeLiability:
			label := "Kenaikan " + name
			if debitNet.IsPositive() {
				label = "Penurunan " + name
			}
			add(&cf.Operating, &cf.OperatingCash, label, name, debitNet.Neg())
		case cls.Role == RoleFixedAsset:
			add(&cf.Investing, &cf.InvestingCash, "Pelepasan "+name, name, m.Credit)
			add(&cf.Investing, &cf.InvestingCash, "Perolehan "+name, name, m.Debit.Neg())
		case cls.Role == RoleCapital:
			add(&cf.Financing, &cf.FinancingCash, "Setoran modal", name, debitNet.Neg())
		case cls.Role == RoleBorrowing:
			add(&cf.Financing, &cf.FinancingCash, "Penerimaan pinjaman", name, m.Credit)
			add(&cf.Financing, &cf.FinancingCash, "Pembayaran pinjaman", name, m.Debit.Neg())
		case cls.Role == RoleDraw:
			add(&cf.Financing, &cf.FinancingCash, "Prive", name, debitNet.Neg())
		default:
			if !debitNet.IsZero() {
				cf.UnmappedAccounts = append(cf.UnmappedAccounts, name)
			}
		}
	}

	cf.NetChange = cf.OperatingCash.Add(cf.InvestingCash).Add(cf.FinancingCash)
	cf.EndingCash = cf.OpeningCash.Add(cf.NetChange)
	cf.Difference = cf.ActualCashMovement.Sub(cf.NetChange)
	cf.Reconciled = cf.Difference.IsZero()
	return cf
}

// CashBalance is the net debit on cash accounts across the entries.
func CashBalance(entries []models.JournalEntry, chart *Chart) decimal.Decimal {
	if chart == nil {
		chart = DefaultChart()
	}
	total := decimal.Zero
	for _, row := range accumulate(entries, chart, nil) {
		if cls := chart.Classify(row.AccountCode, row.AccountName); cls.Role == RoleCash && !cls.Unclassified {
			total = total.Add(row.Net())
		}
	}
	return total
}

// SplitPeriod separates entries that form the opening position of a period
// (opening balances and anything dated before from) from the period itself.
func SplitPeriod(entries []models.JournalEntry, from *time.Time) (prior, period []models.JournalEntry) {
	for _, e := range entries {
		if e.TransactionType == models.TxOpeningBalance || (from != nil && e.Date.Before(*from)) {
			prior = append(prior, e)
			continue
		}
		period = append(period, e)
	}
	return prior, period
}
