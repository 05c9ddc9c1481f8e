package accounting

import (
	"github.com/shopspring/decimal"
)

// StatementLine is one account amount on a financial statement.
type StatementLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// COGSMethod tells how cost of goods sold was derived.
type COGSMethod string

const (
	COGSPeriodic COGSMethod = "periodic"
	COGSDirect   COGSMethod = "direct"
)

// IncomeStatementReport is the laba rugi.
type IncomeStatementReport struct {
	Revenue      []StatementLine `json:"revenue"`
	RevenueTotal decimal.Decimal `json:"revenue_total"`

	COGSMethod         COGSMethod      `json:"cogs_method"`
	BeginningInventory decimal.Decimal `json:"beginning_inventory"`
	Purchases          decimal.Decimal `json:"purchases"`
	EndingInventory    decimal.Decimal `json:"ending_inventory"`
	DirectCOGS         []StatementLine `json:"direct_cogs"`
	COGS               decimal.Decimal `json:"cogs"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`

	OperatingExpenses []StatementLine `json:"operating_expenses"`
	OpexTotal         decimal.Decimal `json:"opex_total"`
	OtherExpenses     []StatementLine `json:"other_expenses"`
	OtherExpenseTotal decimal.Decimal `json:"other_expense_total"`

	NetIncome decimal.Decimal `json:"net_income"`
	MarginPct decimal.Decimal `json:"margin_pct"`

	Unclassified []string `json:"unclassified_accounts"`
}

// ComputeIncomeStatement derives the income statement from adjusted
// per-account balances. Cost of goods sold is beginning inventory plus
// purchases minus ending inventory when any of those accounts is present,
// plus any directly booked cost of goods.
func ComputeIncomeStatement(balances []AccountTotals, chart *Chart) IncomeStatementReport {
	if chart == nil {
		chart = DefaultChart()
	}
	r := IncomeStatementReport{
		RevenueTotal:       decimal.Zero,
		BeginningInventory: decimal.Zero,
		Purchases:          decimal.Zero,
		EndingInventory:    decimal.Zero,
		COGS:               decimal.Zero,
		OpexTotal:          decimal.Zero,
		OtherExpenseTotal:  decimal.Zero,
		Revenue:            []StatementLine{},
		DirectCOGS:         []StatementLine{},
		OperatingExpenses:  []StatementLine{},
		OtherExpenses:      []StatementLine{},
		Unclassified:       []string{},
	}
	direct := decimal.Zero
	periodic := false

	for _, b := range balances {
		cls := chart.Classify(b.AccountCode, b.AccountName)
		if cls.Unclassified {
			r.Unclassified = append(r.Unclassified, b.AccountName)
			continue
		}
		debitNet := b.Debit.Sub(b.Credit)
		line := StatementLine{AccountCode: b.AccountCode, AccountName: b.AccountName}
		switch cls.Type {
		case TypeRevenue:
			line.Amount = debitNet.Neg()
			r.Revenue = append(r.Revenue, line)
			r.RevenueTotal = r.RevenueTotal.Add(line.Amount)
		case TypeCOGS:
			switch cls.Role {
			case RoleBeginningInventory:
				periodic = true
				r.BeginningInventory = r.BeginningInventory.Add(debitNet)
			case RolePurchases:
				periodic = true
				r.Purchases = r.Purchases.Add(debitNet)
			case RoleEndingInventory:
				periodic = true
				r.EndingInventory = r.EndingInventory.Add(debitNet.Neg())
			default:
				line.Amount = debitNet
				r.DirectCOGS = append(r.DirectCOGS, line)
				direct = direct.Add(debitNet)
			}
		case TypeExpense:
			line.Amount = debitNet
			if cls.IsOperatingExpense() {
				r.OperatingExpenses = append(r.OperatingExpenses, line)
				r.OpexTotal = r.OpexTotal.Add(debitNet)
			} else {
				r.OtherExpenses = append(r.OtherExpenses, line)
				r.OtherExpenseTotal = r.OtherExpenseTotal.Add(debitNet)
			}
		}
	}

	r.COGSMethod = COGSDirect
	if periodic {
		r.COGSMethod = COGSPeriodic
		r.COGS = r.BeginningInventory.Add(r.Purchases).Sub(r.EndingInventory)
	}
	r.COGS = r.COGS.Add(direct)
	r.GrossProfit = r.RevenueTotal.Sub(r.COGS)
	r.NetIncome = r.GrossProfit.Sub(r.OpexTotal).Sub(r.OtherExpenseTotal)
	r.MarginPct = Margin(r.NetIncome, r.RevenueTotal)
	return r
}

// Margin is net over revenue as a percentage rounded to two decimals, or
// zero when there is no revenue.
func Margin(net, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return net.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
}
