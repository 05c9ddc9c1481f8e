package accounting

import (
	"time"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// EquityStatement is the laporan perubahan modal.
type EquityStatement struct {
	BeginningEquity decimal.Decimal `json:"beginning_equity"`
	Contributions   decimal.Decimal `json:"contributions"`
	NetIncome       decimal.Decimal `json:"net_income"`
	Draws           decimal.Decimal `json:"draws"`
	EndingEquity    decimal.Decimal `json:"ending_equity"`
}

// EquityChanges rolls equity forward over the whole journal. Beginning
// equity is the capital recorded by opening balance entries.
func EquityChanges(entries []models.JournalEntry, chart *Chart) EquityStatement {
	return EquityChangesSince(entries, nil, chart)
}

// EquityChangesSince rolls equity forward from a date. Opening balances and
// entries before from, including their profit or loss, make up beginning
// equity.
func EquityChangesSince(entries []models.JournalEntry, from *time.Time, chart *Chart) EquityStatement {
	if chart == nil {
		chart = DefaultChart()
	}
	prior, period := SplitPeriod(entries, from)

	priorEq := equityMovements(accumulate(prior, chart, nil), chart)
	periodEq := equityMovements(accumulate(period, chart, nil), chart)

	s := EquityStatement{
		BeginningEquity: priorEq.capital.Sub(priorEq.draws).Add(priorEq.netIncome),
		Contributions:   periodEq.capital,
		NetIncome:       periodEq.netIncome,
		Draws:           periodEq.draws,
	}
	s.EndingEquity = s.BeginningEquity.Add(s.Contributions).Add(s.NetIncome).Sub(s.Draws)
	return s
}

type equityTotals struct {
	capital   decimal.Decimal
	draws     decimal.Decimal
	netIncome decimal.Decimal
}

func equityMovements(rows []AccountTotals, chart *Chart) equityTotals {
	t := equityTotals{capital: decimal.Zero, draws: decimal.Zero}
	for _, r := range rows {
		cls := chart.Classify(r.AccountCode, r.AccountName)
		if cls.Unclassified || cls.Type != TypeEquity {
			continue
		}
		if cls.Role == RoleDraw {
			t.draws = t.draws.Add(r.Net())
		} else {
			t.capital = t.capital.Add(r.Net().Neg())
		}
	}
	t.netIncome = ComputeIncomeStatement(rows, chart).NetIncome
	return t
}
