package accounting

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// SubsidiaryKind selects a buku pembantu.
type SubsidiaryKind string

const (
	Receivables SubsidiaryKind = "receivables"
	Payables    SubsidiaryKind = "payables"
)

// UnnamedParty is used for transactions recorded without a customer or supplier.
const UnnamedParty = "(tanpa nama)"

// SubsidiaryLine is one movement on a party's balance.
type SubsidiaryLine struct {
	Date            time.Time              `json:"date"`
	TransactionID   string                 `json:"transaction_id"`
	TransactionType models.TransactionType `json:"transaction_type"`
	Description     string                 `json:"description"`
	Increase        decimal.Decimal        `json:"increase"`
	Decrease        decimal.Decimal        `json:"decrease"`
	Balance         decimal.Decimal        `json:"balance"`
}

// PartyLedger is the running balance owed by or to one party.
type PartyLedger struct {
	Party   string           `json:"party"`
	Lines   []SubsidiaryLine `json:"lines"`
	Balance decimal.Decimal  `json:"balance"`
}

// SubsidiaryLedger groups party ledgers of one kind.
type SubsidiaryLedger struct {
	Kind    SubsidiaryKind  `json:"kind"`
	Parties []PartyLedger   `json:"parties"`
	Total   decimal.Decimal `json:"total"`
}

// BuildSubsidiaryLedger folds raw transactions into per-party balances.
// Credit sales raise receivables and receivable settlements lower them;
// credit purchases and credit expenses raise payables and payable
// settlements lower them.
func BuildSubsidiaryLedger(kind SubsidiaryKind, txs []models.RawTransaction) SubsidiaryLedger {
	sorted := make([]models.RawTransaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := SubsidiaryLedger{Kind: kind, Parties: []PartyLedger{}, Total: decimal.Zero}
	index := make(map[string]int)
	for _, tx := range sorted {
		increase, decrease, ok := subsidiaryMovement(kind, tx)
		if !ok {
			continue
		}
		party := strings.TrimSpace(tx.PartyName)
		if party == "" {
			party = UnnamedParty
		}
		i, seen := index[strings.ToLower(party)]
		if !seen {
			i = len(out.Parties)
			index[strings.ToLower(party)] = i
			out.Parties = append(out.Parties, PartyLedger{Party: party, Lines: []SubsidiaryLine{}, Balance: decimal.Zero})
		}
		p := &out.Parties[i]
		p.Balance = p.Balance.Add(increase).Sub(decrease)
		p.Lines = append(p.Lines, SubsidiaryLine{
			Date:            tx.Date,
			TransactionID:   tx.TransactionID(),
			TransactionType: tx.Type,
			Description:     tx.Description,
			Increase:        increase,
			Decrease:        decrease,
			Balance:         p.Balance,
		})
		out.Total = out.Total.Add(increase).Sub(decrease)
	}
	sort.SliceStable(out.Parties, func(i, j int) bool { return out.Parties[i].Party < out.Parties[j].Party })
	return out
}

func subsidiaryMovement(kind SubsidiaryKind, tx models.RawTransaction) (increase, decrease decimal.Decimal, ok bool) {
	increase, decrease = decimal.Zero, decimal.Zero
	switch kind {
	case Receivables:
		switch {
		case tx.Type == models.TxSale && tx.PaymentMethod == models.PaymentCredit:
			return tx.Amount, decrease, true
		case tx.Type == models.TxReceivableSettlement:
			return increase, tx.Amount, true
		}
	case Payables:
		switch {
		case (tx.Type == models.TxPurchase || tx.Type == models.TxOperatingExpense) && tx.PaymentMethod == models.PaymentCredit:
			return tx.Amount, decrease, true
		case tx.Type == models.TxPayableSettlement:
			return increase, tx.Amount, true
		}
	}
	return increase, decrease, false
}
