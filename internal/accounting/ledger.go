package accounting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// SortEntries orders entries by date, then creation time, then id.
func SortEntries(entries []models.JournalEntry) []models.JournalEntry {
	out := make([]models.JournalEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// JournalBatch is one balanced group of entries in the general journal.
type JournalBatch struct {
	BatchID         string                 `json:"batch_id"`
	Date            time.Time              `json:"date"`
	TransactionType models.TransactionType `json:"transaction_type"`
	TransactionID   string                 `json:"transaction_id"`
	Description     string                 `json:"description"`
	Entries         []models.JournalEntry  `json:"entries"`
	TotalDebit      decimal.Decimal        `json:"total_debit"`
	TotalCredit     decimal.Decimal        `json:"total_credit"`
	Balanced        bool                   `json:"balanced"`
}

// GeneralJournal is the jurnal umum.
type GeneralJournal struct {
	Batches     []JournalBatch  `json:"batches"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// BuildGeneralJournal groups entries into batches in journal order. Entries
// without a batch id are grouped by their transaction key.
func BuildGeneralJournal(entries []models.JournalEntry) GeneralJournal {
	gj := GeneralJournal{Batches: []JournalBatch{}, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	index := make(map[string]int)
	for _, e := range SortEntries(entries) {
		key := e.BatchID
		if key == "" {
			key = string(e.TransactionType) + "/" + e.TransactionID
		}
		i, ok := index[key]
		if !ok {
			i = len(gj.Batches)
			index[key] = i
			gj.Batches = append(gj.Batches, JournalBatch{
				BatchID:         e.BatchID,
				Date:            e.Date,
				TransactionType: e.TransactionType,
				TransactionID:   e.TransactionID,
				Description:     e.Description,
				TotalDebit:      decimal.Zero,
				TotalCredit:     decimal.Zero,
			})
		}
		b := &gj.Batches[i]
		b.Entries = append(b.Entries, e)
		b.TotalDebit = b.TotalDebit.Add(e.Debit)
		b.TotalCredit = b.TotalCredit.Add(e.Credit)
		gj.TotalDebit = gj.TotalDebit.Add(e.Debit)
		gj.TotalCredit = gj.TotalCredit.Add(e.Credit)
	}
	for i := range gj.Batches {
		gj.Batches[i].Balanced = gj.Batches[i].TotalDebit.Equal(gj.Batches[i].TotalCredit)
	}
	return gj
}

// LedgerLine is one posting in a ledger account with its running balance.
type LedgerLine struct {
	Date            time.Time              `json:"date"`
	Description     string                 `json:"description"`
	TransactionType models.TransactionType `json:"transaction_type"`
	TransactionID   string                 `json:"transaction_id"`
	Debit           decimal.Decimal        `json:"debit"`
	Credit          decimal.Decimal        `json:"credit"`
	Balance         decimal.Decimal        `json:"balance"`
}

// LedgerAccount is one account of the buku besar. Balance is expressed on
// the account's normal side.
type LedgerAccount struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Normal      Side            `json:"normal"`
	Lines       []LedgerLine    `json:"lines"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// BuildGeneralLedger posts every entry to its account and keeps a running
// balance on the normal side. Accounts come out in chart order.
func BuildGeneralLedger(entries []models.JournalEntry, chart *Chart) []LedgerAccount {
	if chart == nil {
		chart = DefaultChart()
	}
	byName := make(map[string]*LedgerAccount)
	var names []string
	for _, e := range SortEntries(entries) {
		name := chart.CanonicalName(e.AccountName)
		acc, ok := byName[name]
		if !ok {
			cls := chart.Classify(e.AccountCode, name)
			code := cls.Code
			if code == "" && e.AccountCode != placeholderCode {
				code = e.AccountCode
			}
			acc = &LedgerAccount{
				AccountCode: code,
				AccountName: name,
				Normal:      cls.Normal,
				Lines:       []LedgerLine{},
				Debit:       decimal.Zero,
				Credit:      decimal.Zero,
				Balance:     decimal.Zero,
			}
			byName[name] = acc
			names = append(names, name)
		}
		acc.Debit = acc.Debit.Add(e.Debit)
		acc.Credit = acc.Credit.Add(e.Credit)
		if acc.Normal == SideCredit {
			acc.Balance = acc.Balance.Add(e.Credit).Sub(e.Debit)
		} else {
			acc.Balance = acc.Balance.Add(e.Debit).Sub(e.Credit)
		}
		acc.Lines = append(acc.Lines, LedgerLine{
			Date:            e.Date,
			Description:     e.Description,
			TransactionType: e.TransactionType,
			TransactionID:   e.TransactionID,
			Debit:           e.Debit,
			Credit:          e.Credit,
			Balance:         acc.Balance,
		})
	}

	out := make([]LedgerAccount, 0, len(names))
	for _, n := range names {
		out = append(out, *byName[n])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.AccountCode == "") != (b.AccountCode == "") {
			return a.AccountCode != ""
		}
		if a.AccountCode != b.AccountCode {
			return a.AccountCode < b.AccountCode
		}
		return a.AccountName < b.AccountName
	})
	return out
}
