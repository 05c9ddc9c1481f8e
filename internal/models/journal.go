package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags the business event a journal batch originates from.
type TransactionType string

const (
	TxSale                 TransactionType = "SALE"
	TxPurchase             TransactionType = "PURCHASE"
	TxOperatingExpense     TransactionType = "OPERATING_EXPENSE"
	TxOwnerDraw            TransactionType = "OWNER_DRAW"
	TxCapitalContribution  TransactionType = "CAPITAL_CONTRIBUTION"
	TxAdjustmentManual     TransactionType = "ADJUSTMENT_MANUAL"
	TxAdjustmentAsset      TransactionType = "ADJUSTMENT_ASSET"
	TxAdjustmentAuto       TransactionType = "ADJUSTMENT_AUTO"
	TxReceivableSettlement TransactionType = "RECEIVABLE_SETTLEMENT"
	TxPayableSettlement    TransactionType = "PAYABLE_SETTLEMENT"
	TxOpeningBalance       TransactionType = "OPENING_BALANCE"
)

// RawTransactionTypes lists the sources stored in business_transactions,
// in the order the generator scans them.
var RawTransactionTypes = []TransactionType{
	TxSale,
	TxPurchase,
	TxOperatingExpense,
	TxOwnerDraw,
	TxCapitalContribution,
	TxReceivableSettlement,
	TxPayableSettlement,
}

// IsAdjustment reports whether entries of this type belong to the adjustment layer.
func (t TransactionType) IsAdjustment() bool {
	switch t {
	case TxAdjustmentManual, TxAdjustmentAsset, TxAdjustmentAuto:
		return true
	}
	return false
}

// IsRaw reports whether the type is backed by a business_transactions row.
func (t TransactionType) IsRaw() bool {
	for _, raw := range RawTransactionTypes {
		if t == raw {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t.IsRaw() || t.IsAdjustment() || t == TxOpeningBalance
}

// JournalEntry is one debit or credit row of the general journal.
type JournalEntry struct {
	ID              int64           `db:"id" json:"id"`
	BatchID         string          `db:"batch_id" json:"batch_id"`
	Date            time.Time       `db:"entry_date" json:"date"`
	AccountName     string          `db:"account_name" json:"account_name"`
	AccountCode     string          `db:"account_code" json:"account_code"`
	Debit           decimal.Decimal `db:"debit" json:"debit"`
	Credit          decimal.Decimal `db:"credit" json:"credit"`
	Description     string          `db:"description" json:"description"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionID   string          `db:"transaction_id" json:"transaction_id"`
	Actor           string          `db:"actor" json:"actor"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// IsDebit reports whether the entry sits on the debit side.
func (e JournalEntry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// BatchKey identifies a journal batch for idempotency checks.
type BatchKey struct {
	TransactionID   string
	TransactionType TransactionType
}

// Key returns the batch key of the entry.
func (e JournalEntry) Key() BatchKey {
	return BatchKey{TransactionID: e.TransactionID, TransactionType: e.TransactionType}
}

// JournalFilter narrows journal queries. Zero values mean "no filter".
type JournalFilter struct {
	TransactionID      string          `json:"transaction_id,omitempty"`
	TransactionType    TransactionType `json:"transaction_type,omitempty"`
	From               *time.Time      `json:"from,omitempty"`
	To                 *time.Time      `json:"to,omitempty"`
	ExcludeAdjustments bool            `json:"exclude_adjustments,omitempty"`
}

// Match reports whether the entry passes the filter.
func (f JournalFilter) Match(e JournalEntry) bool {
	if f.TransactionID != "" && e.TransactionID != f.TransactionID {
		return false
	}
	if f.TransactionType != "" && e.TransactionType != f.TransactionType {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.ExcludeAdjustments && e.TransactionType.IsAdjustment() {
		return false
	}
	return true
}

// OpeningBalanceLine is one caller-supplied line of an opening balance batch.
type OpeningBalanceLine struct {
	AccountName string          `json:"account_name" validate:"required"`
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// OpeningBalanceRequest records the starting balances of the books.
type OpeningBalanceRequest struct {
	Date        string               `json:"date" validate:"required"`
	Description string               `json:"description" validate:"max=500"`
	Lines       []OpeningBalanceLine `json:"lines" validate:"required,min=2,dive"`
}

// GenerationFailure describes one transaction the generator could not journal.
type GenerationFailure struct {
	TransactionID   string          `json:"transaction_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Reason          string          `json:"reason"`
}

// GenerationReport summarises one generate-missing pass.
type GenerationReport struct {
	Source           TransactionType     `json:"source,omitempty"`
	Processed        int                 `json:"processed"`
	NewlyJournaled   int                 `json:"newly_journaled"`
	AlreadyJournaled int                 `json:"already_journaled"`
	Failed           int                 `json:"failed"`
	Failures         []GenerationFailure `json:"failures"`
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       time.Time           `json:"finished_at"`
}

// Merge folds another report into r.
func (r *GenerationReport) Merge(other GenerationReport) {
	r.Processed += other.Processed
	r.NewlyJournaled += other.NewlyJournaled
	r.AlreadyJournaled += other.AlreadyJournaled
	r.Failed += other.Failed
	r.Failures = append(r.Failures, other.Failures...)
}
