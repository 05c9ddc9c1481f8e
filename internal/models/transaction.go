package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod tells whether a transaction settles in cash, through the bank or on account.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentBank   PaymentMethod = "BANK"
	PaymentCredit PaymentMethod = "CREDIT"
)

// RawTransaction is a business_transactions row: a sale, purchase, expense,
// owner draw, capital contribution or settlement as entered by a user.
type RawTransaction struct {
	ID              int64           `db:"id" json:"id"`
	Type            TransactionType `db:"transaction_type" json:"transaction_type"`
	Date            time.Time       `db:"transaction_date" json:"date"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Quantity        int             `db:"quantity" json:"quantity"`
	CostOfGoods     decimal.Decimal `db:"cost_of_goods" json:"cost_of_goods"`
	PaymentMethod   PaymentMethod   `db:"payment_method" json:"payment_method"`
	ItemName        string          `db:"item_name" json:"item_name"`
	PartyName       string          `db:"party_name" json:"party_name"`
	ExpenseCategory string          `db:"expense_category" json:"expense_category"`
	Description     string          `db:"description" json:"description"`
	Actor           string          `db:"actor" json:"actor"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// TransactionID is the id journal batches use to refer back to this row.
func (t RawTransaction) TransactionID() string {
	return strconv.FormatInt(t.ID, 10)
}

// TransactionRequest is the body of every business transaction entry form.
type TransactionRequest struct {
	Date            string          `json:"date" form:"date"`
	Amount          decimal.Decimal `json:"amount" form:"amount"`
	Quantity        int             `json:"quantity" form:"quantity" validate:"gte=0"`
	CostOfGoods     decimal.Decimal `json:"cost_of_goods" form:"cost_of_goods"`
	PaymentMethod   PaymentMethod   `json:"payment_method" form:"payment_method" validate:"omitempty,oneof=CASH BANK CREDIT"`
	ItemName        string          `json:"item_name" form:"item_name" validate:"max=255"`
	PartyName       string          `json:"party_name" form:"party_name" validate:"max=255"`
	ExpenseCategory string          `json:"expense_category" form:"expense_category" validate:"max=64"`
	Description     string          `json:"description" form:"description" validate:"max=500"`
}

// TransactionImportError describes one rejected row of an import workbook.
type TransactionImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// TransactionImportRow is a parsed workbook row waiting to be recorded.
type TransactionImportRow struct {
	Row     int                `json:"row"`
	Type    TransactionType    `json:"transaction_type"`
	Request TransactionRequest `json:"request"`
}

// TransactionImportResult reports the outcome of an import workbook.
type TransactionImportResult struct {
	TotalRows        int                      `json:"total_rows"`
	ValidCount       int                      `json:"valid_count"`
	ErrorCount       int                      `json:"error_count"`
	Recorded         int                      `json:"recorded"`
	ValidRows        []TransactionImportRow   `json:"-"`
	ValidationErrors []TransactionImportError `json:"validation_errors"`
	ImportTime       time.Time                `json:"import_time"`
}
