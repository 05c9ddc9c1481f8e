package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement records one change of the integrated stock counter.
type StockMovement struct {
	ID            int64     `db:"id" json:"id"`
	StockKey      string    `db:"stock_key" json:"stock_key"`
	Delta         int       `db:"delta" json:"delta"`
	QuantityAfter int       `db:"quantity_after" json:"quantity_after"`
	Reference     string    `db:"reference" json:"reference"`
	Actor         string    `db:"actor" json:"actor"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// FixedAsset is a depreciable asset tracked by the adjustment layer.
type FixedAsset struct {
	ID                      int64           `db:"id" json:"id"`
	Name                    string          `db:"name" json:"name"`
	AcquisitionDate         time.Time       `db:"acquisition_date" json:"acquisition_date"`
	AcquisitionValue        decimal.Decimal `db:"acquisition_value" json:"acquisition_value"`
	ResidualValue           decimal.Decimal `db:"residual_value" json:"residual_value"`
	UsefulLifeYears         int             `db:"useful_life_years" json:"useful_life_years"`
	AccumulatedDepreciation decimal.Decimal `db:"accumulated_depreciation" json:"accumulated_depreciation"`
	BookValue               decimal.Decimal `db:"book_value" json:"book_value"`
	CreatedAt               time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time       `db:"updated_at" json:"updated_at"`
}

// DepreciableBase is the total amount the asset may ever be depreciated by.
func (a FixedAsset) DepreciableBase() decimal.Decimal {
	return a.AcquisitionValue.Sub(a.ResidualValue)
}

// FixedAssetRequest registers a fixed asset.
type FixedAssetRequest struct {
	Name                    string          `json:"name" validate:"required,max=255"`
	AcquisitionDate         string          `json:"acquisition_date" validate:"required"`
	AcquisitionValue        decimal.Decimal `json:"acquisition_value"`
	ResidualValue           decimal.Decimal `json:"residual_value"`
	UsefulLifeYears         int             `json:"useful_life_years" validate:"required,gt=0"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
}

// DepreciationRequest recognises depreciation for a number of months.
type DepreciationRequest struct {
	Months int    `json:"months" validate:"required,gt=0"`
	Date   string `json:"date"`
}

// ManualAdjustmentRequest is an arbitrary balanced adjustment pair.
type ManualAdjustmentRequest struct {
	Date          string          `json:"date"`
	DebitAccount  string          `json:"debit_account" validate:"required"`
	CreditAccount string          `json:"credit_account" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Memo          string          `json:"memo" validate:"max=500"`
}

// DepreciationResult is the outcome of depreciating one asset.
type DepreciationResult struct {
	AssetID int64           `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
	Asset   FixedAsset      `json:"asset"`
	Entries []JournalEntry  `json:"entries"`
	Skipped bool            `json:"skipped"`
	Reason  string          `json:"reason,omitempty"`
}

// SweepReport summarises an automatic depreciation sweep.
type SweepReport struct {
	AsOf        time.Time            `json:"as_of"`
	Processed   int                  `json:"processed"`
	Depreciated int                  `json:"depreciated"`
	UpToDate    int                  `json:"up_to_date"`
	Failed      int                  `json:"failed"`
	Total       decimal.Decimal      `json:"total"`
	Results     []DepreciationResult `json:"results"`
}
