package accounting

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"pinkilang/internal/models"
)

// AdjustmentKind selects an adjustment operation.
type AdjustmentKind string

const (
	AdjustmentManual            AdjustmentKind = "manual"
	AdjustmentAssetDepreciation AdjustmentKind = "asset_depreciation"
	AdjustmentAutoSweep         AdjustmentKind = "auto_depreciation_sweep"
)

// ManualFields is an arbitrary debit/credit pair entered by a user.
type ManualFields struct {
	TransactionID string
	Date          time.Time
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Memo          string
}

// ManualAdjustment builds a balanced ADJUSTMENT_MANUAL pair. Only the
// amount and the presence of both account names are checked.
func ManualAdjustment(f ManualFields, actor string, chart *Chart) ([]models.JournalEntry, error) {
	if chart == nil {
		chart = DefaultChart()
	}
	if strings.TrimSpace(f.DebitAccount) == "" {
		return nil, invalid("debit_account", ReasonMissing)
	}
	if strings.TrimSpace(f.CreditAccount) == "" {
		return nil, invalid("credit_account", ReasonMissing)
	}
	if !f.Amount.IsPositive() {
		return nil, invalid("amount", ReasonNonPositiveAmount)
	}
	if f.Date.IsZero() {
		return nil, invalid("date", ReasonMissing)
	}
	memo := strings.TrimSpace(f.Memo)
	if memo == "" {
		memo = "Jurnal penyesuaian"
	}
	if utf8.RuneCountInString(memo) > MaxDescriptionLength {
		return nil, invalid("memo", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	debit := chart.Classify("", f.DebitAccount)
	credit := chart.Classify("", f.CreditAccount)
	return []models.JournalEntry{
		{
			Date:            f.Date,
			AccountName:     debit.Name,
			AccountCode:     debit.Code,
			Debit:           f.Amount,
			Credit:          decimal.Zero,
			Description:     memo,
			TransactionType: models.TxAdjustmentManual,
			TransactionID:   f.TransactionID,
			Actor:           actor,
		},
		{
			Date:            f.Date,
			AccountName:     credit.Name,
			AccountCode:     credit.Code,
			Debit:           decimal.Zero,
			Credit:          f.Amount,
			Description:     memo,
			TransactionType: models.TxAdjustmentManual,
			TransactionID:   f.TransactionID,
			Actor:           actor,
		},
	}, nil
}

// ValidateAsset checks the depreciation parameters of an asset.
func ValidateAsset(a models.FixedAsset) error {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return invalid("name", ReasonMissing)
	case a.UsefulLifeYears <= 0:
		return invalid("useful_life_years", "must be positive")
	case !a.AcquisitionValue.IsPositive():
		return invalid("acquisition_value", ReasonNonPositiveAmount)
	case a.ResidualValue.IsNegative():
		return invalid("residual_value", ReasonNegativeAmount)
	case a.ResidualValue.GreaterThan(a.AcquisitionValue):
		return invalid("residual_value", "exceeds acquisition value")
	case a.AccumulatedDepreciation.IsNegative():
		return invalid("accumulated_depreciation", ReasonNegativeAmount)
	}
	return nil
}

// MonthlyDepreciation is the straight-line charge for one month, unrounded.
func MonthlyDepreciation(a models.FixedAsset) (decimal.Decimal, error) {
	if err := ValidateAsset(a); err != nil {
		return decimal.Zero, err
	}
	months := decimal.NewFromInt(int64(a.UsefulLifeYears) * 12)
	return a.DepreciableBase().Div(months), nil
}

// RemainingDepreciable is what the asset may still be depreciated by.
func RemainingDepreciable(a models.FixedAsset) decimal.Decimal {
	rem := a.DepreciableBase().Sub(a.AccumulatedDepreciation)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// DepreciationOutcome is a depreciation charge and the asset after it.
type DepreciationOutcome struct {
	Amount  decimal.Decimal
	Asset   models.FixedAsset
	Entries []models.JournalEntry
}

// DepreciationFields identifies the batch a depreciation charge is booked in.
type DepreciationFields struct {
	TransactionType models.TransactionType
	TransactionID   string
	Date            time.Time
}

// DepreciateAsset recognises months of straight-line depreciation, rounded
// to two decimals and capped at the remaining depreciable base. A zero
// charge after capping yields no entries.
func DepreciateAsset(a models.FixedAsset, months int, f DepreciationFields, actor string) (DepreciationOutcome, error) {
	if months <= 0 {
		return DepreciationOutcome{}, invalid("months", "must be positive")
	}
	monthly, err := MonthlyDepreciation(a)
	if err != nil {
		return DepreciationOutcome{}, err
	}
	amount := monthly.Mul(decimal.NewFromInt(int64(months))).Round(2)
	return chargeDepreciation(a, amount, f, actor)
}

// ElapsedMonths counts the whole months between two dates.
func ElapsedMonths(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DepreciationShortfall is the depreciation expected by asOf, capped at the
// depreciable base, minus what has already been recognised.
func DepreciationShortfall(a models.FixedAsset, asOf time.Time) (decimal.Decimal, error) {
	monthly, err := MonthlyDepreciation(a)
	if err != nil {
		return decimal.Zero, err
	}
	elapsed := ElapsedMonths(a.AcquisitionDate, asOf)
	expected := monthly.Mul(decimal.NewFromInt(int64(elapsed))).Round(2)
	if base := a.DepreciableBase(); expected.GreaterThan(base) {
		expected = base
	}
	shortfall := expected.Sub(a.AccumulatedDepreciation)
	if shortfall.IsNegative() {
		return decimal.Zero, nil
	}
	return shortfall, nil
}

// CatchUpDepreciation books the shortfall of an asset as of a date.
func CatchUpDepreciation(a models.FixedAsset, asOf time.Time, f DepreciationFields, actor string) (DepreciationOutcome, error) {
	shortfall, err := DepreciationShortfall(a, asOf)
	if err != nil {
		return DepreciationOutcome{}, err
	}
	return chargeDepreciation(a, shortfall, f, actor)
}

// AutoDepreciationID is the transaction id of the sweep charge for an
// asset in the month of asOf.
func AutoDepreciationID(assetID int64, asOf time.Time) string {
	return fmt.Sprintf("asset-%d-%s", assetID, asOf.Format("200601"))
}

func chargeDepreciation(a models.FixedAsset, amount decimal.Decimal, f DepreciationFields, actor string) (DepreciationOutcome, error) {
	if f.Date.IsZero() {
		return DepreciationOutcome{}, invalid("date", ReasonMissing)
	}
	if rem := RemainingDepreciable(a); amount.GreaterThan(rem) {
		amount = rem
	}
	out := DepreciationOutcome{Amount: amount, Asset: a}
	if !amount.IsPositive() {
		out.Amount = decimal.Zero
		return out, nil
	}
	out.Asset.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(amount)
	out.Asset.BookValue = a.AcquisitionValue.Sub(out.Asset.AccumulatedDepreciation)

	desc := fmt.Sprintf("Penyusutan %s", a.Name)
	expense := DefaultChart().MustLookup(AccBebanPenyusutan)
	accumulated := DefaultChart().MustLookup(AccAkumulasiPenyusutan)
	out.Entries = []models.JournalEntry{
		{
			Date:            f.Date,
			AccountName:     expense.Name,
			AccountCode:     expense.Code,
			Debit:           amount,
			Credit:          decimal.Zero,
			Description:     desc,
			TransactionType: f.TransactionType,
			TransactionID:   f.TransactionID,
			Actor:           actor,
		},
		{
			Date:            f.Date,
			AccountName:     accumulated.Name,
			AccountCode:     accumulated.Code,
			Debit:           decimal.Zero,
			Credit:          amount,
			Description:     desc,
			TransactionType: f.TransactionType,
			TransactionID:   f.TransactionID,
			Actor:           actor,
		},
	}
	return out, nil
}
