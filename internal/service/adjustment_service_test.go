package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
)

func newAsset(t *testing.T, svc *AdjustmentService) *models.FixedAsset {
	t.Helper()
	asset, err := svc.CreateFixedAsset(context.Background(), models.FixedAssetRequest{
		Name:             "Mesin Jahit",
		AcquisitionDate:  "2024-01-01",
		AcquisitionValue: dec("12000000"),
		ResidualValue:    dec("0"),
		UsefulLifeYears:  5,
	})
	require.NoError(t, err)
	return asset
}

func TestDepreciateAsset_CapsAtDepreciableBase(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewAdjustmentService(store, nil, nil, testLogger())
	asset := newAsset(t, svc)

	dep, err := svc.DepreciateAsset(ctx, asset.ID, models.DepreciationRequest{Months: 3, Date: "2024-04-01"}, "tester")
	require.NoError(t, err)
	assertDecimal(t, "600000", dep.Amount)
	assertDecimal(t, "11400000", dep.Asset.BookValue)
	require.Len(t, dep.Entries, 2)
	assert.Equal(t, models.TxAdjustmentAsset, dep.Entries[0].TransactionType)

	dep, err = svc.DepreciateAsset(ctx, asset.ID, models.DepreciationRequest{Months: 120, Date: "2024-05-01"}, "tester")
	require.NoError(t, err)
	assertDecimal(t, "11400000", dep.Amount)
	assertDecimal(t, "0", dep.Asset.BookValue)

	dep, err = svc.DepreciateAsset(ctx, asset.ID, models.DepreciationRequest{Months: 1, Date: "2024-06-01"}, "tester")
	require.NoError(t, err)
	assert.True(t, dep.Skipped)
	assert.Empty(t, dep.Entries)

	stored, err := svc.GetFixedAsset(ctx, asset.ID)
	require.NoError(t, err)
	assertDecimal(t, "12000000", stored.AccumulatedDepreciation)

	entries, err := store.QueryJournalEntries(ctx, models.JournalFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestSweep_CatchesUpOncePerMonth(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewAdjustmentService(store, nil, nil, testLogger())
	asset := newAsset(t, svc)

	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.Sweep(ctx, april, "scheduler")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Depreciated)
	assertDecimal(t, "600000", report.Total)
	require.Len(t, report.Results[0].Entries, 2)
	assert.Equal(t, accounting.AutoDepreciationID(asset.ID, april), report.Results[0].Entries[0].TransactionID)
	assert.Equal(t, models.TxAdjustmentAuto, report.Results[0].Entries[0].TransactionType)

	again, err := svc.Sweep(ctx, april, "scheduler")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Depreciated)
	assert.Equal(t, 1, again.UpToDate)

	may, err := svc.Sweep(ctx, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), "scheduler")
	require.NoError(t, err)
	assertDecimal(t, "200000", may.Total)
}

func TestSweep_IsolatesBrokenAssets(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewAdjustmentService(store, nil, nil, testLogger())
	newAsset(t, svc)

	broken := &models.FixedAsset{Name: "Rusak", AcquisitionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), AcquisitionValue: dec("1000")}
	require.NoError(t, store.CreateFixedAsset(ctx, broken))

	report, err := svc.Sweep(ctx, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "scheduler")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Depreciated)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[1].Reason, "useful_life_years")
}

func TestManualAdjustment(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewAdjustmentService(store, store, nil, testLogger())

	entries, err := svc.Manual(ctx, models.ManualAdjustmentRequest{
		Date: "2024-03-31", DebitAccount: "Beban Perlengkapan", CreditAccount: "Perlengkapan", Amount: dec("25000"),
	}, "tester")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TxAdjustmentManual, entries[0].TransactionType)
	assert.Equal(t, "Jurnal penyesuaian", entries[0].Description)

	_, err = svc.Manual(ctx, models.ManualAdjustmentRequest{DebitAccount: "Kas", CreditAccount: "Modal", Amount: dec("0")}, "tester")
	assert.True(t, accounting.IsValidationError(err))

	result, err := svc.ApplyAdjustment(ctx, accounting.AdjustmentAutoSweep, AdjustmentRequest{AsOf: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}, "tester")
	require.NoError(t, err)
	require.NotNil(t, result.Sweep)
	assert.Equal(t, 0, result.Sweep.Processed)
}

func TestCreateFixedAsset_Validates(t *testing.T) {
	svc := NewAdjustmentService(newStore(), nil, nil, testLogger())
	_, err := svc.CreateFixedAsset(context.Background(), models.FixedAssetRequest{
		Name: "Meja", AcquisitionDate: "2024-01-01", AcquisitionValue: dec("100"), ResidualValue: dec("200"), UsefulLifeYears: 2,
	})
	assert.True(t, accounting.IsValidationError(err))
}
