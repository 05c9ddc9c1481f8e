package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/repository"
)

// AdjustmentRequest carries the input of any adjustment kind; each kind
// reads only its own fields.
type AdjustmentRequest struct {
	Manual  models.ManualAdjustmentRequest
	AssetID int64
	Months  int
	Date    string
	AsOf    time.Time
}

// AdjustmentResult is the outcome of ApplyAdjustment.
type AdjustmentResult struct {
	Kind         accounting.AdjustmentKind  `json:"kind"`
	Entries      []models.JournalEntry      `json:"entries,omitempty"`
	Depreciation *models.DepreciationResult `json:"depreciation,omitempty"`
	Sweep        *models.SweepReport        `json:"sweep,omitempty"`
}

type AdjustmentService struct {
	store    repository.LedgerStore
	accounts repository.AccountStore
	notifier ChangeNotifier
	logger   *logrus.Logger
	now      func() time.Time
}

func NewAdjustmentService(store repository.LedgerStore, accounts repository.AccountStore, notifier ChangeNotifier, logger *logrus.Logger) *AdjustmentService {
	return &AdjustmentService{
		store:    store,
		accounts: accounts,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyAdjustment dispatches on the adjustment kind.
func (s *AdjustmentService) ApplyAdjustment(ctx context.Context, kind accounting.AdjustmentKind, req AdjustmentRequest, actor string) (*AdjustmentResult, error) {
	result := &AdjustmentResult{Kind: kind}
	switch kind {
	case accounting.AdjustmentManual:
		entries, err := s.Manual(ctx, req.Manual, actor)
		if err != nil {
			return nil, err
		}
		result.Entries = entries
	case accounting.AdjustmentAssetDepreciation:
		dep, err := s.DepreciateAsset(ctx, req.AssetID, models.DepreciationRequest{Months: req.Months, Date: req.Date}, actor)
		if err != nil {
			return nil, err
		}
		result.Depreciation = dep
		result.Entries = dep.Entries
	case accounting.AdjustmentAutoSweep:
		asOf := req.AsOf
		if asOf.IsZero() {
			asOf = s.now()
		}
		sweep, err := s.Sweep(ctx, asOf, actor)
		if err != nil {
			return nil, err
		}
		result.Sweep = sweep
	default:
		return nil, &accounting.ValidationError{Field: "kind", Reason: fmt.Sprintf("%s: %q", accounting.ReasonUnsupported, kind)}
	}
	return result, nil
}

// Manual books an arbitrary debit/credit pair.
func (s *AdjustmentService) Manual(ctx context.Context, req models.ManualAdjustmentRequest, actor string) ([]models.JournalEntry, error) {
	date, err := ParseDate(req.Date, s.now())
	if err != nil {
		return nil, err
	}
	chart, err := loadChart(ctx, s.accounts)
	if err != nil {
		return nil, err
	}
	entries, err := accounting.ManualAdjustment(accounting.ManualFields{
		TransactionID: "ADJ-" + uuid.NewString(),
		Date:          date,
		DebitAccount:  req.DebitAccount,
		CreditAccount: req.CreditAccount,
		Amount:        req.Amount,
		Memo:          req.Memo,
	}, actor, chart)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if c := chart.Classify(e.AccountCode, e.AccountName); c.Unclassified {
			s.logger.WithField("account", e.AccountName).Warn("Adjustment posted to an unclassified account")
		}
	}
	if err := s.store.AppendJournalEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to append adjustment: %w", err)
	}
	notify(ctx, s.notifier)
	return entries, nil
}

// CreateFixedAsset registers an asset. Book value starts at acquisition
// value less any depreciation recognised before registration.
func (s *AdjustmentService) CreateFixedAsset(ctx context.Context, req models.FixedAssetRequest) (*models.FixedAsset, error) {
	acquired, err := parseDateField(req.AcquisitionDate, "acquisition_date", s.now())
	if err != nil {
		return nil, err
	}
	asset := &models.FixedAsset{
		Name:                    req.Name,
		AcquisitionDate:         acquired,
		AcquisitionValue:        req.AcquisitionValue,
		ResidualValue:           req.ResidualValue,
		UsefulLifeYears:         req.UsefulLifeYears,
		AccumulatedDepreciation: req.AccumulatedDepreciation,
		BookValue:               req.AcquisitionValue.Sub(req.AccumulatedDepreciation),
	}
	if err := accounting.ValidateAsset(*asset); err != nil {
		return nil, err
	}
	if asset.AccumulatedDepreciation.GreaterThan(asset.DepreciableBase()) {
		return nil, &accounting.ValidationError{Field: "accumulated_depreciation", Reason: "exceeds depreciable base"}
	}
	if err := s.store.CreateFixedAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to create fixed asset: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"asset_id": asset.ID, "name": asset.Name}).Info("Fixed asset registered")
	return asset, nil
}

func (s *AdjustmentService) ListFixedAssets(ctx context.Context) ([]models.FixedAsset, error) {
	return s.store.ListFixedAssets(ctx)
}

func (s *AdjustmentService) GetFixedAsset(ctx context.Context, id int64) (*models.FixedAsset, error) {
	asset, err := s.store.GetFixedAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// DepreciateAsset recognises months of depreciation for one asset. A fully
// depreciated asset is reported as skipped and nothing is written.
func (s *AdjustmentService) DepreciateAsset(ctx context.Context, id int64, req models.DepreciationRequest, actor string) (*models.DepreciationResult, error) {
	date, err := ParseDate(req.Date, s.now())
	if err != nil {
		return nil, err
	}
	fields := accounting.DepreciationFields{
		TransactionType: models.TxAdjustmentAsset,
		TransactionID:   fmt.Sprintf("DEP-%d-%s", id, uuid.NewString()),
		Date:            date,
	}
	result, err := s.depreciate(ctx, id, func(a models.FixedAsset) (accounting.DepreciationOutcome, error) {
		return accounting.DepreciateAsset(a, req.Months, fields, actor)
	})
	if err != nil {
		return nil, err
	}
	if !result.Skipped {
		notify(ctx, s.notifier)
	}
	return result, nil
}

// Sweep catches every asset up to the depreciation expected by asOf.
// Each asset is its own unit of work; a failing asset is reported and the
// sweep moves on.
func (s *AdjustmentService) Sweep(ctx context.Context, asOf time.Time, actor string) (*models.SweepReport, error) {
	assets, err := s.store.ListFixedAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed assets: %w", err)
	}

	report := &models.SweepReport{
		AsOf:    asOf,
		Total:   decimal.Zero,
		Results: []models.DepreciationResult{},
	}
	y, m, d := asOf.Date()
	entryDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		fields := accounting.DepreciationFields{
			TransactionType: models.TxAdjustmentAuto,
			TransactionID:   accounting.AutoDepreciationID(asset.ID, asOf),
			Date:            entryDate,
		}
		result, err := s.depreciate(ctx, asset.ID, func(a models.FixedAsset) (accounting.DepreciationOutcome, error) {
			return accounting.CatchUpDepreciation(a, asOf, fields, actor)
		})
		switch {
		case errors.Is(err, repository.ErrAlreadyJournaled):
			report.UpToDate++
			report.Results = append(report.Results, models.DepreciationResult{
				AssetID: asset.ID, Asset: asset, Amount: decimal.Zero, Skipped: true, Reason: "already swept this month",
			})
		case err != nil:
			report.Failed++
			report.Results = append(report.Results, models.DepreciationResult{
				AssetID: asset.ID, Asset: asset, Amount: decimal.Zero, Skipped: true, Reason: err.Error(),
			})
			s.logger.WithError(err).WithField("asset_id", asset.ID).Warn("Depreciation sweep failed for asset")
		case result.Skipped:
			report.UpToDate++
			report.Results = append(report.Results, *result)
		default:
			report.Depreciated++
			report.Total = report.Total.Add(result.Amount)
			report.Results = append(report.Results, *result)
		}
	}

	if report.Depreciated > 0 {
		notify(ctx, s.notifier)
	}
	s.logger.WithFields(logrus.Fields{
		"as_of":       asOf.Format("2006-01-02"),
		"processed":   report.Processed,
		"depreciated": report.Depreciated,
		"failed":      report.Failed,
		"total":       report.Total.String(),
	}).Info("Depreciation sweep finished")
	return report, nil
}

func (s *AdjustmentService) depreciate(ctx context.Context, id int64, charge func(models.FixedAsset) (accounting.DepreciationOutcome, error)) (*models.DepreciationResult, error) {
	result := &models.DepreciationResult{AssetID: id, Amount: decimal.Zero}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		asset, err := tx.LockFixedAsset(ctx, id)
		if err != nil {
			return err
		}
		outcome, err := charge(asset)
		if err != nil {
			return err
		}
		result.Asset = outcome.Asset
		if len(outcome.Entries) == 0 {
			result.Skipped = true
			result.Reason = "no depreciation due"
			return nil
		}
		if err := tx.AppendJournalEntries(ctx, outcome.Entries); err != nil {
			return err
		}
		if err := tx.UpdateFixedAsset(ctx, outcome.Asset); err != nil {
			return err
		}
		result.Amount = outcome.Amount
		result.Entries = outcome.Entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
