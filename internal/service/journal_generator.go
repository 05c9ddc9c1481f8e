package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/repository"
)

// JournalGenerator journals raw business transactions that have no batch
// yet. Running it any number of times leaves exactly one batch per
// transaction.
type JournalGenerator struct {
	store    repository.LedgerStore
	notifier ChangeNotifier
	logger   *logrus.Logger
	now      func() time.Time
}

func NewJournalGenerator(store repository.LedgerStore, notifier ChangeNotifier, logger *logrus.Logger) *JournalGenerator {
	return &JournalGenerator{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateMissing scans one source. Per-transaction failures are recorded
// in the report and the scan continues; only a failure to list the source
// is returned as an error.
func (g *JournalGenerator) GenerateMissing(ctx context.Context, source models.TransactionType, actor string) (models.GenerationReport, error) {
	report := models.GenerationReport{
		Source:    source,
		Failures:  []models.GenerationFailure{},
		StartedAt: g.now(),
	}
	if !source.IsRaw() {
		return report, &accounting.ValidationError{Field: "source", Reason: fmt.Sprintf("%s: %q", accounting.ReasonUnsupported, source)}
	}

	raws, err := g.store.ListRawTransactions(ctx, source)
	if err != nil {
		return report, fmt.Errorf("failed to list %s transactions: %w", source, err)
	}

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		txID := raw.TransactionID()

		exists, err := g.store.JournalExists(ctx, txID, source)
		if err != nil {
			g.fail(&report, txID, source, err)
			continue
		}
		if exists {
			report.AlreadyJournaled++
			continue
		}

		entries, err := accounting.BuildEntries(source, accounting.FieldsFromRaw(raw), actor)
		if err != nil {
			g.fail(&report, txID, source, err)
			continue
		}

		err = g.store.AppendJournalEntries(ctx, entries)
		switch {
		case errors.Is(err, repository.ErrAlreadyJournaled):
			report.AlreadyJournaled++
		case err != nil:
			g.fail(&report, txID, source, err)
		default:
			report.NewlyJournaled++
		}
	}

	report.FinishedAt = g.now()
	if report.NewlyJournaled > 0 {
		notify(ctx, g.notifier)
	}
	g.logger.WithFields(logrus.Fields{
		"source":            source,
		"processed":         report.Processed,
		"newly_journaled":   report.NewlyJournaled,
		"already_journaled": report.AlreadyJournaled,
		"failed":            report.Failed,
	}).Info("Journal generation finished")
	return report, nil
}

// GenerateAll runs GenerateMissing for every journalable source.
func (g *JournalGenerator) GenerateAll(ctx context.Context, actor string) (models.GenerationReport, error) {
	total := models.GenerationReport{
		Failures:  []models.GenerationFailure{},
		StartedAt: g.now(),
	}
	for _, source := range models.RawTransactionTypes {
		report, err := g.GenerateMissing(ctx, source, actor)
		if err != nil {
			return total, err
		}
		total.Merge(report)
	}
	total.FinishedAt = g.now()
	return total, nil
}

// Generate runs one source, or every source when source is empty.
func (g *JournalGenerator) Generate(ctx context.Context, source models.TransactionType, actor string) (models.GenerationReport, error) {
	if source == "" {
		return g.GenerateAll(ctx, actor)
	}
	return g.GenerateMissing(ctx, source, actor)
}

func (g *JournalGenerator) fail(report *models.GenerationReport, txID string, source models.TransactionType, err error) {
	report.Failed++
	report.Failures = append(report.Failures, models.GenerationFailure{
		TransactionID:   txID,
		TransactionType: source,
		Reason:          err.Error(),
	})
	g.logger.WithError(err).WithFields(logrus.Fields{
		"transaction_id":   txID,
		"transaction_type": source,
	}).Warn("Failed to journal transaction")
}
