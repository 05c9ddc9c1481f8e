package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/repository"
)

const (
	ledgerVersionKey   = "ledger:version"
	reportBuildTimeout = 2 * time.Minute
)

// ReportRange bounds a report by entry date. Nil ends are open.
type ReportRange struct {
	From *time.Time
	To   *time.Time
}

func (r ReportRange) key() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("20060102")
	}
	return format(r.From) + ":" + format(r.To)
}

// ReportService re-reads the journal and runs the aggregators. Results are
// cached in Redis under the current ledger version, so any ledger write
// makes every cached report stale. A nil Redis client disables the cache.
type ReportService struct {
	store    repository.LedgerStore
	accounts repository.AccountStore
	cache    *redis.Client
	ttl      time.Duration
	logger   *logrus.Logger
	group    singleflight.Group
}

func NewReportService(store repository.LedgerStore, accounts repository.AccountStore, cache *redis.Client, ttl time.Duration, logger *logrus.Logger) *ReportService {
	return &ReportService{
		store:    store,
		accounts: accounts,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// LedgerChanged bumps the ledger version.
func (s *ReportService) LedgerChanged(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, ledgerVersionKey).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to bump ledger version")
	}
}

func (s *ReportService) version(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	v, err := s.cache.Get(ctx, ledgerVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.WithError(err).Warn("Report cache unavailable")
		return 0, false
	}
	return v, true
}

// cachedReport serves a report from the cache or builds it once for all
// concurrent callers asking for the same key.
func cachedReport[T any](ctx context.Context, s *ReportService, name string, rng ReportRange, build func(ctx context.Context) (T, error)) (T, error) {
	version, cacheable := s.version(ctx)
	key := fmt.Sprintf("report:%s:v%d:%s", name, version, rng.key())

	if cacheable {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	// Coalesced callers share one build; it runs detached from any single
	// caller's cancellation.
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportBuildTimeout)
		defer cancel()

		report, err := build(buildCtx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if data, err := json.Marshal(report); err == nil {
				if err := s.cache.Set(buildCtx, key, data, s.ttl).Err(); err != nil {
					s.logger.WithError(err).WithField("report", name).Warn("Failed to cache report")
				}
			}
		}
		return report, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *ReportService) entries(ctx context.Context, filter models.JournalFilter) ([]models.JournalEntry, *accounting.Chart, error) {
	entries, err := s.store.QueryJournalEntries(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal: %w", err)
	}
	chart, err := loadChart(ctx, s.accounts)
	if err != nil {
		return nil, nil, err
	}
	return entries, chart, nil
}

// periodEntries reads everything up to rng.To and carries the balances
// from before rng.From into the opening position.
func (s *ReportService) periodEntries(ctx context.Context, rng ReportRange) ([]models.JournalEntry, *accounting.Chart, error) {
	entries, chart, err := s.entries(ctx, models.JournalFilter{To: rng.To})
	if err != nil {
		return nil, nil, err
	}
	return accounting.CarryForward(entries, rng.From, chart), chart, nil
}

func (s *ReportService) GeneralJournal(ctx context.Context, rng ReportRange) (accounting.GeneralJournal, error) {
	return cachedReport(ctx, s, "general-journal", rng, func(ctx context.Context) (accounting.GeneralJournal, error) {
		entries, _, err := s.entries(ctx, models.JournalFilter{From: rng.From, To: rng.To})
		if err != nil {
			return accounting.GeneralJournal{}, err
		}
		return accounting.BuildGeneralJournal(entries), nil
	})
}

func (s *ReportService) GeneralLedger(ctx context.Context, rng ReportRange) ([]accounting.LedgerAccount, error) {
	return cachedReport(ctx, s, "general-ledger", rng, func(ctx context.Context) ([]accounting.LedgerAccount, error) {
		entries, chart, err := s.entries(ctx, models.JournalFilter{From: rng.From, To: rng.To})
		if err != nil {
			return nil, err
		}
		return accounting.BuildGeneralLedger(entries, chart), nil
	})
}

func (s *ReportService) TrialBalance(ctx context.Context, rng ReportRange, excludeAdjustments bool) (accounting.TrialBalanceReport, error) {
	name := "trial-balance"
	if excludeAdjustments {
		name += "-unadjusted"
	}
	return cachedReport(ctx, s, name, rng, func(ctx context.Context) (accounting.TrialBalanceReport, error) {
		entries, chart, err := s.periodEntries(ctx, rng)
		if err != nil {
			return accounting.TrialBalanceReport{}, err
		}
		return accounting.TrialBalance(entries, accounting.TrialBalanceOptions{
			ExcludeAdjustments: excludeAdjustments,
			Chart:              chart,
		}), nil
	})
}

func (s *ReportService) AdjustedTrialBalance(ctx context.Context, rng ReportRange) (accounting.AdjustedTrialBalanceReport, error) {
	return cachedReport(ctx, s, "adjusted-trial-balance", rng, func(ctx context.Context) (accounting.AdjustedTrialBalanceReport, error) {
		entries, chart, err := s.periodEntries(ctx, rng)
		if err != nil {
			return accounting.AdjustedTrialBalanceReport{}, err
		}
		return accounting.AdjustedTrialBalance(entries, chart), nil
	})
}

func (s *ReportService) Worksheet(ctx context.Context, rng ReportRange) (accounting.Worksheet, error) {
	return cachedReport(ctx, s, "worksheet", rng, func(ctx context.Context) (accounting.Worksheet, error) {
		entries, chart, err := s.periodEntries(ctx, rng)
		if err != nil {
			return accounting.Worksheet{}, err
		}
		ws := accounting.BuildWorksheet(entries, chart)
		if len(ws.UnclassifiedAccounts) > 0 {
			s.logger.WithField("accounts", ws.UnclassifiedAccounts).Warn("Worksheet has unclassified accounts")
		}
		return ws, nil
	})
}

func (s *ReportService) IncomeStatement(ctx context.Context, rng ReportRange) (accounting.IncomeStatementReport, error) {
	return cachedReport(ctx, s, "income-statement", rng, func(ctx context.Context) (accounting.IncomeStatementReport, error) {
		entries, chart, err := s.periodEntries(ctx, rng)
		if err != nil {
			return accounting.IncomeStatementReport{}, err
		}
		balances := accounting.AdjustedTrialBalance(entries, chart).Balances()
		return accounting.ComputeIncomeStatement(balances, chart), nil
	})
}

// CashFlow reports the period's flows; everything before the period forms
// the opening cash balance.
func (s *ReportService) CashFlow(ctx context.Context, rng ReportRange) (accounting.CashFlowStatement, error) {
	return cachedReport(ctx, s, "cash-flow", rng, func(ctx context.Context) (accounting.CashFlowStatement, error) {
		entries, chart, err := s.entries(ctx, models.JournalFilter{To: rng.To})
		if err != nil {
			return accounting.CashFlowStatement{}, err
		}
		prior, period := accounting.SplitPeriod(entries, rng.From)
		opening := accounting.CashBalance(prior, chart)
		statement := accounting.CashFlow(period, opening, chart)
		if !statement.Reconciled {
			s.logger.WithField("difference", statement.Difference.String()).Warn("Cash flow does not reconcile with cash accounts")
		}
		return statement, nil
	})
}

func (s *ReportService) EquityChanges(ctx context.Context, rng ReportRange) (accounting.EquityStatement, error) {
	return cachedReport(ctx, s, "equity-changes", rng, func(ctx context.Context) (accounting.EquityStatement, error) {
		entries, chart, err := s.entries(ctx, models.JournalFilter{To: rng.To})
		if err != nil {
			return accounting.EquityStatement{}, err
		}
		return accounting.EquityChangesSince(entries, rng.From, chart), nil
	})
}

// Subsidiary builds the receivable or payable ledger from raw
// transactions dated within the range.
func (s *ReportService) Subsidiary(ctx context.Context, kind accounting.SubsidiaryKind, rng ReportRange) (accounting.SubsidiaryLedger, error) {
	return cachedReport(ctx, s, "subsidiary-"+string(kind), rng, func(ctx context.Context) (accounting.SubsidiaryLedger, error) {
		raws, err := s.store.ListRawTransactions(ctx, "")
		if err != nil {
			return accounting.SubsidiaryLedger{}, fmt.Errorf("failed to list transactions: %w", err)
		}
		var inRange []models.RawTransaction
		for _, raw := range raws {
			if rng.To != nil && raw.Date.After(*rng.To) {
				continue
			}
			if rng.From != nil && raw.Date.Before(*rng.From) {
				continue
			}
			inRange = append(inRange, raw)
		}
		return accounting.BuildSubsidiaryLedger(kind, inRange), nil
	})
}
