package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pinkilang/internal/accounting"
	"pinkilang/internal/repository"
)

// ChangeNotifier is told about every committed ledger write.
type ChangeNotifier interface {
	LedgerChanged(ctx context.Context)
}

func notify(ctx context.Context, n ChangeNotifier) {
	if n != nil {
		n.LedgerChanged(ctx)
	}
}

// loadChart extends the canonical chart with the active custom accounts.
// A nil store yields the canonical chart.
func loadChart(ctx context.Context, accounts repository.AccountStore) (*accounting.Chart, error) {
	if accounts == nil {
		return accounting.DefaultChart(), nil
	}
	rows, err := accounts.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounting.ChartFromAccounts(rows), nil
}

// dateLayouts are tried in order. Numeric day-month layouts are always
// day first with a four-digit year; month-first forms are not accepted.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// ParseDate reads a calendar date. An empty string means today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	return parseDateField(s, "date", now)
}

func parseDateField(s, field string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &accounting.ValidationError{Field: field, Reason: fmt.Sprintf("unable to parse %q", s)}
}
