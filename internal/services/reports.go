package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type ReportService struct {
	storage *storage.Repository
	logger  *log.Logger
}

func NewReportService(storage *storage.Repository, logger *log.Logger) *ReportService {
	return &ReportService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentReport),
	}
}

// MonthlyTotals aggregates one calendar month. Income and expense sums are
// fetched concurrently.
func (s *ReportService) MonthlyTotals(ctx context.Context, userID string, year, month int) (core.MonthlyTotals, error) {
	if !core.ValidPeriod(year, month) {
		return core.MonthlyTotals{}, core.ErrInvalidPeriod
	}

	start, end := core.MonthBounds(year, month)
	var income, expenses core.Money

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.storage.SumAmountByType(gctx, userID, core.Income, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.storage.SumAmountByType(gctx, userID, core.Expense, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthlyTotals{}, err
	}

	return core.NewMonthlyTotals(year, month, income, expenses), nil
}

// Snapshot builds the full monthly report: current totals, category
// breakdown of the month's expenses, and deltas against the previous month.
func (s *ReportService) Snapshot(ctx context.Context, userID string, year, month int) (*core.MonthlyReportSnapshot, error) {
	if !core.ValidPeriod(year, month) {
		return nil, core.ErrInvalidPeriod
	}

	prevYear, prevMonth := core.PreviousPeriod(year, month)
	start, end := core.MonthBounds(year, month)

	var (
		current, previous core.MonthlyTotals
		sums              []storage.CategorySum
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.MonthlyTotals(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.MonthlyTotals(gctx, userID, prevYear, prevMonth)
		return err
	})
	g.Go(func() error {
		var err error
		sums, err = s.storage.ExpenseSumsByCategory(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	breakdown := make([]core.CategoryBreakdownEntry, 0, len(sums))
	for _, sum := range sums {
		breakdown = append(breakdown, core.CategoryBreakdownEntry{
			CategoryID:   sum.CategoryID,
			CategoryName: sum.CategoryName,
			Amount:       sum.Amount,
			Percentage:   core.BreakdownPercentage(sum.Amount, current.Expenses),
		})
	}

	return &core.MonthlyReportSnapshot{
		Period:            core.Period{Year: year, Month: month},
		Totals:            current,
		CategoryBreakdown: breakdown,
		MonthOverMonth:    core.CompareMonths(current, previous),
	}, nil
}

// RecentTotals returns the totals of the months months ending at the
// reference period, oldest first.
func (s *ReportService) RecentTotals(ctx context.Context, userID string, year, month, months int) ([]core.MonthlyTotals, error) {
	if !core.ValidPeriod(year, month) {
		return nil, core.ErrInvalidPeriod
	}
	if months < 1 {
		months = 1
	}

	series := make([]core.MonthlyTotals, months)
	g, gctx := errgroup.WithContext(ctx)
	y, m := year, month
	for i := months - 1; i >= 0; i-- {
		idx, py, pm := i, y, m
		g.Go(func() error {
			totals, err := s.MonthlyTotals(gctx, userID, py, pm)
			if err != nil {
				return err
			}
			series[idx] = totals
			return nil
		})
		y, m = core.PreviousPeriod(y, m)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}
