package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	defaultRecentTransactions = 5
	defaultTopGoals           = 3
)

type DashboardService struct {
	storage *storage.Repository
	reports *ReportService
	logger  *log.Logger
}

func NewDashboardService(storage *storage.Repository, reports *ReportService, logger *log.Logger) *DashboardService {
	return &DashboardService{
		storage: storage,
		reports: reports,
		logger:  logger.WithComponent(log.ComponentDashboard),
	}
}

// Snapshot assembles the dashboard for the given reference month: that
// month's totals, the most recent transactions regardless of month, and the
// goals closest to completion. Non-positive limits fall back to defaults.
func (s *DashboardService) Snapshot(ctx context.Context, userID string, year, month, recentLimit, goalLimit int) (*core.DashboardSnapshot, error) {
	if !core.ValidPeriod(year, month) {
		return nil, core.ErrInvalidPeriod
	}
	if recentLimit <= 0 {
		recentLimit = defaultRecentTransactions
	}
	if goalLimit <= 0 {
		goalLimit = defaultTopGoals
	}

	var (
		totals core.MonthlyTotals
		recent []core.Transaction
		goals  []core.SavingsGoal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.reports.MonthlyTotals(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.storage.ListTransactions(gctx, userID, storage.TransactionFilter{Limit: recentLimit})
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.storage.ListGoals(gctx, userID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].ProgressPercent > goals[j].ProgressPercent
	})
	if len(goals) > goalLimit {
		goals = goals[:goalLimit]
	}

	if recent == nil {
		recent = []core.Transaction{}
	}
	if goals == nil {
		goals = []core.SavingsGoal{}
	}

	return &core.DashboardSnapshot{
		IncomeTotal:        totals.Income,
		ExpenseTotal:       totals.Expenses,
		NetSavings:         totals.Net,
		RecentTransactions: recent,
		TopGoalProgress:    goals,
	}, nil
}
