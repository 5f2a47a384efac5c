package service

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/port"
)

var analyticsTracer = otel.Tracer("service/analytics")

// AnalyticsService computes income/expense aggregates over the stored
// transactions.
type AnalyticsService struct {
	txStore  port.TransactionStore
	catStore port.CategoryStore
	logger   *zap.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(txStore port.TransactionStore, catStore port.CategoryStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		txStore:  txStore,
		catStore: catStore,
		logger:   logger,
	}
}

// GetSummary aggregates the last N months of transactions: totals,
// per-category expense breakdown and a monthly trend. Transactions and
// categories are fetched concurrently.
func (s *AnalyticsService) GetSummary(ctx context.Context, months int) (*domain.AnalyticsSummary, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetSummary")
	defer span.End()

	if months <= 0 {
		months = 6
	}
	now := time.Now()
	from := now.AddDate(0, -months, 0).Format("2006-01-02")
	to := now.AddDate(0, 0, 1).Format("2006-01-02") // include all of today

	var (
		txns       []domain.Transaction
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.txStore.ListTransactions(gctx, &domain.TransactionFilter{From: from, To: to})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.catStore.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categoryNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	summary := &domain.AnalyticsSummary{
		Period: &domain.SummaryPeriod{From: from, To: to},
	}
	expenseByCategory := make(map[string]float64)
	monthlyIncome := make(map[string]float64)
	monthlyExpenses := make(map[string]float64)

	for _, tx := range txns {
		monthKey := tx.Date.Format("2006-01")
		if tx.Amount >= 0 {
			summary.TotalIncome += tx.Amount
			monthlyIncome[monthKey] += tx.Amount
			continue
		}

		expense := -tx.Amount
		summary.TotalExpenses += expense
		monthlyExpenses[monthKey] += expense

		name := tx.Category
		if name == "" && tx.CategoryID != nil {
			name = categoryNames[*tx.CategoryID]
		}
		if name == "" {
			name = "Outros"
		}
		expenseByCategory[name] += expense
	}
	summary.NetCashFlow = summary.TotalIncome - summary.TotalExpenses

	for cat, total := range expenseByCategory {
		summary.TopCategories = append(summary.TopCategories, domain.CategoryTotal{
			Category: cat,
			Total:    total,
		})
	}
	sort.Slice(summary.TopCategories, func(i, j int) bool {
		return summary.TopCategories[i].Total > summary.TopCategories[j].Total
	})

	monthSet := make(map[string]bool)
	for m := range monthlyIncome {
		monthSet[m] = true
	}
	for m := range monthlyExpenses {
		monthSet[m] = true
	}
	for m := range monthSet {
		income := monthlyIncome[m]
		expenses := monthlyExpenses[m]
		summary.MonthlyTrend = append(summary.MonthlyTrend, domain.MonthlyTrend{
			Month:    m,
			Income:   income,
			Expenses: expenses,
			Balance:  income - expenses,
		})
	}
	sort.Slice(summary.MonthlyTrend, func(i, j int) bool {
		return summary.MonthlyTrend[i].Month < summary.MonthlyTrend[j].Month
	})

	s.logger.Debug("analytics summary computed",
		zap.Int("transactions", len(txns)),
		zap.Int("months", months),
	)
	return summary, nil
}
