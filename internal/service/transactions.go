package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/infra/observability"
	"github.com/lfarias/meubolso/internal/port"
)

var txTracer = otel.Tracer("service/transactions")

// TransactionsService serves stored transactions: listing, summaries,
// manual category overrides and CSV export.
type TransactionsService struct {
	store    port.TransactionStore
	catStore port.CategoryStore
	catCache port.Cache[map[string]string]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewTransactionsService creates a transactions service.
func NewTransactionsService(
	store port.TransactionStore,
	catStore port.CategoryStore,
	catCache port.Cache[map[string]string],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TransactionsService {
	return &TransactionsService{
		store:    store,
		catStore: catStore,
		catCache: catCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns transactions matching the filter.
func (s *TransactionsService) List(ctx context.Context, filter *domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.List")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("list_transactions", time.Since(start))
	}()

	return s.store.ListTransactions(ctx, filter)
}

// Get returns a single transaction by id.
func (s *TransactionsService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.Get")
	defer span.End()

	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}
	return s.store.GetTransaction(ctx, id)
}

// OverrideCategory manually re-categorizes a stored transaction.
// An empty categoryID clears the category.
func (s *TransactionsService) OverrideCategory(ctx context.Context, id, categoryID string) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.OverrideCategory")
	defer span.End()

	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}

	var catID *string
	if categoryID != "" {
		categories, err := s.catStore.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		found := false
		for _, cat := range categories {
			if cat.ID == categoryID {
				found = true
				break
			}
		}
		if !found {
			return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
		}
		catID = &categoryID
	}

	tx, err := s.store.UpdateTransactionCategory(ctx, id, catID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction category overridden",
		zap.String("transaction_id", id),
		zap.String("category_id", categoryID),
	)
	return tx, nil
}

// Summary aggregates credits, debits and per-category totals for the
// filtered period.
func (s *TransactionsService) Summary(ctx context.Context, filter *domain.TransactionFilter) (*domain.TransactionSummary, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.Summary")
	defer span.End()

	txns, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &domain.TransactionSummary{Count: len(txns)}
	byCategory := make(map[string]float64)

	for _, tx := range txns {
		if tx.Amount >= 0 {
			summary.TotalCredits += tx.Amount
		} else {
			summary.TotalDebits += -tx.Amount
			if tx.Category != "" {
				byCategory[tx.Category] += -tx.Amount
			}
		}
	}
	summary.Balance = summary.TotalCredits - summary.TotalDebits

	for cat, total := range byCategory {
		summary.TopCategories = append(summary.TopCategories, domain.CategoryTotal{
			Category: cat,
			Total:    total,
		})
	}
	sortCategoryTotals(summary.TopCategories)

	if filter != nil && (filter.From != "" || filter.To != "") {
		summary.Period = &domain.SummaryPeriod{From: filter.From, To: filter.To}
	}

	return summary, nil
}

// ExportCSV renders the filtered transactions as CSV.
func (s *TransactionsService) ExportCSV(ctx context.Context, filter *domain.TransactionFilter) ([]byte, error) {
	ctx, span := txTracer.Start(ctx, "TransactionsService.ExportCSV")
	defer span.End()

	txns, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "description", "amount", "type", "category", "fit_id"}); err != nil {
		return nil, err
	}
	for _, tx := range txns {
		record := []string{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Type,
			tx.Category,
			tx.FitID,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("transactions exported", zap.Int("count", len(txns)))
	return buf.Bytes(), nil
}

func sortCategoryTotals(totals []domain.CategoryTotal) {
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
}
