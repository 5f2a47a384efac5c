package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/infra/cache"
	"github.com/lfarias/meubolso/internal/infra/observability"
	"github.com/lfarias/meubolso/internal/service"
)

func newTransactionsService(txStore *mockTxStore, catStore *mockCatStore) *service.TransactionsService {
	return service.NewTransactionsService(
		txStore,
		catStore,
		cache.New[map[string]string](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func storedTx(id, category string, amount float64) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		FitID:       "fit-" + id,
		Date:        time.Date(2025, 9, 10, 0, 0, 0, 0, time.Local),
		Description: "tx " + id,
		Amount:      amount,
		Type:        "debit",
		Category:    category,
	}
}

func TestSummary(t *testing.T) {
	txStore := newMockTxStore()
	txStore.listResult = []domain.Transaction{
		storedTx("1", "Alimentação", -50),
		storedTx("2", "Alimentação", -30),
		storedTx("3", "Transporte", -20),
		storedTx("4", "", 200),
	}
	svc := newTransactionsService(txStore, defaultCatStore())

	summary, err := svc.Summary(context.Background(), &domain.TransactionFilter{From: "2025-09-01", To: "2025-09-30"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.Count != 4 {
		t.Errorf("expected count 4, got %d", summary.Count)
	}
	if summary.TotalCredits != 200 {
		t.Errorf("expected credits 200, got %f", summary.TotalCredits)
	}
	if summary.TotalDebits != 100 {
		t.Errorf("expected debits 100, got %f", summary.TotalDebits)
	}
	if summary.Balance != 100 {
		t.Errorf("expected balance 100, got %f", summary.Balance)
	}
	if summary.Period == nil || summary.Period.From != "2025-09-01" {
		t.Error("expected period to carry the filter range")
	}

	if len(summary.TopCategories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summary.TopCategories))
	}
	if summary.TopCategories[0].Category != "Alimentação" || summary.TopCategories[0].Total != 80 {
		t.Errorf("unexpected top category: %+v", summary.TopCategories[0])
	}
	if summary.TopCategories[1].Category != "Transporte" {
		t.Errorf("unexpected second category: %+v", summary.TopCategories[1])
	}
}

func TestExportCSV(t *testing.T) {
	txStore := newMockTxStore()
	txStore.listResult = []domain.Transaction{
		storedTx("1", "Alimentação", -42.5),
		storedTx("2", "", 1500),
	}
	svc := newTransactionsService(txStore, defaultCatStore())

	data, err := svc.ExportCSV(context.Background(), &domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,description,amount,type,category,fit_id" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "-42.50") {
		t.Errorf("expected formatted amount in row: %q", lines[1])
	}
	if !strings.Contains(lines[1], "2025-09-10") {
		t.Errorf("expected ISO date in row: %q", lines[1])
	}
}

func TestOverrideCategory(t *testing.T) {
	txStore := newMockTxStore()
	txStore.inserted = []domain.Transaction{storedTx("1", "", -10)}
	svc := newTransactionsService(txStore, defaultCatStore())

	tx, err := svc.OverrideCategory(context.Background(), "1", "cat-transp")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.CategoryID == nil || *tx.CategoryID != "cat-transp" {
		t.Errorf("expected category cat-transp, got %v", tx.CategoryID)
	}
}

func TestOverrideCategory_UnknownCategory(t *testing.T) {
	txStore := newMockTxStore()
	txStore.inserted = []domain.Transaction{storedTx("1", "", -10)}
	svc := newTransactionsService(txStore, defaultCatStore())

	_, err := svc.OverrideCategory(context.Background(), "1", "cat-missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverrideCategory_ClearsWhenEmpty(t *testing.T) {
	txStore := newMockTxStore()
	catID := "cat-alim"
	cleared := storedTx("1", "Alimentação", -10)
	cleared.CategoryID = &catID
	txStore.inserted = []domain.Transaction{cleared}
	svc := newTransactionsService(txStore, defaultCatStore())

	tx, err := svc.OverrideCategory(context.Background(), "1", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.CategoryID != nil {
		t.Errorf("expected cleared category, got %v", *tx.CategoryID)
	}
}
