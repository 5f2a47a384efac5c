package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lfarias/meubolso/internal/category"
	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/infra/cache"
	"github.com/lfarias/meubolso/internal/infra/observability"
	"github.com/lfarias/meubolso/internal/service"
)

// ============================================================
// Mocks
// ============================================================

type mockTxStore struct {
	existing   map[string]bool
	inserted   []domain.Transaction
	listResult []domain.Transaction
	existsErr  error
	insertErr  map[string]error
}

func newMockTxStore() *mockTxStore {
	return &mockTxStore{
		existing:  make(map[string]bool),
		insertErr: make(map[string]error),
	}
}

func (m *mockTxStore) ExistsByFitID(ctx context.Context, fitID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.existing[fitID] {
		return true, nil
	}
	for _, tx := range m.inserted {
		if tx.FitID == fitID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTxStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := m.insertErr[tx.FitID]; err != nil {
		return nil, err
	}
	stored := *tx
	stored.ID = "id-" + tx.FitID
	m.inserted = append(m.inserted, stored)
	return &stored, nil
}

func (m *mockTxStore) ListTransactions(ctx context.Context, filter *domain.TransactionFilter) ([]domain.Transaction, error) {
	return m.listResult, nil
}

func (m *mockTxStore) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	for i := range m.inserted {
		if m.inserted[i].ID == id {
			return &m.inserted[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
}

func (m *mockTxStore) UpdateTransactionCategory(ctx context.Context, id string, categoryID *string) (*domain.Transaction, error) {
	tx, err := m.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	tx.CategoryID = categoryID
	return tx, nil
}

type mockCatStore struct {
	categories []domain.Category
	listCalls  int
}

func (m *mockCatStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	m.listCalls++
	return m.categories, nil
}

func (m *mockCatStore) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	m.categories = append(m.categories, *cat)
	return cat, nil
}

func (m *mockCatStore) UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	return cat, nil
}

func (m *mockCatStore) DeleteCategory(ctx context.Context, id string) error {
	return nil
}

func defaultCatStore() *mockCatStore {
	return &mockCatStore{categories: []domain.Category{
		{ID: "cat-alim", Name: "Alimentação"},
		{ID: "cat-transp", Name: "Transporte"},
		{ID: "cat-sal", Name: "Salário"},
	}}
}

func newIngestService(txStore *mockTxStore, catStore *mockCatStore) *service.IngestService {
	return service.NewIngestService(
		txStore,
		catStore,
		category.NewEngine(category.DefaultRules()),
		cache.New[map[string]string](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func parsedStatement(txs ...domain.ParsedTransaction) *domain.ParsedStatement {
	return &domain.ParsedStatement{
		AccountID:    "12345-6",
		Balance:      decimal.RequireFromString("1000.00"),
		BalanceDate:  time.Date(2025, 9, 30, 0, 0, 0, 0, time.Local),
		Transactions: txs,
	}
}

func parsedTx(fitID, description, amount string) domain.ParsedTransaction {
	amt := decimal.RequireFromString(amount)
	kind := "credit"
	if amt.IsNegative() {
		kind = "debit"
	}
	return domain.ParsedTransaction{
		FitID:       fitID,
		Date:        time.Date(2025, 9, 5, 0, 0, 0, 0, time.Local),
		Amount:      amt,
		Description: description,
		Kind:        kind,
	}
}

// ============================================================
// Tests
// ============================================================

func TestIngest_InsertsAndCategorizes(t *testing.T) {
	txStore := newMockTxStore()
	svc := newIngestService(txStore, defaultCatStore())

	stmt := parsedStatement(
		parsedTx("FIT-001", "PAG IFOOD RESTAURANTE", "-42.50"),
		parsedTx("FIT-002", "PIX JOAO DA SILVA", "-10.00"),
	)

	report, err := svc.Ingest(context.Background(), stmt)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.InsertedCount != 2 || report.SkippedCount != 0 || report.FailedCount != 0 {
		t.Fatalf("unexpected counts: inserted=%d skipped=%d failed=%d",
			report.InsertedCount, report.SkippedCount, report.FailedCount)
	}
	if report.AccountID != "12345-6" {
		t.Errorf("expected account 12345-6, got %s", report.AccountID)
	}
	if report.TotalTransactions != 2 {
		t.Errorf("expected total 2, got %d", report.TotalTransactions)
	}

	// First transaction matches the food rule.
	first := txStore.inserted[0]
	if first.CategoryID == nil || *first.CategoryID != "cat-alim" {
		t.Errorf("expected category cat-alim, got %v", first.CategoryID)
	}
	// Second matches no rule; "Outros" has no stored category.
	if txStore.inserted[1].CategoryID != nil {
		t.Errorf("expected nil category, got %v", *txStore.inserted[1].CategoryID)
	}
}

func TestIngest_DerivesStoredTypeFromKind(t *testing.T) {
	txStore := newMockTxStore()
	svc := newIngestService(txStore, defaultCatStore())

	tagged := func(fitID, kind, amount string) domain.ParsedTransaction {
		tx := parsedTx(fitID, "COMPRA "+fitID, amount)
		tx.Kind = kind
		return tx
	}

	stmt := parsedStatement(
		tagged("KIND-001", "payment", "-20.00"),
		tagged("KIND-002", "dep", "250.00"),
		tagged("KIND-003", "other", "-7.50"),
		tagged("KIND-004", "other", "7.50"),
	)

	if _, err := svc.Ingest(context.Background(), stmt); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(txStore.inserted) != 4 {
		t.Fatalf("expected 4 inserts, got %d", len(txStore.inserted))
	}

	// Directional kinds decide the stored view; "other" follows the
	// amount sign.
	want := []string{"debit", "credit", "debit", "credit"}
	for i, w := range want {
		if got := txStore.inserted[i].Type; got != w {
			t.Errorf("transaction %d: expected stored type %s, got %s", i, w, got)
		}
	}
}

func TestIngest_SkipsStoredFitIDs(t *testing.T) {
	txStore := newMockTxStore()
	txStore.existing["FIT-001"] = true
	txStore.existing["FIT-002"] = true
	svc := newIngestService(txStore, defaultCatStore())

	stmt := parsedStatement(
		parsedTx("FIT-001", "PAG IFOOD", "-42.50"),
		parsedTx("FIT-002", "SALARIO", "1500.00"),
	)

	report, err := svc.Ingest(context.Background(), stmt)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.InsertedCount != 0 || report.SkippedCount != 2 {
		t.Errorf("unexpected counts: inserted=%d skipped=%d", report.InsertedCount, report.SkippedCount)
	}
	if len(txStore.inserted) != 0 {
		t.Errorf("expected no inserts, got %d", len(txStore.inserted))
	}
}

// A FITID repeated inside one statement is inserted once and skipped
// on the second occurrence because processing is sequential.
func TestIngest_DuplicateWithinStatement(t *testing.T) {
	txStore := newMockTxStore()
	svc := newIngestService(txStore, defaultCatStore())

	stmt := parsedStatement(
		parsedTx("FIT-DUP", "UBER TRIP", "-25.00"),
		parsedTx("FIT-DUP", "UBER TRIP", "-25.00"),
	)

	report, err := svc.Ingest(context.Background(), stmt)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.InsertedCount != 1 || report.SkippedCount != 1 {
		t.Errorf("unexpected counts: inserted=%d skipped=%d", report.InsertedCount, report.SkippedCount)
	}
}

func TestIngest_InsertFailureContinues(t *testing.T) {
	txStore := newMockTxStore()
	txStore.insertErr["FIT-BAD"] = errors.New("insert boom")
	svc := newIngestService(txStore, defaultCatStore())

	stmt := parsedStatement(
		parsedTx("FIT-BAD", "POSTO SHELL", "-80.00"),
		parsedTx("FIT-OK", "SALARIO", "1500.00"),
	)

	report, err := svc.Ingest(context.Background(), stmt)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.FailedCount != 1 || report.InsertedCount != 1 {
		t.Errorf("unexpected counts: inserted=%d failed=%d", report.InsertedCount, report.FailedCount)
	}
}

func TestIngest_EmptyFitIDIgnored(t *testing.T) {
	txStore := newMockTxStore()
	svc := newIngestService(txStore, defaultCatStore())

	stmt := parsedStatement(
		parsedTx("", "SEM FITID", "-5.00"),
		parsedTx("FIT-001", "PADARIA", "-7.50"),
	)

	report, err := svc.Ingest(context.Background(), stmt)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.InsertedCount != 1 || report.SkippedCount != 0 || report.FailedCount != 0 {
		t.Errorf("unexpected counts: inserted=%d skipped=%d failed=%d",
			report.InsertedCount, report.SkippedCount, report.FailedCount)
	}
}

func TestIngest_CategoryCacheReused(t *testing.T) {
	txStore := newMockTxStore()
	catStore := defaultCatStore()
	svc := newIngestService(txStore, catStore)

	stmt := parsedStatement(parsedTx("FIT-001", "PADARIA", "-7.50"))
	if _, err := svc.Ingest(context.Background(), stmt); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	stmt2 := parsedStatement(parsedTx("FIT-002", "UBER", "-20.00"))
	if _, err := svc.Ingest(context.Background(), stmt2); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	if catStore.listCalls != 1 {
		t.Errorf("expected 1 category fetch, got %d", catStore.listCalls)
	}
}

func TestIngestFile_MalformedInput(t *testing.T) {
	svc := newIngestService(newMockTxStore(), defaultCatStore())

	_, err := svc.IngestFile(context.Background(), "extrato.ofx", []byte("definitely not ofx"))
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
	var malformed *domain.ErrMalformedStatement
	if !errors.As(err, &malformed) {
		t.Errorf("expected ErrMalformedStatement, got %T", err)
	}
}

func TestIngestFile_ReingestIsIdempotent(t *testing.T) {
	raw := []byte(`<OFX>
<BANKACCTFROM><ACCTID>555-1</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250903
<TRNAMT>-12.90
<FITID>IDEM-001
<MEMO>PADARIA DO ZE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250915
<TRNAMT>300.00
<FITID>IDEM-002
<MEMO>SALARIO
</STMTTRN>
</BANKTRANLIST>
</OFX>`)

	txStore := newMockTxStore()
	svc := newIngestService(txStore, defaultCatStore())

	first, err := svc.IngestFile(context.Background(), "extrato.ofx", raw)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if first.InsertedCount != 2 || first.SkippedCount != 0 {
		t.Fatalf("first run: inserted=%d skipped=%d", first.InsertedCount, first.SkippedCount)
	}

	second, err := svc.IngestFile(context.Background(), "extrato.ofx", raw)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if second.InsertedCount != 0 || second.SkippedCount != 2 {
		t.Errorf("second run: inserted=%d skipped=%d", second.InsertedCount, second.SkippedCount)
	}
}
