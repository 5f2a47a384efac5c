package integration_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lfarias/meubolso/internal/category"
	"github.com/lfarias/meubolso/internal/domain"
	"github.com/lfarias/meubolso/internal/handler"
	"github.com/lfarias/meubolso/internal/infra/cache"
	"github.com/lfarias/meubolso/internal/infra/observability"
	"github.com/lfarias/meubolso/internal/infra/resilience"
	"github.com/lfarias/meubolso/internal/infra/supabase"
	"github.com/lfarias/meubolso/internal/service"
)

const ofxFixture = `<OFX>
<BANKMSGSRSV1><STMTTRNRS><STMTRS>
<BANKACCTFROM><ACCTID>12345-6</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250905
<TRNAMT>-42.50
<FITID>INT-001
<MEMO>PAG  IFOOD   RESTAURANTE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250910
<TRNAMT>1500.00
<FITID>INT-002
<MEMO>SALARIO SETEMBRO
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL><BALAMT>1457.50<DTASOF>20250930</LEDGERBAL>
</STMTRS></STMTTRNRS></BANKMSGSRSV1>
</OFX>
`

// postgrestDouble fakes the PostgREST surface the Supabase store uses:
// the transactions and categories tables.
type postgrestDouble struct {
	mu   sync.Mutex
	rows []map[string]any
}

func (d *postgrestDouble) handler() http.HandlerFunc {
	categories := []map[string]any{
		{"id": "cat-alim", "name": "Alimentação"},
		{"id": "cat-transp", "name": "Transporte"},
		{"id": "cat-sal", "name": "Salário"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/rest/v1/categories" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(categories)

		case r.URL.Path == "/rest/v1/transactions" && r.Method == http.MethodGet:
			d.mu.Lock()
			defer d.mu.Unlock()

			if fitFilter := r.URL.Query().Get("fit_id"); fitFilter != "" {
				fitID := strings.TrimPrefix(fitFilter, "eq.")
				matches := []map[string]any{}
				for _, row := range d.rows {
					if row["fit_id"] == fitID {
						matches = append(matches, row)
					}
				}
				json.NewEncoder(w).Encode(matches)
				return
			}
			json.NewEncoder(w).Encode(d.rows)

		case r.URL.Path == "/rest/v1/transactions" && r.Method == http.MethodPost:
			var row map[string]any
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			row["created_at"] = time.Now().Format(time.RFC3339)

			d.mu.Lock()
			d.rows = append(d.rows, row)
			d.mu.Unlock()

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestRouter(t *testing.T, supabaseURL string) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("supabase-test")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	client := supabase.NewClient(httpClient, supabaseURL, "anon", "service", cb, cfg, logger)
	catCache := cache.New[map[string]string](time.Minute)
	engine := category.NewEngine(category.DefaultRules())

	ingestSvc := service.NewIngestService(client, client, engine, catCache, metrics, logger)
	txSvc := service.NewTransactionsService(client, client, catCache, metrics, logger)
	catSvc := service.NewCategoriesService(client, catCache, logger)
	analyticsSvc := service.NewAnalyticsService(client, client, logger)

	return handler.NewRouter(ingestSvc, txSvc, catSvc, analyticsSvc, nil, metrics, 1<<20, logger)
}

func uploadFixture(t *testing.T, router http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "extrato.ofx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(ofxFixture))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/statements/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	return rec
}

// TestIntegration_UploadFlow uploads the same statement twice and
// verifies the second run skips every transaction.
func TestIntegration_UploadFlow(t *testing.T) {
	double := &postgrestDouble{}
	server := httptest.NewServer(double.handler())
	defer server.Close()

	router := newTestRouter(t, server.URL)

	// --- First upload: everything inserted ---
	rec := uploadFixture(t, router)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var first domain.ImportReport
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if first.AccountID != "12345-6" {
		t.Errorf("expected account 12345-6, got %s", first.AccountID)
	}
	if first.TotalTransactions != 2 || first.InsertedCount != 2 || first.SkippedCount != 0 {
		t.Fatalf("first upload: total=%d inserted=%d skipped=%d",
			first.TotalTransactions, first.InsertedCount, first.SkippedCount)
	}

	// --- Second upload: everything skipped ---
	rec = uploadFixture(t, router)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var second domain.ImportReport
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if second.InsertedCount != 0 || second.SkippedCount != 2 {
		t.Errorf("second upload: inserted=%d skipped=%d", second.InsertedCount, second.SkippedCount)
	}

	// --- Stored rows were normalized and categorized ---
	double.mu.Lock()
	if len(double.rows) != 2 {
		t.Fatalf("expected 2 stored rows, got %d", len(double.rows))
	}
	if desc := double.rows[0]["description"]; desc != "PAG IFOOD RESTAURANTE" {
		t.Errorf("expected collapsed description, got %q", desc)
	}
	if cat := double.rows[0]["category_id"]; cat != "cat-alim" {
		t.Errorf("expected category cat-alim, got %v", cat)
	}
	if cat := double.rows[1]["category_id"]; cat != "cat-sal" {
		t.Errorf("expected category cat-sal, got %v", cat)
	}
	double.mu.Unlock()

	// --- Listing returns the stored transactions ---
	req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var listResp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Transactions) != 2 {
		t.Errorf("expected 2 transactions, got %d", len(listResp.Transactions))
	}
}

func TestIntegration_UploadMalformedFile(t *testing.T) {
	double := &postgrestDouble{}
	server := httptest.NewServer(double.handler())
	defer server.Close()

	router := newTestRouter(t, server.URL)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "extrato.ofx")
	part.Write([]byte("not an ofx file"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/statements/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if len(double.rows) != 0 {
		t.Errorf("expected no stored rows, got %d", len(double.rows))
	}
}

func TestIntegration_Categories(t *testing.T) {
	double := &postgrestDouble{}
	server := httptest.NewServer(double.handler())
	defer server.Close()

	router := newTestRouter(t, server.URL)

	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Categories) != 3 {
		t.Errorf("expected 3 categories, got %d", len(resp.Categories))
	}
}
