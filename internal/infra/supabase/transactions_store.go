package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lfarias/meubolso/internal/domain"
)

// ============================================================
// TransactionStore implementation — transactions via PostgREST
// ============================================================

// supabaseTransaction maps transactions table columns.
type supabaseTransaction struct {
	ID          string  `json:"id"`
	FitID       string  `json:"fit_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	CategoryID  *string `json:"category_id"`
	CreatedAt   string  `json:"created_at"`
	Category    *struct {
		Name string `json:"name"`
	} `json:"category,omitempty"`
}

func (r *supabaseTransaction) toDomain() domain.Transaction {
	tx := domain.Transaction{
		ID:          r.ID,
		FitID:       r.FitID,
		Date:        parseDate(r.Date),
		Description: r.Description,
		Amount:      r.Amount,
		Type:        r.Type,
		CategoryID:  r.CategoryID,
		CreatedAt:   parseDate(r.CreatedAt),
	}
	if r.Category != nil {
		tx.Category = r.Category.Name
	}
	return tx
}

// parseDate accepts both RFC3339 timestamps and plain dates, which is
// what PostgREST emits depending on the column type.
func parseDate(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// ExistsByFitID reports whether a transaction with the given FITID is
// already stored.
func (c *Client) ExistsByFitID(ctx context.Context, fitID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ExistsByFitID")
	defer span.End()

	var exists bool
	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?fit_id=eq.%s&select=id&limit=1", url.QueryEscape(fitID))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		exists = body != nil && string(body) != "[]"
		return nil
	})
	if err != nil {
		return false, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return exists, nil
}

// InsertTransaction stores a new transaction and returns the stored row.
func (c *Client) InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.fit_id", tx.FitID))

	data := map[string]any{
		"id":          uuid.New().String(),
		"fit_id":      tx.FitID,
		"date":        tx.Date.Format("2006-01-02"),
		"description": tx.Description,
		"amount":      tx.Amount,
		"type":        tx.Type,
	}
	if tx.CategoryID != nil {
		data["category_id"] = *tx.CategoryID
	}

	var stored *domain.Transaction
	err := c.execute(ctx, func() error {
		body, err := c.doPost(ctx, "transactions", data)
		if err != nil {
			return err
		}
		var rows []supabaseTransaction
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("insert returned no rows")
		}
		row := rows[0].toDomain()
		stored = &row
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return stored, nil
}

// ListTransactions returns transactions matching the filter, most
// recent first.
func (c *Client) ListTransactions(ctx context.Context, filter *domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	var transactions []domain.Transaction
	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, transactionsPath(filter))
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			transactions = []domain.Transaction{}
			return nil
		}

		var rows []supabaseTransaction
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
		transactions = make([]domain.Transaction, 0, len(rows))
		for i := range rows {
			transactions = append(transactions, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return transactions, nil
}

func transactionsPath(filter *domain.TransactionFilter) string {
	parts := []string{"select=*,category:categories(name)", "order=date.desc"}
	if filter != nil {
		if filter.Type != "" {
			parts = append(parts, "type=eq."+url.QueryEscape(filter.Type))
		}
		if filter.CategoryID != "" {
			parts = append(parts, "category_id=eq."+url.QueryEscape(filter.CategoryID))
		}
		if filter.From != "" {
			parts = append(parts, "date=gte."+filter.From)
		}
		if filter.To != "" {
			parts = append(parts, "date=lte."+filter.To)
		}
		if filter.Limit > 0 {
			parts = append(parts, fmt.Sprintf("limit=%d", filter.Limit))
		}
		if filter.Offset > 0 {
			parts = append(parts, fmt.Sprintf("offset=%d", filter.Offset))
		}
	}
	return "transactions?" + strings.Join(parts, "&")
}

// GetTransaction fetches a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	var tx *domain.Transaction
	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?id=eq.%s&select=*,category:categories(name)&limit=1", url.QueryEscape(id))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "transaction", ID: id}
		}

		var rows []supabaseTransaction
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "transaction", ID: id}
		}
		row := rows[0].toDomain()
		tx = &row
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return tx, nil
}

// UpdateTransactionCategory overrides the category of a stored
// transaction. A nil categoryID clears it.
func (c *Client) UpdateTransactionCategory(ctx context.Context, id string, categoryID *string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransactionCategory")
	defer span.End()

	updates := map[string]any{"category_id": nil}
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?id=eq.%s", url.QueryEscape(id))
		return c.doPatch(ctx, path, updates)
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return c.GetTransaction(ctx, id)
}
