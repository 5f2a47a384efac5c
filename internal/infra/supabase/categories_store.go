package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/lfarias/meubolso/internal/domain"
)

// ============================================================
// CategoryStore implementation — categories via PostgREST
// ============================================================

// ListCategories returns every category ordered by name.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	var categories []domain.Category
	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "categories?order=name.asc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			categories = []domain.Category{}
			return nil
		}
		if err := json.Unmarshal(body, &categories); err != nil {
			return fmt.Errorf("decode categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	return categories, nil
}

// CreateCategory stores a new category.
func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	data := map[string]any{
		"id":    uuid.New().String(),
		"name":  cat.Name,
		"color": cat.Color,
	}

	var created *domain.Category
	err := c.execute(ctx, func() error {
		body, err := c.doPost(ctx, "categories", data)
		if err != nil {
			return err
		}
		var rows []domain.Category
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode categories: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("insert returned no rows")
		}
		created = &rows[0]
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	return created, nil
}

// UpdateCategory renames or recolors a category.
func (c *Client) UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	updates := map[string]any{"name": cat.Name}
	if cat.Color != "" {
		updates["color"] = cat.Color
	}

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("categories?id=eq.%s", url.QueryEscape(cat.ID))
		return c.doPatch(ctx, path, updates)
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	return cat, nil
}

// DeleteCategory removes a category. Stored transactions keep a null
// category_id via the table's ON DELETE SET NULL.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCategory")
	defer span.End()

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("categories?id=eq.%s", url.QueryEscape(id))
		return c.doDelete(ctx, path)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/categories", Err: err}
	}
	return nil
}
