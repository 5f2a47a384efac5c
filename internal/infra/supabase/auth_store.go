package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/lfarias/meubolso/internal/domain"
)

// ============================================================
// AuthStore implementation — auth CRUD via PostgREST
// ============================================================

// --- Customer lookup ---

func (c *Client) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCustomerByID")
	defer span.End()

	path := fmt.Sprintf("customers?id=eq.%s&limit=1", url.QueryEscape(customerID))
	return c.fetchCustomer(ctx, path)
}

func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCustomerByEmail")
	defer span.End()

	path := fmt.Sprintf("customers?email=eq.%s&limit=1", url.QueryEscape(email))
	return c.fetchCustomer(ctx, path)
}

// fetchCustomer returns nil without error when no row matches, since a
// miss is not an error for auth lookups.
func (c *Client) fetchCustomer(ctx context.Context, path string) (*domain.Customer, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.Customer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// --- Registration ---

func (c *Client) CreateCustomer(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCustomer")
	defer span.End()

	customerID := uuid.New().String()

	customerData := map[string]any{
		"id":    customerID,
		"name":  req.Name,
		"email": req.Email,
	}
	if _, err := c.doPost(ctx, "customers", customerData); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	credData := map[string]any{
		"id":              uuid.New().String(),
		"customer_id":     customerID,
		"password_hash":   passwordHash,
		"failed_attempts": 0,
	}
	if _, err := c.doPost(ctx, "auth_credentials", credData); err != nil {
		return nil, fmt.Errorf("create auth credentials: %w", err)
	}

	return &domain.Customer{
		ID:        customerID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now(),
	}, nil
}

// --- Credentials ---

func (c *Client) GetCredentials(ctx context.Context, customerID string) (*domain.AuthCredential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredentials")
	defer span.End()

	path := fmt.Sprintf("auth_credentials?customer_id=eq.%s&limit=1", url.QueryEscape(customerID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: customerID}
	}

	var rows []domain.AuthCredential
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_credentials: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: customerID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateCredentials(ctx context.Context, customerID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCredentials")
	defer span.End()

	path := fmt.Sprintf("auth_credentials?customer_id=eq.%s", url.QueryEscape(customerID))
	return c.doPatch(ctx, path, updates)
}

// --- Refresh tokens ---

func (c *Client) StoreRefreshToken(ctx context.Context, customerID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	data := map[string]any{
		"id":          uuid.New().String(),
		"customer_id": customerID,
		"token_hash":  tokenHash,
		"expires_at":  expiresAt.Format(time.RFC3339),
		"revoked":     false,
	}

	_, err := c.doPost(ctx, "auth_refresh_tokens", data)
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", tokenHash)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.AuthRefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s", tokenHash)
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, customerID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?customer_id=eq.%s&revoked=eq.false", url.QueryEscape(customerID))
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}
