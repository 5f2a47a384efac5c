// Package domain defines the core business entities for meubolso.
// These models are independent of external services and represent the
// canonical data structures used throughout the backend.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Parsed statements (output of the OFX parser)
// ============================================================

// ParsedTransaction is a single transaction extracted from an OFX file,
// before normalization and persistence.
type ParsedTransaction struct {
	FitID       string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Kind        string // statement-supplied type tag, lowercased; "other" when absent
}

// ParsedStatement is the full result of parsing one OFX file.
type ParsedStatement struct {
	AccountID    string
	Balance      decimal.Decimal
	BalanceDate  time.Time
	Transactions []ParsedTransaction
}

// ============================================================
// Stored transactions
// ============================================================

// Transaction represents a persisted financial transaction.
type Transaction struct {
	ID          string    `json:"id"`
	FitID       string    `json:"fit_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"` // credit, debit
	CategoryID  *string   `json:"category_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type       string
	CategoryID string
	From       string // YYYY-MM-DD
	To         string // YYYY-MM-DD
	Limit      int
	Offset     int
}

// Category represents a transaction category.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ============================================================
// Statement import
// ============================================================

// ImportReport summarizes one statement ingestion run.
type ImportReport struct {
	ImportID          string    `json:"import_id"`
	AccountID         string    `json:"account_id"`
	Balance           float64   `json:"balance"`
	BalanceDate       time.Time `json:"balance_date"`
	TotalTransactions int       `json:"total_transactions"`
	InsertedCount     int       `json:"inserted_count"`
	SkippedCount      int       `json:"skipped_count"`
	FailedCount       int       `json:"failed_count"`
}

// ImportMetrics is returned by GET /v1/metrics/imports.
type ImportMetrics struct {
	StatementsParsed   map[string]int64 `json:"statementsParsed"` // by strategy
	TransactionsByFate map[string]int64 `json:"transactions"`     // inserted, skipped, failed
}

// ============================================================
// Analytics
// ============================================================

// TransactionSummary provides aggregated transaction data.
type TransactionSummary struct {
	TotalCredits  float64         `json:"totalCredits"`
	TotalDebits   float64         `json:"totalDebits"`
	Balance       float64         `json:"balance"`
	Count         int             `json:"count"`
	Period        *SummaryPeriod  `json:"period,omitempty"`
	TopCategories []CategoryTotal `json:"top_categories,omitempty"`
}

// SummaryPeriod represents the date range for a summary.
type SummaryPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CategoryTotal represents spending per category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// AnalyticsSummary is returned by GET /v1/analytics/summary.
type AnalyticsSummary struct {
	Period        *SummaryPeriod  `json:"period"`
	TotalIncome   float64         `json:"totalIncome"`
	TotalExpenses float64         `json:"totalExpenses"`
	NetCashFlow   float64         `json:"netCashFlow"`
	TopCategories []CategoryTotal `json:"topCategories"`
	MonthlyTrend  []MonthlyTrend  `json:"monthlyTrend"`
}

// MonthlyTrend shows monthly income/expenses.
type MonthlyTrend struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// ============================================================
// Health & metrics API responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// ============================================================
// Generic API response wrappers
// ============================================================

// ListResponse wraps paginated list results.
type ListResponse[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ============================================================
// Auth — request / response types
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
type RegisterResponse struct {
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Customer represents a registered user of the app.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthCredential represents stored credentials in the database.
type AuthCredential struct {
	ID             string     `json:"id"`
	CustomerID     string     `json:"customer_id"`
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// AuthRefreshToken represents a refresh token stored in the database.
type AuthRefreshToken struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	TokenHash  string    `json:"token_hash"`
	ExpiresAt  time.Time `json:"expires_at"`
	Revoked    bool      `json:"revoked"`
}
