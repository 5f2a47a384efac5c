// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/lfarias/meubolso/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// TransactionStore defines all data operations on stored transactions.
// Implemented by the Supabase adapter (or any other persistence layer).
type TransactionStore interface {
	ExistsByFitID(ctx context.Context, fitID string) (bool, error)
	InsertTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter *domain.TransactionFilter) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransactionCategory(ctx context.Context, id string, categoryID *string) (*domain.Transaction, error)
}

// CategoryStore defines data operations on categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	// Customer lookup
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// Registration
	CreateCustomer(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.Customer, error)

	// Credentials
	GetCredentials(ctx context.Context, customerID string) (*domain.AuthCredential, error)
	UpdateCredentials(ctx context.Context, customerID string, updates map[string]any) error

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, customerID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, customerID string) error
}
