package repository

import (
	"context"

	"ledgerpay/internal/domain"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount adds a new account to the database using the provided DBExecutor.
	// Returns util.ErrDuplicateEmail when the email is already registered.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account by its ID using the provided DBExecutor.
	GetAccountByID(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetAccountByIDForUpdate retrieves an account and takes a row lock on it.
	// Must only be called inside a database transaction.
	GetAccountByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetAccountByEmail retrieves an account by its email using the provided DBExecutor.
	GetAccountByEmail(ctx context.Context, q DBExecutor, email string) (*domain.Account, error)
	// ApplyBalanceDelta adds delta (which may be negative) to the account's
	// balance. Must only be called inside a ledger operation's transaction.
	ApplyBalanceDelta(ctx context.Context, q DBExecutor, accountID int64, delta decimal.Decimal) error
	// BumpTokenVersion increments the account's token version, invalidating
	// every token issued before the bump.
	BumpTokenVersion(ctx context.Context, q DBExecutor, accountID int64) error
}
