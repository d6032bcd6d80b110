package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ledgerpay/internal/domain"
	"ledgerpay/internal/repository"
	"ledgerpay/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, name, email, password_hash, balance, token_version, created_at, updated_at`

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct {
	// Methods receive a DBExecutor directly, so no connection is held here.
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account using the provided DBExecutor.
// Emails are stored lowercased so uniqueness and transfer addressing
// are case-insensitive.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (name, email, password_hash, balance, token_version, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	account.Email = strings.ToLower(account.Email)
	err := q.QueryRowContext(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Balance,
		account.TokenVersion,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		if classified := classifyError(err); classified != err {
			return classified
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByID retrieves an account by its ID using the provided DBExecutor.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	err := q.GetContext(ctx, &account, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID %d: %w", id, err)
	}
	return &account, nil
}

// GetAccountByIDForUpdate retrieves an account and takes a row lock on it.
// Callers lock accounts in ascending ID order to avoid deadlocks when an
// operation touches two accounts.
func (r *AccountRepository) GetAccountByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &account, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		if classified := classifyError(err); classified != err {
			return nil, classified
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by its email using the provided DBExecutor.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	err := q.GetContext(ctx, &account, query, strings.ToLower(email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account by email '%s': %w", email, err)
	}
	return &account, nil
}

// ApplyBalanceDelta adds delta to the account's balance using the provided DBExecutor.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, q repository.DBExecutor, accountID int64, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), accountID)
	if err != nil {
		if classified := classifyError(err); classified != err {
			return classified
		}
		return fmt.Errorf("failed to update balance for account %d: %w", accountID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating balance for account %d: %w", accountID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update for account %d affected no rows: %w", accountID, util.ErrNotFound)
	}
	return nil
}

// BumpTokenVersion increments the account's token version using the provided DBExecutor.
func (r *AccountRepository) BumpTokenVersion(ctx context.Context, q repository.DBExecutor, accountID int64) error {
	query := `UPDATE accounts SET token_version = token_version + 1, updated_at = $1 WHERE id = $2`
	result, err := q.ExecContext(ctx, query, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("failed to bump token version for account %d: %w", accountID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after bumping token version for account %d: %w", accountID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
