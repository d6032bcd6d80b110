package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Account represents a user of the ledger together with their balance.
// The balance is the sum of all non-reversed transaction effects applied
// to this account and is only ever mutated inside a ledger operation.
type Account struct {
	ID           int64           `db:"id" json:"id"`                     // Primary key, BIGSERIAL in DB
	Name         string          `db:"name" json:"name"`                 // Display name
	Email        string          `db:"email" json:"email"`               // Unique, used for transfer addressing
	PasswordHash string          `db:"password_hash" json:"-"`           // bcrypt hash, never serialized
	Balance      decimal.Decimal `db:"balance" json:"balance"`           // Current balance, NUMERIC(20, 4) in DB
	TokenVersion int             `db:"token_version" json:"-"`           // Bumped on logout to invalidate issued tokens
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`     // Timestamp of creation
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`     // Timestamp of last update
}

// NewAccount creates a new Account instance with a zero balance.
func NewAccount(name, email, passwordHash string) *Account {
	now := time.Now().UTC()
	return &Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      decimal.Zero,
		TokenVersion: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
