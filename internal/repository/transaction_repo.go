package repository

import (
	"context"

	"ledgerpay/internal/domain"
)

// TransactionRepository defines the interface for the transaction log.
// The log is append-only except for the single reversed-flag flip.
type TransactionRepository interface {
	// AppendTransaction adds a new transaction row and assigns its ID.
	AppendTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionByID retrieves a transaction row by its ID.
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transaction, error)
	// GetTransferLegs retrieves both rows of a transfer by the shared transfer ID.
	GetTransferLegs(ctx context.Context, q DBExecutor, transferID string) ([]domain.Transaction, error)
	// MarkReversed flips the reversed flag of a single row. Returns the
	// number of rows flipped: zero means the row was already reversed
	// (or does not exist).
	MarkReversed(ctx context.Context, q DBExecutor, id int64) (int64, error)
	// MarkTransferReversed flips the reversed flag of both legs of a
	// transfer in one statement. Returns the number of rows flipped.
	MarkTransferReversed(ctx context.Context, q DBExecutor, transferID string) (int64, error)
	// GetTransactionsByAccountID retrieves paginated transaction history
	// for an account together with the total count.
	GetTransactionsByAccountID(ctx context.Context, q DBExecutor, accountID int64, limit, offset int) ([]domain.Transaction, int64, error)
}
