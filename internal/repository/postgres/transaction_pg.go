package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ledgerpay/internal/domain"
	"ledgerpay/internal/repository"
	"ledgerpay/internal/util"

	"github.com/jmoiron/sqlx"
)

const transactionColumns = `id, account_id, kind, amount, related_account_id, transfer_id, reversed, created_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
	// Methods receive a DBExecutor directly, so no connection is held here.
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// AppendTransaction inserts a new transaction row using the provided DBExecutor.
func (r *TransactionRepository) AppendTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (account_id, kind, amount, related_account_id, transfer_id, reversed, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.AccountID,
		transaction.Kind,
		transaction.Amount,
		transaction.RelatedAccountID,
		transaction.TransferID,
		transaction.Reversed,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// GetTransactionByID retrieves a transaction row by its ID using the provided DBExecutor.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	err := q.GetContext(ctx, &transaction, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID %d: %w", id, err)
	}
	return &transaction, nil
}

// GetTransferLegs retrieves both rows of a transfer by the shared transfer ID.
func (r *TransactionRepository) GetTransferLegs(ctx context.Context, q repository.DBExecutor, transferID string) ([]domain.Transaction, error) {
	legs := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transfer_id = $1 ORDER BY id`
	err := q.SelectContext(ctx, &legs, query, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get legs for transfer %s: %w", transferID, err)
	}
	return legs, nil
}

// MarkReversed flips the reversed flag of a single row. The WHERE clause
// on the flag makes the flip the concurrency guard: a second reverser
// blocks on the row lock, re-evaluates the predicate and flips nothing.
func (r *TransactionRepository) MarkReversed(ctx context.Context, q repository.DBExecutor, id int64) (int64, error) {
	query := `UPDATE transactions SET reversed = true WHERE id = $1 AND reversed = false`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		if classified := classifyError(err); classified != err {
			return 0, classified
		}
		return 0, fmt.Errorf("failed to mark transaction %d reversed: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after marking transaction %d reversed: %w", id, err)
	}
	return rowsAffected, nil
}

// MarkTransferReversed flips the reversed flag of both legs of a transfer
// in one statement.
func (r *TransactionRepository) MarkTransferReversed(ctx context.Context, q repository.DBExecutor, transferID string) (int64, error) {
	query := `UPDATE transactions SET reversed = true WHERE transfer_id = $1 AND reversed = false`
	result, err := q.ExecContext(ctx, query, transferID)
	if err != nil {
		if classified := classifyError(err); classified != err {
			return 0, classified
		}
		return 0, fmt.Errorf("failed to mark transfer %s reversed: %w", transferID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after marking transfer %s reversed: %w", transferID, err)
	}
	return rowsAffected, nil
}

// GetTransactionsByAccountID retrieves a paginated list of transactions for
// an account. It performs two queries: one for the data and one for the
// total count.
func (r *TransactionRepository) GetTransactionsByAccountID(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for account %d: %w", accountID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE account_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for account %d: %w", accountID, err)
	}

	return transactions, totalCount, nil
}
