package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionKind defines the kind of a ledger transaction row.
type TransactionKind string

const (
	TransactionKindDeposit     TransactionKind = "deposit"
	TransactionKindTransferOut TransactionKind = "transfer_out"
	TransactionKindTransferIn  TransactionKind = "transfer_in"
)

// Transaction represents one row of the ledger. A deposit is a single
// row; a transfer is exactly two rows (the debit leg on the sender and
// the credit leg on the recipient) sharing one TransferID, created in
// the same database transaction and reversed together.
type Transaction struct {
	ID               int64           `db:"id" json:"id"`                                 // Primary key, BIGSERIAL in DB
	AccountID        int64           `db:"account_id" json:"account_id"`                 // Account whose balance this row affects
	Kind             TransactionKind `db:"kind" json:"kind"`                             // deposit, transfer_out or transfer_in
	Amount           decimal.Decimal `db:"amount" json:"amount"`                         // Magnitude of the effect, always positive
	RelatedAccountID *int64          `db:"related_account_id" json:"related_account_id"` // Counterparty, set only on transfer legs
	TransferID       *string         `db:"transfer_id" json:"transfer_id"`               // UUID shared by both legs of one transfer
	Reversed         bool            `db:"reversed" json:"reversed"`                     // Flips false -> true exactly once
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`                 // Timestamp of record creation
}

// IsTransferLeg reports whether the row is one side of a transfer.
func (t *Transaction) IsTransferLeg() bool {
	return t.TransferID != nil
}

// NewDeposit creates the single row recorded for a deposit.
func NewDeposit(accountID int64, amount decimal.Decimal) *Transaction {
	return &Transaction{
		AccountID: accountID,
		Kind:      TransactionKindDeposit,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTransferLegs creates the linked debit and credit rows for a transfer.
func NewTransferLegs(transferID string, senderID, recipientID int64, amount decimal.Decimal) (debit, credit *Transaction) {
	now := time.Now().UTC()
	debit = &Transaction{
		AccountID:        senderID,
		Kind:             TransactionKindTransferOut,
		Amount:           amount,
		RelatedAccountID: &recipientID,
		TransferID:       &transferID,
		CreatedAt:        now,
	}
	credit = &Transaction{
		AccountID:        recipientID,
		Kind:             TransactionKindTransferIn,
		Amount:           amount,
		RelatedAccountID: &senderID,
		TransferID:       &transferID,
		CreatedAt:        now,
	}
	return debit, credit
}
