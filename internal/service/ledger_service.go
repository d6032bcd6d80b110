package service

import (
	"context"
	"fmt"

	"ledgerpay/internal/domain"
	"ledgerpay/internal/repository"
	"ledgerpay/internal/util"
	"ledgerpay/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinAmount is the smallest amount accepted for a deposit or transfer.
var MinAmount = decimal.New(1, -2) // 0.01

// LedgerService defines the interface for ledger business logic. Every
// mutation executes as a single database transaction: either the balance
// updates and the transaction rows all commit, or none do.
type LedgerService interface {
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error)
	Transfer(ctx context.Context, senderID int64, recipientEmail string, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error)
	Reverse(ctx context.Context, transactionID int64) error
	GetBalance(ctx context.Context, accountID int64) (*domain.Account, error)
	GetStatement(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, int64, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// Deposit adds money to an account and records one deposit row.
func (s *ledgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	if amount.LessThan(MinAmount) {
		return nil, nil, util.ErrInvalidAmount
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	if _, err := s.accountRepo.GetAccountByIDForUpdate(ctx, txExecutor, accountID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrAccountNotFound
		}
		return nil, nil, fmt.Errorf("deposit: failed to lock account %d: %w", accountID, err)
	}

	if err := s.accountRepo.ApplyBalanceDelta(ctx, txExecutor, accountID, amount); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to update balance: %w", err)
	}

	transaction := domain.NewDeposit(accountID, amount)
	if err := s.transactionRepo.AppendTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to append transaction: %w", err)
	}

	updatedAccount, err := s.accountRepo.GetAccountByID(ctx, txExecutor, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to re-fetch account %d: %w", accountID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}

	return updatedAccount, transaction, nil
}

// Transfer moves money from the sender to the account addressed by
// recipientEmail and records the linked debit and credit legs. Both
// accounts are locked in ascending ID order so two concurrent transfers
// over the same pair cannot deadlock.
func (s *ledgerService) Transfer(ctx context.Context, senderID int64, recipientEmail string, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	if amount.LessThan(MinAmount) {
		return nil, nil, util.ErrInvalidAmount
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	recipient, err := s.accountRepo.GetAccountByEmail(ctx, txExecutor, recipientEmail)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrRecipientNotFound
		}
		return nil, nil, fmt.Errorf("transfer: failed to resolve recipient '%s': %w", recipientEmail, err)
	}
	if recipient.ID == senderID {
		return nil, nil, util.ErrSelfTransfer
	}

	sender, recipient, err := s.lockAccountPair(ctx, txExecutor, senderID, recipient.ID)
	if err != nil {
		return nil, nil, err
	}

	if sender.Balance.LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}

	if err := s.accountRepo.ApplyBalanceDelta(ctx, txExecutor, sender.ID, amount.Neg()); err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to debit sender: %w", err)
	}
	if err := s.accountRepo.ApplyBalanceDelta(ctx, txExecutor, recipient.ID, amount); err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to credit recipient: %w", err)
	}

	debit, credit := domain.NewTransferLegs(uuid.NewString(), sender.ID, recipient.ID, amount)
	if err := s.transactionRepo.AppendTransaction(ctx, txExecutor, debit); err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to append debit leg: %w", err)
	}
	if err := s.transactionRepo.AppendTransaction(ctx, txExecutor, credit); err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to append credit leg: %w", err)
	}

	updatedSender, err := s.accountRepo.GetAccountByID(ctx, txExecutor, sender.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to re-fetch sender %d: %w", sender.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return updatedSender, debit, nil
}

// Reverse undoes a transaction's balance effect and marks it reversed.
// A deposit is reversed on its own; a transfer leg is reversed together
// with its paired leg via the shared transfer ID, so a transfer can
// never end up half-reversed.
func (s *ledgerService) Reverse(ctx context.Context, transactionID int64) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("reverse: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("reverse: transaction controller does not implement DBExecutor")
	}

	transaction, err := s.transactionRepo.GetTransactionByID(ctx, txExecutor, transactionID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrTransactionNotFound
		}
		return fmt.Errorf("reverse: failed to get transaction %d: %w", transactionID, err)
	}
	if transaction.Reversed {
		return util.ErrAlreadyReversed
	}

	if transaction.IsTransferLeg() {
		err = s.reverseTransfer(ctx, txExecutor, transaction)
	} else {
		err = s.reverseDeposit(ctx, txExecutor, transaction)
	}
	if err != nil {
		return err
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("reverse: failed to commit transaction: %w", err)
	}
	return nil
}

// reverseDeposit subtracts the deposited amount back from the owning
// account. The flag flip runs first: it blocks on any concurrent
// reversal of the same row and flips nothing once that one commits.
func (s *ledgerService) reverseDeposit(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	flipped, err := s.transactionRepo.MarkReversed(ctx, q, transaction.ID)
	if err != nil {
		return fmt.Errorf("reverse: failed to mark transaction %d reversed: %w", transaction.ID, err)
	}
	if flipped == 0 {
		return util.ErrAlreadyReversed
	}

	if _, err := s.accountRepo.GetAccountByIDForUpdate(ctx, q, transaction.AccountID); err != nil {
		return fmt.Errorf("reverse: failed to lock account %d: %w", transaction.AccountID, err)
	}
	if err := s.accountRepo.ApplyBalanceDelta(ctx, q, transaction.AccountID, transaction.Amount.Neg()); err != nil {
		return fmt.Errorf("reverse: failed to update balance: %w", err)
	}
	return nil
}

// reverseTransfer restores both legs of a transfer: the sender gets the
// amount back and the recipient gives it up.
func (s *ledgerService) reverseTransfer(ctx context.Context, q repository.DBExecutor, leg *domain.Transaction) error {
	transferID := *leg.TransferID

	flipped, err := s.transactionRepo.MarkTransferReversed(ctx, q, transferID)
	if err != nil {
		return fmt.Errorf("reverse: failed to mark transfer %s reversed: %w", transferID, err)
	}
	if flipped == 0 {
		return util.ErrAlreadyReversed
	}
	if flipped != 2 {
		return fmt.Errorf("reverse: transfer %s has %d unreversed legs, expected 2", transferID, flipped)
	}

	legs, err := s.transactionRepo.GetTransferLegs(ctx, q, transferID)
	if err != nil {
		return fmt.Errorf("reverse: failed to load legs for transfer %s: %w", transferID, err)
	}

	var senderID, recipientID int64
	for i := range legs {
		switch legs[i].Kind {
		case domain.TransactionKindTransferOut:
			senderID = legs[i].AccountID
		case domain.TransactionKindTransferIn:
			recipientID = legs[i].AccountID
		}
	}
	if senderID == 0 || recipientID == 0 {
		return fmt.Errorf("reverse: transfer %s is missing a leg", transferID)
	}

	if _, _, err := s.lockAccountPair(ctx, q, senderID, recipientID); err != nil {
		return err
	}

	if err := s.accountRepo.ApplyBalanceDelta(ctx, q, senderID, leg.Amount); err != nil {
		return fmt.Errorf("reverse: failed to re-credit sender: %w", err)
	}
	if err := s.accountRepo.ApplyBalanceDelta(ctx, q, recipientID, leg.Amount.Neg()); err != nil {
		return fmt.Errorf("reverse: failed to re-debit recipient: %w", err)
	}
	return nil
}

// lockAccountPair row-locks two accounts in ascending ID order and
// returns them as (first, second) in the order the IDs were passed.
func (s *ledgerService) lockAccountPair(ctx context.Context, q repository.DBExecutor, firstID, secondID int64) (*domain.Account, *domain.Account, error) {
	lockOrder := []int64{firstID, secondID}
	if firstID > secondID {
		lockOrder[0], lockOrder[1] = secondID, firstID
	}

	locked := make(map[int64]*domain.Account, 2)
	for _, id := range lockOrder {
		account, err := s.accountRepo.GetAccountByIDForUpdate(ctx, q, id)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return nil, nil, util.ErrAccountNotFound
			}
			return nil, nil, fmt.Errorf("failed to lock account %d: %w", id, err)
		}
		locked[id] = account
	}
	return locked[firstID], locked[secondID], nil
}

// GetBalance returns the account's current state.
func (s *ledgerService) GetBalance(ctx context.Context, accountID int64) (*domain.Account, error) {
	// For read-only operations outside a transaction, use s.dbExecutor
	account, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get balance: failed to get account %d: %w", accountID, err)
	}
	return account, nil
}

// GetStatement retrieves a paginated list of the account's transactions.
func (s *ledgerService) GetStatement(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, 0, util.ErrAccountNotFound
		}
		return nil, 0, fmt.Errorf("get statement: failed to check account existence: %w", err)
	}

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByAccountID(ctx, s.dbExecutor, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get statement: failed to retrieve transactions: %w", err)
	}
	return transactions, totalCount, nil
}
