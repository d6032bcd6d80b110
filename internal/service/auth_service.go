package service

import (
	"context"
	"fmt"

	"ledgerpay/internal/auth"
	"ledgerpay/internal/domain"
	"ledgerpay/internal/repository"
	"ledgerpay/internal/util"
	"ledgerpay/pkg/db"

	"golang.org/x/crypto/bcrypt"
)

// AuthService defines the interface for account identity operations:
// registration, credential checks and session-token lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Account, string, error)
	Login(ctx context.Context, email, password string) (*domain.Account, string, error)
	Logout(ctx context.Context, accountID int64) error
	// Authenticate resolves a raw bearer token to the account it was
	// issued for, rejecting tokens issued before the last logout.
	Authenticate(ctx context.Context, rawToken string) (*domain.Account, error)
}

// authService implements the AuthService interface.
type authService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	accountRepo repository.AccountRepository
	tokens      *auth.TokenManager
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	tokens *auth.TokenManager,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AuthService {
	return &authService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		accountRepo: accountRepo,
		tokens:      tokens,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
	}
}

// Register creates an account with a zero balance and issues a session token.
// Email uniqueness is enforced by the accounts table; a violation surfaces
// as ErrDuplicateEmail.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.Account, string, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("register: failed to hash password: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, "", fmt.Errorf("register: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, "", fmt.Errorf("register: transaction controller does not implement DBExecutor")
	}

	account := domain.NewAccount(name, email, string(passwordHash))
	if err := s.accountRepo.CreateAccount(ctx, txExecutor, account); err != nil {
		if util.IsError(err, util.ErrDuplicateEmail) {
			return nil, "", util.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("register: failed to create account: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, "", fmt.Errorf("register: failed to commit transaction: %w", err)
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, "", fmt.Errorf("register: failed to issue token: %w", err)
	}
	return account, token, nil
}

// Login checks the credentials and issues a session token.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	account, err := s.accountRepo.GetAccountByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, "", util.ErrAccountNotFound
		}
		return nil, "", fmt.Errorf("login: failed to get account by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", util.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, "", fmt.Errorf("login: failed to issue token: %w", err)
	}
	return account, token, nil
}

// Logout bumps the account's token version so every outstanding token
// stops validating.
func (s *authService) Logout(ctx context.Context, accountID int64) error {
	if err := s.accountRepo.BumpTokenVersion(ctx, s.dbExecutor, accountID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrAccountNotFound
		}
		return fmt.Errorf("logout: failed to bump token version: %w", err)
	}
	return nil
}

// Authenticate parses the token, loads the account and checks that the
// token was issued at the account's current token version.
func (s *authService) Authenticate(ctx context.Context, rawToken string) (*domain.Account, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, util.ErrUnauthenticated
	}

	account, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, claims.AccountID)
	if err != nil {
		return nil, util.ErrUnauthenticated
	}

	if account.TokenVersion != claims.TokenVersion {
		return nil, util.ErrUnauthenticated
	}
	return account, nil
}
