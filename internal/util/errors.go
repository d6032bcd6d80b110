package util

import "errors"

// Common application-specific errors. Service methods return these
// (possibly wrapped); the API layer maps each one to an HTTP status.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInvalidAmount       = errors.New("amount must be at least the minimum unit")
	ErrAccountNotFound     = errors.New("account not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSelfTransfer        = errors.New("cannot transfer to your own account")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAlreadyReversed     = errors.New("transaction already reversed")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("unauthenticated")
	// ErrContention marks transient lock/serialization failures. The
	// operation committed nothing, so callers may retry it whole.
	ErrContention = errors.New("operation contention, retry")
)

// IsError reports whether err matches the target sentinel.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
