// Package auth issues and validates the opaque session tokens handed to
// API callers. Tokens are HS256 JWTs carrying the account ID and the
// account's token version; bumping the version invalidates every token
// issued before the bump.
package auth

import (
	"fmt"
	"time"

	"ledgerpay/internal/domain"
	"ledgerpay/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims embedded in every session token.
type Claims struct {
	AccountID    int64  `json:"account_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager with the given signing secret
// and token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the account.
func (m *TokenManager) Issue(account *domain.Account) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		AccountID:    account.ID,
		Email:        account.Email,
		TokenVersion: account.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the raw token string and returns its claims.
// Any parse or signature failure surfaces as ErrUnauthenticated.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, util.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, util.ErrUnauthenticated
	}
	return claims, nil
}
