package auth

import (
	"testing"
	"time"

	"ledgerpay/internal/domain"
	"ledgerpay/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	account := &domain.Account{ID: 7, Email: "jo@example.com", TokenVersion: 2}

	token, err := m.Issue(account)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AccountID)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, 2, claims.TokenVersion)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(&domain.Account{ID: 1})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)

	token, err := m.Issue(&domain.Account{ID: 1})
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	_, err := m.Parse("garbage")
	assert.ErrorIs(t, err, util.ErrUnauthenticated)
}
