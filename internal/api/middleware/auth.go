package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ledgerpay/internal/domain"
	"ledgerpay/internal/service"
)

type contextKey string

// accountContextKey is the context key under which the authenticated
// account is stored.
const accountContextKey contextKey = "account"

// Authenticator validates bearer tokens and attaches the authenticated
// account to the request context.
type Authenticator struct {
	authService service.AuthService
}

// NewAuthenticator creates an Authenticator backed by the auth service.
func NewAuthenticator(authService service.AuthService) *Authenticator {
	return &Authenticator{authService: authService}
}

// Handler rejects requests without a valid Bearer token and stores the
// resolved account in the request context for downstream handlers.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "invalid authorization header format")
			return
		}

		account, err := a.authService.Authenticate(r.Context(), parts[1])
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountFromContext returns the authenticated account stored by Handler.
func AccountFromContext(ctx context.Context) (*domain.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(*domain.Account)
	return account, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
