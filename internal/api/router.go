package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ledgerpay/internal/api/handler"
	"ledgerpay/internal/api/middleware"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	authHandler *handler.AuthHandler,
	walletHandler *handler.WalletHandler,
	authenticator *middleware.Authenticator,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)                       // Add a request ID to the context
	r.Use(chimiddleware.RealIP)                          // Use the real IP address
	r.Use(chimiddleware.Logger)                          // Log HTTP requests
	r.Use(chimiddleware.Recoverer)                       // Recover from panics and return 500
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authenticator.Handler)

		r.Post("/logout", authHandler.Logout)
		r.Post("/deposit", walletHandler.Deposit)
		r.Post("/transfer", walletHandler.Transfer)
		r.Post("/transactions/{transactionID}/reverse", walletHandler.Reverse)
		r.Get("/balance", walletHandler.GetBalance)
		r.Get("/transactions", walletHandler.GetStatement)
	})

	return r
}
