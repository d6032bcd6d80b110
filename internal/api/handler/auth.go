package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ledgerpay/internal/api/middleware"
	"ledgerpay/internal/service"
	"ledgerpay/internal/util"

	"github.com/go-playground/validator/v10"
)

// AuthHandler handles HTTP requests for registration and sessions.
type AuthHandler struct {
	responder
	service  service.AuthService
	validate *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger, debug bool) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger, debug: debug},
		service:   svc,
		validate:  validator.New(),
	}
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles account creation.
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	account, token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Account registered", "account_id", account.ID)
	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"account": account,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles credential checks and token issuance.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	account, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Account logged in", "account_id", account.ID)
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"account": account,
		"token":   token,
	})
}

// Logout invalidates every token issued for the authenticated account.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthenticated)
		return
	}

	if err := h.service.Logout(r.Context(), account.ID); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Account logged out", "account_id", account.ID)
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}
