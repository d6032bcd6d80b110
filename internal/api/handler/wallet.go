package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ledgerpay/internal/api/middleware"
	"ledgerpay/internal/api/types"
	"ledgerpay/internal/domain"
	"ledgerpay/internal/service"
	"ledgerpay/internal/util"
)

// WalletHandler handles HTTP requests for ledger operations.
type WalletHandler struct {
	responder
	service service.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.LedgerService, logger *slog.Logger, debug bool) *WalletHandler {
	return &WalletHandler{
		responder: responder{logger: logger, debug: debug},
		service:   svc,
	}
}

// DepositRequest represents the request body for deposit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Deposit handles the deposit money request.
// POST /deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthenticated)
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	updated, transaction, err := h.service.Deposit(r.Context(), account.ID, req.Amount)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Account deposited", "account_id", account.ID, "amount", req.Amount)
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Deposit successful",
		"balance":        updated.Balance,
		"transaction_id": transaction.ID,
	})
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	RecipientEmail string          `json:"recipient_email"`
	Amount         decimal.Decimal `json:"amount"`
}

// Transfer handles the transfer money request.
// POST /transfer
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthenticated)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}
	if req.RecipientEmail == "" {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	updated, transaction, err := h.service.Transfer(r.Context(), account.ID, req.RecipientEmail, req.Amount)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Account transferred",
		"sender_id", account.ID,
		"recipient_email", req.RecipientEmail,
		"amount", req.Amount,
	)
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Transfer successful",
		"balance":        updated.Balance,
		"transaction_id": transaction.ID,
	})
}

// Reverse handles the reverse transaction request.
// POST /transactions/{transactionID}/reverse
func (h *WalletHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	transactionIDStr := chi.URLParam(r, "transactionID")
	transactionID, err := strconv.ParseInt(transactionIDStr, 10, 64)
	if err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	if err := h.service.Reverse(r.Context(), transactionID); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Transaction reversed", "transaction_id", transactionID)
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Transaction reversed"})
}

// GetBalance handles the get balance request.
// GET /balance
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthenticated)
		return
	}

	current, err := h.service.GetBalance(r.Context(), account.ID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": current.ID,
		"balance":    current.Balance,
	})
}

// GetStatement handles the get transaction history request.
// GET /transactions
func (h *WalletHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		h.respondWithError(w, r, util.ErrUnauthenticated)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0 // Default offset
	}

	transactions, totalCount, err := h.service.GetStatement(r.Context(), account.ID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
