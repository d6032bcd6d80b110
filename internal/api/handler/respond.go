package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"ledgerpay/internal/util"

	"github.com/google/uuid"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 30 * time.Second

// responder holds what the handlers need to shape responses.
type responder struct {
	logger *slog.Logger
	debug  bool
}

// respondWithJSON sends a JSON response with the given status code.
func (rs *responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		rs.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps a service error to a stable status code and a
// human-readable message. Unclassified errors are logged with full
// context and answered with a correlation id; internal detail is only
// included in debug mode.
func (rs *responder) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput), util.IsError(err, util.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrAccountNotFound),
		util.IsError(err, util.ErrRecipientNotFound),
		util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrSelfTransfer),
		util.IsError(err, util.ErrAlreadyReversed),
		util.IsError(err, util.ErrDuplicateEmail):
		statusCode = http.StatusConflict
		message = err.Error()
	case util.IsError(err, util.ErrInvalidCredentials), util.IsError(err, util.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		message = "Invalid credentials"
	case util.IsError(err, util.ErrContention):
		statusCode = http.StatusServiceUnavailable
		message = "Operation could not be completed, please retry"
	default:
		errorID := uuid.NewString()
		rs.logger.Error("Unhandled service error",
			"error", err,
			"error_id", errorID,
			"method", r.Method,
			"url", r.URL.Path,
		)
		payload := map[string]string{"error": message, "error_id": errorID}
		if rs.debug {
			payload["debug"] = err.Error()
		}
		rs.respondWithJSON(w, statusCode, payload)
		return
	}

	rs.respondWithJSON(w, statusCode, map[string]string{"error": message})
}
