package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerpay/internal/api"
	"ledgerpay/internal/api/handler"
	"ledgerpay/internal/api/middleware"
	"ledgerpay/internal/domain"
	"ledgerpay/internal/util"
)

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.Get(1).(*domain.Transaction), args.Error(2)
}

func (m *MockLedgerService) Transfer(ctx context.Context, senderID int64, recipientEmail string, amount decimal.Decimal) (*domain.Account, *domain.Transaction, error) {
	args := m.Called(ctx, senderID, recipientEmail, amount)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.Get(1).(*domain.Transaction), args.Error(2)
}

func (m *MockLedgerService) Reverse(ctx context.Context, transactionID int64) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, accountID int64) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) GetStatement(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*domain.Account, string, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, accountID int64) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, rawToken string) (*domain.Account, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

type testAPI struct {
	ledger *MockLedgerService
	auth   *MockAuthService
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ledger := new(MockLedgerService)
	authSvc := new(MockAuthService)
	logger := util.GetLogger()

	router := api.NewRouter(
		handler.NewAuthHandler(authSvc, logger, false),
		handler.NewWalletHandler(ledger, logger, false),
		middleware.NewAuthenticator(authSvc),
		logger,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testAPI{ledger: ledger, auth: authSvc, server: server}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		a := newTestAPI(t)
		account := &domain.Account{ID: 1, Name: "Jo", Email: "jo@example.com"}
		a.auth.On("Register", mock.Anything, "Jo", "jo@example.com", "supersecret").Return(account, "tok123", nil).Once()

		resp := a.do(t, http.MethodPost, "/register", "", `{"name":"Jo","email":"jo@example.com","password":"supersecret"}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "tok123", body["token"])
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Register", mock.Anything, "Jo", "jo@example.com", "supersecret").Return(nil, "", util.ErrDuplicateEmail).Once()

		resp := a.do(t, http.MethodPost, "/register", "", `{"name":"Jo","email":"jo@example.com","password":"supersecret"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("RejectsShortPassword", func(t *testing.T) {
		a := newTestAPI(t)

		resp := a.do(t, http.MethodPost, "/register", "", `{"name":"Jo","email":"jo@example.com","password":"short"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		a.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("WrongPassword", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Login", mock.Anything, "jo@example.com", "wrong").Return(nil, "", util.ErrInvalidCredentials).Once()

		resp := a.do(t, http.MethodPost, "/login", "", `{"email":"jo@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDepositEndpoint(t *testing.T) {
	account := &domain.Account{ID: 1, Email: "jo@example.com"}

	t.Run("RequiresToken", func(t *testing.T) {
		a := newTestAPI(t)

		resp := a.do(t, http.MethodPost, "/deposit", "", `{"amount":"100.50"}`)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		a.ledger.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Successful", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()

		updated := &domain.Account{ID: 1, Balance: decimal.RequireFromString("601.25")}
		transaction := &domain.Transaction{ID: 42, Kind: domain.TransactionKindDeposit}
		a.ledger.On("Deposit", mock.Anything, int64(1), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.RequireFromString("100.50"))
		})).Return(updated, transaction, nil).Once()

		resp := a.do(t, http.MethodPost, "/deposit", "tok123", `{"amount":"100.50"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "601.25", body["balance"])
		assert.Equal(t, float64(42), body["transaction_id"])
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()
		a.ledger.On("Deposit", mock.Anything, int64(1), mock.Anything).Return(nil, nil, util.ErrInvalidAmount).Once()

		resp := a.do(t, http.MethodPost, "/deposit", "tok123", `{"amount":"-5"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTransferEndpoint(t *testing.T) {
	account := &domain.Account{ID: 1, Email: "jo@example.com"}

	t.Run("InsufficientFunds", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()
		a.ledger.On("Transfer", mock.Anything, int64(1), "amy@example.com", mock.Anything).
			Return(nil, nil, util.ErrInsufficientFunds).Once()

		resp := a.do(t, http.MethodPost, "/transfer", "tok123", `{"recipient_email":"amy@example.com","amount":"50.00"}`)

		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	})

	t.Run("SelfTransfer", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()
		a.ledger.On("Transfer", mock.Anything, int64(1), "jo@example.com", mock.Anything).
			Return(nil, nil, util.ErrSelfTransfer).Once()

		resp := a.do(t, http.MethodPost, "/transfer", "tok123", `{"recipient_email":"jo@example.com","amount":"50.00"}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Successful", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()

		updated := &domain.Account{ID: 1, Balance: decimal.RequireFromString("551.25")}
		debit := &domain.Transaction{ID: 10, Kind: domain.TransactionKindTransferOut}
		a.ledger.On("Transfer", mock.Anything, int64(1), "amy@example.com", mock.Anything).
			Return(updated, debit, nil).Once()

		resp := a.do(t, http.MethodPost, "/transfer", "tok123", `{"recipient_email":"amy@example.com","amount":"50.00"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "551.25", body["balance"])
	})
}

func TestReverseEndpoint(t *testing.T) {
	account := &domain.Account{ID: 1}

	t.Run("Successful", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()
		a.ledger.On("Reverse", mock.Anything, int64(42)).Return(nil).Once()

		resp := a.do(t, http.MethodPost, "/transactions/42/reverse", "tok123", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("AlreadyReversed", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()
		a.ledger.On("Reverse", mock.Anything, int64(42)).Return(util.ErrAlreadyReversed).Once()

		resp := a.do(t, http.MethodPost, "/transactions/42/reverse", "tok123", "")

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()
		a.ledger.On("Reverse", mock.Anything, int64(99)).Return(util.ErrTransactionNotFound).Once()

		resp := a.do(t, http.MethodPost, "/transactions/99/reverse", "tok123", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestStatementEndpoint(t *testing.T) {
	account := &domain.Account{ID: 1}

	a := newTestAPI(t)
	a.auth.On("Authenticate", mock.Anything, "tok123").Return(account, nil).Once()

	transactions := []domain.Transaction{
		{ID: 2, AccountID: 1, Kind: domain.TransactionKindDeposit, Amount: decimal.RequireFromString("100.50")},
	}
	a.ledger.On("GetStatement", mock.Anything, int64(1), 5, 10).Return(transactions, int64(23), nil).Once()

	resp := a.do(t, http.MethodGet, "/transactions?limit=5&offset=10", "tok123", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(23), body["total_count"])
	assert.Equal(t, float64(5), body["limit"])
	require.Len(t, body["data"], 1)
}
