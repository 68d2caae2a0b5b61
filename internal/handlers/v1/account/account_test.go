package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) CreateAccount(ctx context.Context, in service.NewAccount) (*account.Account, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *mockAccountService) GetAccount(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *mockAccountService) ListAccounts(ctx context.Context, userID uuid.UUID, cursor *account.AccountCursor) (*account.AccountListResult, error) {
	args := m.Called(ctx, userID, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.AccountListResult), args.Error(1)
}

func (m *mockAccountService) RecomputeBalance(ctx context.Context, userID, id uuid.UUID, repair bool) (*actions.BalanceCheck, error) {
	args := m.Called(ctx, userID, id, repair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actions.BalanceCheck), args.Error(1)
}

func (m *mockAccountService) Reconcile(ctx context.Context, userID, id uuid.UUID, statementBalance, tolerance money.Amount) (*service.Reconciliation, error) {
	args := m.Called(ctx, userID, id, statementBalance, tolerance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Reconciliation), args.Error(1)
}

var (
	userID     = uuid.Must(uuid.FromString("0190a000-0000-7000-8000-000000000001"))
	userHeader = "X-User-ID: " + userID.String()
)

func newTestAPI(t *testing.T, svc *mockAccountService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateAccountHandler(svc).Register(api)
	NewListAccountsHandler(svc).Register(api)
	NewGetAccountHandler(svc).Register(api)
	NewBalanceHandler(svc).Register(api)
	return api
}

func sampleAccount() *account.Account {
	return &account.Account{
		ID:              uuid.Must(uuid.FromString("0190a000-0000-7000-8000-0000000000c1")),
		UserID:          userID,
		Name:            "Checking",
		Type:            account.AccountTypeChecking,
		Currency:        "USD",
		Balance:         money.MustParse("100.00"),
		StartingBalance: money.MustParse("100.00"),
		CreatedAt:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAccount_Success(t *testing.T) {
	svc := &mockAccountService{}
	api := newTestAPI(t, svc)

	svc.On("CreateAccount", mock.Anything, service.NewAccount{
		UserID:          userID,
		Name:            "Checking",
		Type:            account.AccountTypeChecking,
		StartingBalance: money.MustParse("100.00"),
	}).Return(sampleAccount(), nil)

	resp := api.Post("/v1/account", userHeader, map[string]any{
		"name":            "Checking",
		"startingBalance": "100.00",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Account
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "100.00", body.Balance)
	assert.Equal(t, "checking", body.Type)
	svc.AssertExpectations(t)
}

func TestCreateAccount_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		header string
		body   map[string]any
		status int
	}{
		{name: "missing user", header: "X-Other: 1", body: map[string]any{"name": "A"}, status: http.StatusUnprocessableEntity},
		{name: "bad user", header: "X-User-ID: nope", body: map[string]any{"name": "A"}, status: http.StatusUnauthorized},
		{name: "bad balance", header: userHeader, body: map[string]any{"name": "A", "startingBalance": "1.234"}, status: http.StatusBadRequest},
		{name: "empty name", header: userHeader, body: map[string]any{"name": ""}, status: http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockAccountService{}
			api := newTestAPI(t, svc)
			resp := api.Post("/v1/account", tc.header, tc.body)
			assert.Equal(t, tc.status, resp.Code)
			svc.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
		})
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	svc := &mockAccountService{}
	api := newTestAPI(t, svc)
	id := uuid.Must(uuid.NewV7())

	svc.On("GetAccount", mock.Anything, userID, id).Return(nil, ledgererr.NotFound("account", id))

	resp := api.Get("/v1/account/"+id.String(), userHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListAccounts_Success(t *testing.T) {
	svc := &mockAccountService{}
	api := newTestAPI(t, svc)

	svc.On("ListAccounts", mock.Anything, userID, &account.AccountCursor{Position: 0, Limit: 1}).
		Return(&account.AccountListResult{
			Accounts:   []*account.Account{sampleAccount()},
			NextCursor: &account.AccountCursor{Position: 1, Limit: 1},
		}, nil)

	resp := api.Get("/v1/accounts?limit=1", userHeader)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body ListAccountsResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, "Checking", body.Accounts[0].Name)
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, 1, body.NextCursor.Position)
}

func TestListAccounts_ServiceError(t *testing.T) {
	svc := &mockAccountService{}
	api := newTestAPI(t, svc)

	svc.On("ListAccounts", mock.Anything, userID, mock.Anything).Return(nil, errors.New("connection refused"))

	resp := api.Get("/v1/accounts", userHeader)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRecomputeBalance(t *testing.T) {
	svc := &mockAccountService{}
	api := newTestAPI(t, svc)
	acct := sampleAccount()

	svc.On("RecomputeBalance", mock.Anything, userID, acct.ID, true).Return(&actions.BalanceCheck{
		AccountID:        acct.ID,
		StoredBalance:    money.MustParse("90.00"),
		ComputedBalance:  money.MustParse("100.00"),
		TransactionCount: 3,
		Repaired:         true,
	}, nil)

	resp := api.Post("/v1/account/"+acct.ID.String()+"/recompute", userHeader, map[string]any{"repair": true})
	assert.Equal(t, http.StatusOK, resp.Code)

	var body BalanceCheck
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Consistent)
	assert.True(t, body.Repaired)
	assert.Equal(t, "100.00", body.ComputedBalance)
}

func TestReconcile_DefaultTolerance(t *testing.T) {
	svc := &mockAccountService{}
	api := newTestAPI(t, svc)
	acct := sampleAccount()

	svc.On("Reconcile", mock.Anything, userID, acct.ID, money.MustParse("100.01"), money.MustParse("0.01")).
		Return(&service.Reconciliation{
			AccountID:        acct.ID,
			LedgerBalance:    acct.Balance,
			StatementBalance: money.MustParse("100.01"),
			Difference:       money.MustParse("0.01"),
			Tolerance:        money.MustParse("0.01"),
			Matched:          true,
		}, nil)

	resp := api.Post("/v1/account/"+acct.ID.String()+"/reconcile", userHeader, map[string]any{"statementBalance": "100.01"})
	assert.Equal(t, http.StatusOK, resp.Code)

	var body Reconciliation
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Matched)
	assert.Equal(t, "0.01", body.Difference)
}
