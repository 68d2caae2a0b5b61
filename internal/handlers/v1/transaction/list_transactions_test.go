package transaction

import (
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

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

func newListTestAPI(t *testing.T, svc transactionLister) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListTransactionsHandler(svc).Register(api)
	return api
}

// -- parseListTransactionsInput unit tests --

func TestParseListTransactionsInput_NoCursor(t *testing.T) {
	input := &ListTransactionsInput{
		UserHeader: common.UserHeader{UserID: userID.String()},
		Body:       ListTransactionsBody{AccountID: accountID.String(), Limit: 5},
	}

	q, err := parseListTransactionsInput(input)
	require.NoError(t, err)
	assert.Equal(t, userID, q.UserID)
	require.NotNil(t, q.AccountID)
	assert.Equal(t, accountID, *q.AccountID)
	assert.Nil(t, q.CategoryID)
	assert.Equal(t, 5, q.Limit)
	assert.Nil(t, q.Cursor)
}

func TestParseListTransactionsInput_WithCursor(t *testing.T) {
	cursorMaxTime := "2025-06-15T08:00:00Z"

	input := &ListTransactionsInput{
		UserHeader: common.UserHeader{UserID: userID.String()},
		Body: ListTransactionsBody{
			Cursor: &ListTransactionsCursor{
				Position:        40,
				Limit:           10,
				MaxCreationTime: cursorMaxTime,
			},
		},
	}

	q, err := parseListTransactionsInput(input)
	require.NoError(t, err)

	expectedMax, _ := time.Parse(time.RFC3339, cursorMaxTime)
	require.NotNil(t, q.Cursor)
	assert.Equal(t, 40, q.Cursor.Position)
	assert.Equal(t, 10, q.Cursor.Limit)
	assert.Equal(t, expectedMax, q.Cursor.MaxCreationTime)
}

func TestParseListTransactionsInput_InvalidCursorMaxCreationTime(t *testing.T) {
	input := &ListTransactionsInput{
		UserHeader: common.UserHeader{UserID: userID.String()},
		Body: ListTransactionsBody{
			Cursor: &ListTransactionsCursor{Limit: 10, MaxCreationTime: "not-a-date"},
		},
	}

	_, err := parseListTransactionsInput(input)
	assert.Error(t, err)
}

func TestParseListTransactionsInput_InvalidUser(t *testing.T) {
	input := &ListTransactionsInput{UserHeader: common.UserHeader{UserID: uuid.Nil.String()}}

	_, err := parseListTransactionsInput(input)
	assert.Error(t, err)
}

// -- handler integration tests via humatest --

func TestListTransactions_FirstPage(t *testing.T) {
	svc := &mockTransactionService{}
	api := newListTestAPI(t, svc)

	next := &transaction.TransactionCursor{Position: 1, Limit: 1, MaxCreationTime: fixedNow}
	svc.On("ListTransactions", mock.Anything, service.TransactionQuery{UserID: userID, Limit: 1}).
		Return(&transaction.TransactionListResult{
			Transactions: []*transaction.Transaction{sampleTransaction()},
			NextCursor:   next,
		}, nil)

	resp := api.Post("/v1/transaction/list", userHeader, map[string]any{"limit": 1})
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListTransactionsResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, "Coffee Shop", body.Transactions[0].Description)
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, 1, body.NextCursor.Position)

	parsed, err := time.Parse(time.RFC3339, body.NextCursor.MaxCreationTime)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(fixedNow))
	svc.AssertExpectations(t)
}

func TestListTransactions_LastPageHasNoCursor(t *testing.T) {
	svc := &mockTransactionService{}
	api := newListTestAPI(t, svc)

	svc.On("ListTransactions", mock.Anything, mock.Anything).
		Return(&transaction.TransactionListResult{}, nil)

	resp := api.Post("/v1/transaction/list", userHeader, map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListTransactionsResponseBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Empty(t, body.Transactions)
	assert.Nil(t, body.NextCursor)
}

func TestListTransactions_ServiceError(t *testing.T) {
	svc := &mockTransactionService{}
	api := newListTestAPI(t, svc)

	svc.On("ListTransactions", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	resp := api.Post("/v1/transaction/list", userHeader, map[string]any{})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
