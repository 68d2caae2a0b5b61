package transaction

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// ListTransactionsCursor represents a pagination cursor in request and response bodies.
// It bundles position, limit, and maxCreationTime so subsequent pages use consistent parameters.
type ListTransactionsCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Upper bound on created_at locked in from the first page"`
}

// ListTransactionsBody is the request body for listing transactions.
type ListTransactionsBody struct {
	AccountID  string                  `json:"accountId,omitempty" doc:"Only transactions of this account"`
	CategoryID string                  `json:"categoryId,omitempty" doc:"Only transactions in this category"`
	Limit      int                     `json:"limit,omitempty" minimum:"0" maximum:"100" doc:"Page size of the first page, default 20"`
	Cursor     *ListTransactionsCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

// ListTransactionsInput is the Huma input for listing transactions.
type ListTransactionsInput struct {
	common.UserHeader
	Body ListTransactionsBody
}

// ListTransactionsResponseBody is the response body for listing transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction           `json:"transactions" doc:"Page of transactions"`
	NextCursor   *ListTransactionsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// transactionLister is the interface for listing transactions.
type transactionLister interface {
	ListTransactions(ctx context.Context, q service.TransactionQuery) (*transaction.TransactionListResult, error)
}

// ListTransactionsHandler handles POST /v1/transaction/list.
type ListTransactionsHandler struct {
	TransactionService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{TransactionService: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/list",
		Summary:     "List transactions",
		Description: "Returns a paginated list of transactions using cursor-based pagination.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

// parseListTransactionsInput parses and validates the API input.
// When a cursor is provided, limit and maxCreationTime come from it.
func parseListTransactionsInput(input *ListTransactionsInput) (service.TransactionQuery, error) {
	userID, err := input.User()
	if err != nil {
		return service.TransactionQuery{}, err
	}
	q := service.TransactionQuery{UserID: userID, Limit: input.Body.Limit}
	if q.AccountID, err = common.ParseOptionalID("accountId", input.Body.AccountID); err != nil {
		return service.TransactionQuery{}, err
	}
	if q.CategoryID, err = common.ParseOptionalID("categoryId", input.Body.CategoryID); err != nil {
		return service.TransactionQuery{}, err
	}
	if input.Body.Cursor == nil {
		return q, nil
	}

	if input.Body.Cursor.Position < 0 {
		return service.TransactionQuery{}, huma.NewError(http.StatusBadRequest, "cursor position must be non-negative")
	}
	maxCreationTime, err := time.Parse(time.RFC3339, input.Body.Cursor.MaxCreationTime)
	if err != nil {
		return service.TransactionQuery{}, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", err)
	}
	q.Cursor = &transaction.TransactionCursor{
		Position:        input.Body.Cursor.Position,
		Limit:           input.Body.Cursor.Limit,
		MaxCreationTime: maxCreationTime,
	}
	return q, nil
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	q, err := parseListTransactionsInput(input)
	if err != nil {
		return nil, err
	}

	stop := logging.Timed(ctx, "listTransactionsMs")
	result, err := h.TransactionService.ListTransactions(ctx, q)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to list transactions")
	}

	logging.AddData(ctx, "transactionCount", len(result.Transactions))

	resp := ListTransactionsResponseBody{Transactions: ToTransactions(result.Transactions)}
	if result.NextCursor != nil {
		resp.NextCursor = &ListTransactionsCursor{
			Position:        result.NextCursor.Position,
			Limit:           result.NextCursor.Limit,
			MaxCreationTime: result.NextCursor.MaxCreationTime.Format(time.RFC3339Nano),
		}
	}
	return &ListTransactionsOutput{Body: resp}, nil
}
