package transaction

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// CreateTransactionBody is the request body for creating a transaction.
type CreateTransactionBody struct {
	AccountID   string `json:"accountId" required:"true" doc:"Account UUID"`
	Date        string `json:"date,omitempty" format:"date" doc:"Calendar date, defaults to today (UTC)"`
	Description string `json:"description" required:"true" minLength:"1" doc:"Description of the transaction"`
	Amount      string `json:"amount" required:"true" doc:"Non-negative decimal amount"`
	Type        string `json:"type" required:"true" enum:"credit,debit" doc:"credit raises the balance, debit lowers it"`
	CategoryID  string `json:"categoryId,omitempty" doc:"Category UUID"`
	Vendor      string `json:"vendor,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
	ImportID    string `json:"importId,omitempty" doc:"Idempotency key, unique per account"`
	Reconciled  bool   `json:"reconciled,omitempty"`
}

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	common.UserHeader
	Body CreateTransactionBody
}

// CreateTransactionOutput is the Huma output for creating a transaction.
type CreateTransactionOutput struct {
	Status int
	Body   Transaction
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transaction.
type CreateTransactionHandler struct {
	TransactionService transactionCreator
	now                func() time.Time
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc, now: time.Now}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transaction",
		Method:        http.MethodPost,
		Path:          "/v1/transaction",
		Summary:       "Create transaction",
		Description:   "Creates a transaction and applies its effect to the account balance.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateTransactionHandler) parse(input *CreateTransactionInput) (*transaction.TransactionCreate, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	accountID, err := common.ParseID("accountId", input.Body.AccountID)
	if err != nil {
		return nil, err
	}
	categoryID, err := common.ParseOptionalID("categoryId", input.Body.CategoryID)
	if err != nil {
		return nil, err
	}
	amount, err := common.ParseAmount("amount", input.Body.Amount, money.Zero)
	if err != nil {
		return nil, err
	}
	txType, err := transaction.ParseType(input.Body.Type)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid type", err)
	}

	date := h.now()
	if input.Body.Date != "" {
		if date, err = time.Parse(common.DateLayout, input.Body.Date); err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid date", err)
		}
	}

	create := &transaction.TransactionCreate{
		UserID:      userID,
		AccountID:   accountID,
		Date:        transaction.DayOf(date),
		Description: input.Body.Description,
		Amount:      amount,
		Type:        txType,
		Vendor:      input.Body.Vendor,
		Reference:   input.Body.Reference,
		Notes:       input.Body.Notes,
		ImportID:    input.Body.ImportID,
		Reconciled:  input.Body.Reconciled,
	}
	if categoryID != nil {
		create.CategoryID = uuid.NullUUID{UUID: *categoryID, Valid: true}
	}
	return create, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	create, err := h.parse(input)
	if err != nil {
		return nil, err
	}

	stop := logging.Timed(ctx, "createTransactionMs")
	tx, err := h.TransactionService.CreateTransaction(ctx, create)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to create transaction")
	}

	logging.AddData(ctx, "transactionID", tx.ID.String())
	return &CreateTransactionOutput{Status: http.StatusCreated, Body: ToTransaction(tx)}, nil
}
