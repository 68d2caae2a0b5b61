package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// UpdateTransactionBody lists the editable fields. Omitted fields are left
// untouched; an empty string clears an optional text or category field.
type UpdateTransactionBody struct {
	Date        *string `json:"date,omitempty" format:"date"`
	Description *string `json:"description,omitempty"`
	Amount      *string `json:"amount,omitempty" doc:"Non-negative decimal amount"`
	Type        *string `json:"type,omitempty" enum:"credit,debit"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Vendor      *string `json:"vendor,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Reconciled  *bool   `json:"reconciled,omitempty"`
}

type UpdateTransactionInput struct {
	common.UserHeader
	ID   string `path:"id" doc:"Transaction UUID"`
	Body UpdateTransactionBody
}

type transactionUpdater interface {
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch transaction.Patch) (*transaction.Transaction, error)
}

// UpdateTransactionHandler handles PATCH /v1/transaction/{id}.
type UpdateTransactionHandler struct {
	TransactionService transactionUpdater
}

func NewUpdateTransactionHandler(svc transactionUpdater) *UpdateTransactionHandler {
	return &UpdateTransactionHandler{TransactionService: svc}
}

func (h *UpdateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPatch,
		Path:        "/v1/transaction/{id}",
		Summary:     "Update transaction",
		Description: "Edits a transaction. Amount and type changes move the account balance by the difference. Linked transactions cannot change amount, type, or account.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func buildPatch(body UpdateTransactionBody) (transaction.Patch, error) {
	var patch transaction.Patch
	fields := []struct {
		name  string
		value *string
	}{
		{"date", body.Date},
		{"description", body.Description},
		{"amount", body.Amount},
		{"type", body.Type},
		{"categoryId", body.CategoryID},
		{"vendor", body.Vendor},
		{"reference", body.Reference},
		{"notes", body.Notes},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := patch.Set(f.name, *f.value); err != nil {
			return transaction.Patch{}, huma.NewError(http.StatusBadRequest, "invalid "+f.name, err)
		}
	}
	patch.Reconciled = body.Reconciled
	return patch, nil
}

func (h *UpdateTransactionHandler) handle(ctx context.Context, input *UpdateTransactionInput) (*TransactionOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	id, err := common.ParseID("id", input.ID)
	if err != nil {
		return nil, err
	}
	patch, err := buildPatch(input.Body)
	if err != nil {
		return nil, err
	}

	stop := logging.Timed(ctx, "updateTransactionMs")
	tx, err := h.TransactionService.UpdateTransaction(ctx, userID, id, patch)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to update transaction")
	}
	return &TransactionOutput{Body: ToTransaction(tx)}, nil
}
