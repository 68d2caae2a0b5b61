package transaction

import (
	"time"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID                  string `json:"id" doc:"Transaction UUID"`
	AccountID           string `json:"accountId" doc:"Account UUID"`
	Date                string `json:"date" format:"date" doc:"Calendar date of the transaction"`
	Description         string `json:"description" doc:"Sanitized description"`
	Amount              string `json:"amount" doc:"Non-negative decimal amount"`
	Type                string `json:"type" enum:"credit,debit" doc:"Direction relative to the account"`
	CategoryID          string `json:"categoryId,omitempty" doc:"Category UUID"`
	Vendor              string `json:"vendor,omitempty" doc:"Vendor name"`
	Reference           string `json:"reference,omitempty" doc:"Check number or bank reference"`
	Notes               string `json:"notes,omitempty"`
	ImportID            string `json:"importId,omitempty" doc:"Deterministic id of the statement row this came from"`
	Reconciled          bool   `json:"reconciled"`
	LinkedTransactionID string `json:"linkedTransactionId,omitempty" doc:"Other half of a transfer"`
	CreatedAt           string `json:"createdAt" doc:"RFC3339 creation time"`
	UpdatedAt           string `json:"updatedAt" doc:"RFC3339 last update time"`
}

// ToTransaction converts a stored transaction to its API model.
func ToTransaction(tx *transaction.Transaction) Transaction {
	return Transaction{
		ID:                  tx.ID.String(),
		AccountID:           tx.AccountID.String(),
		Date:                tx.Date.Format(common.DateLayout),
		Description:         tx.Description,
		Amount:              tx.Amount.String(),
		Type:                string(tx.Type),
		CategoryID:          common.NullID(tx.CategoryID),
		Vendor:              tx.Vendor,
		Reference:           tx.Reference,
		Notes:               tx.Notes,
		ImportID:            tx.ImportID,
		Reconciled:          tx.Reconciled,
		LinkedTransactionID: common.NullID(tx.LinkedTransactionID),
		CreatedAt:           tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           tx.UpdatedAt.Format(time.RFC3339),
	}
}

// ToTransactions converts a slice of transactions for other handler packages.
func ToTransactions(txs []*transaction.Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = ToTransaction(tx)
	}
	return out
}
