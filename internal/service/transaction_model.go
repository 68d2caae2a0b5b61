package service

import (
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// TransactionQuery narrows a transaction listing. Cursor, when set, carries
// the limit and creation time bound of the first page.
type TransactionQuery struct {
	UserID     uuid.UUID
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Limit      int
	Cursor     *transaction.TransactionCursor
}
