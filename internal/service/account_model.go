package service

import (
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

// NewAccount is the input for creating an account.
type NewAccount struct {
	UserID          uuid.UUID
	Name            string
	Type            account.AccountType
	Currency        string
	StartingBalance money.Amount
}

// Reconciliation compares a bank statement balance with the ledger balance.
// Difference is statement minus ledger.
type Reconciliation struct {
	AccountID        uuid.UUID
	LedgerBalance    money.Amount
	StatementBalance money.Amount
	Difference       money.Amount
	Tolerance        money.Amount
	Matched          bool
}
