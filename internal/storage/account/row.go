package account

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
)

const tableName = "accounts"

var columns = []string{
	"id", "user_id", "name", "type", "currency", "balance", "starting_balance", "created_at",
}

type row struct {
	ID              uuid.UUID    `db:"id"`
	UserID          uuid.UUID    `db:"user_id"`
	Name            string       `db:"name"`
	Type            string       `db:"type"`
	Currency        string       `db:"currency"`
	Balance         money.Amount `db:"balance"`
	StartingBalance money.Amount `db:"starting_balance"`
	CreatedAt       time.Time    `db:"created_at"`
}

func rowToAccount(r *row) *Account {
	return &Account{
		ID:              r.ID,
		UserID:          r.UserID,
		Name:            r.Name,
		Type:            AccountType(r.Type),
		Currency:        r.Currency,
		Balance:         r.Balance,
		StartingBalance: r.StartingBalance,
		CreatedAt:       r.CreatedAt,
	}
}
