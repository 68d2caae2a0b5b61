package account

import (
	"time"

	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

// Account is the API response model for an account.
type Account struct {
	ID              string `json:"id" doc:"Account UUID"`
	Name            string `json:"name" doc:"Account name"`
	Type            string `json:"type" enum:"checking,savings,credit_card,investment,loan,cash" doc:"Account type"`
	Currency        string `json:"currency" doc:"ISO 4217 currency code"`
	Balance         string `json:"balance" doc:"Decimal balance"`
	StartingBalance string `json:"startingBalance" doc:"Decimal balance when the account was opened"`
	CreatedAt       string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAccount(a *account.Account) Account {
	return Account{
		ID:              a.ID.String(),
		Name:            a.Name,
		Type:            string(a.Type),
		Currency:        a.Currency,
		Balance:         a.Balance.String(),
		StartingBalance: a.StartingBalance.String(),
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
}
