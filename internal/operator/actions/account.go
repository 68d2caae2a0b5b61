package actions

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

type CreateAccount struct {
	UserID          uuid.UUID
	Name            string
	Type            account.AccountType
	Currency        string
	StartingBalance money.Amount

	Result *account.Account
}

func (c *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	if strings.TrimSpace(c.Name) == "" {
		return ledgererr.Invalid("name", "must not be empty")
	}
	currency := strings.ToUpper(strings.TrimSpace(c.Currency))
	if currency == "" {
		currency = "USD"
	}

	acct, err := writer.Account.Insert(ctx, &account.AccountCreate{
		UserID:          c.UserID,
		Name:            strings.TrimSpace(c.Name),
		Type:            c.Type,
		Currency:        currency,
		StartingBalance: c.StartingBalance,
	})
	if err != nil {
		return err
	}

	c.Result = acct
	return nil
}

// BalanceCheck compares an account's stored balance with the one implied by
// its starting balance and transactions.
type BalanceCheck struct {
	AccountID        uuid.UUID
	StoredBalance    money.Amount
	ComputedBalance  money.Amount
	TransactionCount int
	Repaired         bool
}

func (b *BalanceCheck) Consistent() bool {
	return b.StoredBalance == b.ComputedBalance
}

// RecomputeBalance locks the account, recomputes its balance and, when
// Repair is set, overwrites a drifted stored balance.
type RecomputeBalance struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Repair    bool

	Result *BalanceCheck
}

func (r *RecomputeBalance) Perform(ctx context.Context, writer *storage.Writer) error {
	acct, err := lockOwnedAccount(ctx, writer, r.UserID, r.AccountID)
	if err != nil {
		return err
	}
	totals, err := writer.Transaction.SumByAccount(ctx, r.AccountID)
	if err != nil {
		return err
	}

	check := &BalanceCheck{
		AccountID:        acct.ID,
		StoredBalance:    acct.Balance,
		ComputedBalance:  acct.StartingBalance.Add(totals.Credits).Sub(totals.Debits),
		TransactionCount: totals.Count,
	}
	if r.Repair && !check.Consistent() {
		if err := writer.Account.UpdateBalance(ctx, acct.ID, check.ComputedBalance); err != nil {
			return err
		}
		check.Repaired = true
	}

	r.Result = check
	return nil
}
