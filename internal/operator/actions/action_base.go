package actions

import (
	"bytes"
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}

// lockOwnedAccount locks an account row and hides accounts of other users.
func lockOwnedAccount(ctx context.Context, writer *storage.Writer, userID, accountID uuid.UUID) (*account.Account, error) {
	acct, err := writer.Account.FindByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		return nil, ledgererr.NotFound("account", accountID)
	}
	return acct, nil
}

func lockOwnedTransaction(ctx context.Context, writer *storage.Writer, userID, id uuid.UUID) (*transaction.Transaction, error) {
	tx, err := writer.Transaction.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ledgererr.NotFound("transaction", id)
	}
	return tx, nil
}

// lockPair locks two transactions in ascending id order and returns them in
// argument order.
func lockPair(ctx context.Context, writer *storage.Writer, userID, a, b uuid.UUID) (*transaction.Transaction, *transaction.Transaction, error) {
	first, second := a, b
	if bytes.Compare(b[:], a[:]) < 0 {
		first, second = b, a
	}
	t1, err := lockOwnedTransaction(ctx, writer, userID, first)
	if err != nil {
		return nil, nil, err
	}
	t2, err := lockOwnedTransaction(ctx, writer, userID, second)
	if err != nil {
		return nil, nil, err
	}
	if first == a {
		return t1, t2, nil
	}
	return t2, t1, nil
}

// adjustBalance adds delta to the balance of an already locked account.
func adjustBalance(ctx context.Context, writer *storage.Writer, acct *account.Account, delta money.Amount) error {
	if delta.IsZero() {
		return nil
	}
	acct.Balance = acct.Balance.Add(delta)
	return writer.Account.UpdateBalance(ctx, acct.ID, acct.Balance)
}
