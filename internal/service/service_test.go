package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

var (
	userID  = uuid.Must(uuid.FromString("0190a000-0000-7000-8000-0000000000aa"))
	otherID = uuid.Must(uuid.FromString("0190a000-0000-7000-8000-0000000000bb"))
)

func newTestService(t *testing.T) (*Service, *storage.Storage) {
	t.Helper()
	store := memory.NewStorage(memory.WithIDGenerator(memory.SequentialIDs()))
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	op := operator.NewOperatorDelegator(store, 4, logger)
	op.Start()
	t.Cleanup(op.Stop)

	return NewService(store, op, Options{}, logger), store
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func mustAccount(t *testing.T, svc *Service, owner uuid.UUID, name, starting string) *account.Account {
	t.Helper()
	acct, err := svc.Account.CreateAccount(context.Background(), NewAccount{
		UserID:          owner,
		Name:            name,
		Type:            account.AccountTypeChecking,
		StartingBalance: money.MustParse(starting),
	})
	require.NoError(t, err)
	return acct
}

func mustTx(t *testing.T, svc *Service, acct *account.Account, typ transaction.Type, amount string, date time.Time) *transaction.Transaction {
	t.Helper()
	tx, err := svc.Transaction.CreateTransaction(context.Background(), &transaction.TransactionCreate{
		UserID:      acct.UserID,
		AccountID:   acct.ID,
		Date:        date,
		Description: "transfer",
		Amount:      money.MustParse(amount),
		Type:        typ,
	})
	require.NoError(t, err)
	return tx
}

func balanceOf(t *testing.T, store *storage.Storage, id uuid.UUID) string {
	t.Helper()
	acct, err := store.Reader.Accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return acct.Balance.String()
}

func linkedTo(t *testing.T, store *storage.Storage, id uuid.UUID) uuid.NullUUID {
	t.Helper()
	tx, err := store.Reader.Transactions.FindByID(context.Background(), id)
	require.NoError(t, err)
	return tx.LinkedTransactionID
}
