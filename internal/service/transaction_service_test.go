package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

func TestCreateTransaction_BalanceEffect(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	acct := mustAccount(t, svc, userID, "Checking", "100.00")

	credit := mustTx(t, svc, acct, transaction.TypeCredit, "20.00", day(1))
	assert.Equal(t, "120.00", balanceOf(t, store, acct.ID))

	debit := mustTx(t, svc, acct, transaction.TypeDebit, "0.01", day(1))
	assert.Equal(t, "119.99", balanceOf(t, store, acct.ID))

	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, userID, debit.ID))
	assert.Equal(t, "120.00", balanceOf(t, store, acct.ID))
	require.NoError(t, svc.Transaction.DeleteTransaction(ctx, userID, credit.ID))
	assert.Equal(t, "100.00", balanceOf(t, store, acct.ID))
}

func TestCreateTransaction_DuplicateImportID(t *testing.T) {
	svc, store := newTestService(t)
	acct := mustAccount(t, svc, userID, "Checking", "0.00")
	create := &transaction.TransactionCreate{
		UserID:      userID,
		AccountID:   acct.ID,
		Date:        day(1),
		Description: "coffee",
		Amount:      money.MustParse("3.50"),
		Type:        transaction.TypeDebit,
		ImportID:    "abc",
	}

	_, err := svc.Transaction.CreateTransaction(context.Background(), create)
	require.NoError(t, err)
	_, err = svc.Transaction.CreateTransaction(context.Background(), create)
	assert.True(t, ledgererr.IsDuplicate(err))
	assert.Equal(t, "-3.50", balanceOf(t, store, acct.ID))
}

func TestCreateTransaction_ConcurrentSameAccount(t *testing.T) {
	svc, store := newTestService(t)
	acct := mustAccount(t, svc, userID, "Checking", "0.00")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			typ := transaction.TypeCredit
			if i%2 == 1 {
				typ = transaction.TypeDebit
			}
			_, err := svc.Transaction.CreateTransaction(context.Background(), &transaction.TransactionCreate{
				UserID:      userID,
				AccountID:   acct.ID,
				Date:        day(1),
				Description: "load",
				Amount:      money.MustParse("1.25"),
				Type:        typ,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "0.00", balanceOf(t, store, acct.ID))
	check, err := svc.Account.RecomputeBalance(context.Background(), userID, acct.ID, false)
	require.NoError(t, err)
	assert.True(t, check.Consistent())
	assert.Equal(t, 40, check.TransactionCount)
}

func TestUpdateTransaction_TypeFlip(t *testing.T) {
	svc, store := newTestService(t)
	acct := mustAccount(t, svc, userID, "Checking", "100.00")
	tx := mustTx(t, svc, acct, transaction.TypeDebit, "10.00", day(1))

	patch := transaction.Patch{}
	require.NoError(t, patch.Set("type", "credit"))
	require.NoError(t, patch.Set("description", "refund"))
	updated, err := svc.Transaction.UpdateTransaction(context.Background(), userID, tx.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, transaction.TypeCredit, updated.Type)
	assert.Equal(t, "refund", updated.Description)
	assert.Equal(t, "110.00", balanceOf(t, store, acct.ID))
}

func TestUpdateTransaction_UnknownField(t *testing.T) {
	patch := transaction.Patch{}
	err := patch.Set("accountId", "x")
	assert.ErrorIs(t, err, transaction.ErrUnknownField)
}

func TestUpdateTransaction_EmptyPatch(t *testing.T) {
	svc, _ := newTestService(t)
	acct := mustAccount(t, svc, userID, "Checking", "0.00")
	tx := mustTx(t, svc, acct, transaction.TypeDebit, "10.00", day(1))

	got, err := svc.Transaction.UpdateTransaction(context.Background(), userID, tx.ID, transaction.Patch{})
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = svc.Transaction.UpdateTransaction(context.Background(), otherID, tx.ID, transaction.Patch{})
	assert.True(t, ledgererr.IsNotFound(err))
}

func TestGetTransaction_OtherUser(t *testing.T) {
	svc, _ := newTestService(t)
	acct := mustAccount(t, svc, userID, "Checking", "0.00")
	tx := mustTx(t, svc, acct, transaction.TypeDebit, "10.00", day(1))

	_, err := svc.Transaction.GetTransaction(context.Background(), otherID, tx.ID)
	assert.True(t, ledgererr.IsNotFound(err))

	err = svc.Transaction.DeleteTransaction(context.Background(), otherID, tx.ID)
	assert.True(t, ledgererr.IsNotFound(err))
}

func TestListTransactions_Pagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	checking := mustAccount(t, svc, userID, "Checking", "0.00")
	savings := mustAccount(t, svc, userID, "Savings", "0.00")
	for i := 1; i <= 5; i++ {
		mustTx(t, svc, checking, transaction.TypeDebit, "1.00", day(i))
	}
	mustTx(t, svc, savings, transaction.TypeCredit, "1.00", day(1))

	first, err := svc.Transaction.ListTransactions(ctx, TransactionQuery{UserID: userID, AccountID: &checking.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, 2, first.NextCursor.Position)

	seen := map[string]bool{}
	for _, tx := range first.Transactions {
		seen[tx.ID.String()] = true
	}
	cursor := first.NextCursor
	for cursor != nil {
		page, err := svc.Transaction.ListTransactions(ctx, TransactionQuery{UserID: userID, AccountID: &checking.ID, Cursor: cursor})
		require.NoError(t, err)
		for _, tx := range page.Transactions {
			assert.False(t, seen[tx.ID.String()])
			seen[tx.ID.String()] = true
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 5)

	all, err := svc.Transaction.ListTransactions(ctx, TransactionQuery{UserID: otherID})
	require.NoError(t, err)
	assert.Empty(t, all.Transactions)
}
