package storage_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
	"github.com/carson-networks/budget-ledger/internal/storage/migrations"
	"github.com/carson-networks/budget-ledger/internal/storage/rule"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

func newPostgresStorage(t *testing.T) *storage.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("testpassword"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	res, err := migrations.Up(db)
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.PostVersion)

	s := storage.NewFromDB(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStorage(t *testing.T) {
	s := newPostgresStorage(t)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	day := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	w, err := s.Write(ctx)
	require.NoError(t, err)
	checking, err := w.Account.Insert(ctx, &account.AccountCreate{
		UserID: userID, Name: "Checking", Type: account.AccountTypeChecking,
		Currency: "USD", StartingBalance: money.MustParse("100.00"),
	})
	require.NoError(t, err)
	savings, err := w.Account.Insert(ctx, &account.AccountCreate{
		UserID: userID, Name: "Savings", Type: account.AccountTypeSavings,
		Currency: "USD", StartingBalance: money.MustParse("0.00"),
	})
	require.NoError(t, err)

	debit, err := w.Transaction.Insert(ctx, &transaction.TransactionCreate{
		UserID: userID, AccountID: checking.ID, Date: day, Description: "To savings",
		Amount: money.MustParse("45.50"), Type: transaction.TypeDebit, ImportID: "imp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, day, debit.Date)
	assert.Equal(t, "imp-1", debit.ImportID)
	assert.Empty(t, debit.Vendor)

	credit, err := w.Transaction.Insert(ctx, &transaction.TransactionCreate{
		UserID: userID, AccountID: savings.ID, Date: day.AddDate(0, 0, 1), Description: "From checking",
		Amount: money.MustParse("45.50"), Type: transaction.TypeCredit,
	})
	require.NoError(t, err)
	require.NoError(t, w.Account.UpdateBalance(ctx, checking.ID, money.MustParse("54.50")))
	require.NoError(t, w.Commit())

	t.Run("duplicate import id", func(t *testing.T) {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		_, err = w.Transaction.Insert(ctx, &transaction.TransactionCreate{
			UserID: userID, AccountID: checking.ID, Date: day, Description: "again",
			Amount: money.MustParse("1.00"), Type: transaction.TypeDebit, ImportID: "imp-1",
		})
		assert.True(t, ledgererr.IsDuplicate(err))
		require.NoError(t, w.Rollback())
	})

	t.Run("reads", func(t *testing.T) {
		acct, err := s.Reader.Accounts.FindByID(ctx, checking.ID)
		require.NoError(t, err)
		assert.Equal(t, money.MustParse("54.50"), acct.Balance)

		exists, err := s.Reader.Transactions.ExistsByImportID(ctx, checking.ID, "imp-1")
		require.NoError(t, err)
		assert.True(t, exists)

		candidates, err := s.Reader.Transactions.FindCandidates(ctx, &transaction.CandidateQuery{
			UserID: userID, SourceID: debit.ID, AccountID: checking.ID, Type: transaction.TypeCredit,
			Amount: debit.Amount, From: day.AddDate(0, 0, -3), To: day.AddDate(0, 0, 3),
		})
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, credit.ID, candidates[0].ID)

		page, err := s.Reader.Transactions.ListUnlinked(ctx, &transaction.UnlinkedQuery{UserID: userID, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		require.NotNil(t, page.Next)
		assert.Equal(t, debit.ID, page.Transactions[0].ID)

		totals, err := s.Reader.Transactions.SumByAccount(ctx, checking.ID)
		require.NoError(t, err)
		assert.Equal(t, money.MustParse("45.50"), totals.Debits)
		assert.Equal(t, 1, totals.Count)
	})

	t.Run("link and delete", func(t *testing.T) {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		a, err := w.Transaction.FindByIDForUpdate(ctx, debit.ID)
		require.NoError(t, err)
		b, err := w.Transaction.FindByIDForUpdate(ctx, credit.ID)
		require.NoError(t, err)
		a.LinkedTransactionID = uuid.NullUUID{UUID: b.ID, Valid: true}
		b.LinkedTransactionID = uuid.NullUUID{UUID: a.ID, Valid: true}
		require.NoError(t, w.Transaction.Save(ctx, a))
		require.NoError(t, w.Transaction.Save(ctx, b))
		require.NoError(t, w.Transaction.Delete(ctx, a.ID))
		require.NoError(t, w.Commit())

		got, err := s.Reader.Transactions.FindByID(ctx, credit.ID)
		require.NoError(t, err)
		assert.False(t, got.IsLinked())
	})

	t.Run("rules", func(t *testing.T) {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		r, err := w.Rule.Insert(ctx, &rule.RuleCreate{
			UserID: userID, Pattern: "starbucks", Field: rule.FieldDescription,
			MatchType: rule.MatchContains, Priority: 5, Active: true,
		})
		require.NoError(t, err)
		r.Priority = 1
		require.NoError(t, w.Rule.Save(ctx, r))
		require.NoError(t, w.Commit())

		rules, err := s.Reader.Rules.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, 1, rules[0].Priority)
	})
}
