package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

func TestDuplicateDetector(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	checking := mustAccount(t, svc, userID, "Checking", "0.00")
	savings := mustAccount(t, svc, userID, "Savings", "0.00")

	_, err := svc.Transaction.CreateTransaction(ctx, &transaction.TransactionCreate{
		UserID:      userID,
		AccountID:   checking.ID,
		Date:        day(4),
		Description: "Grocery  Store",
		Amount:      money.MustParse("12.00"),
		Type:        transaction.TypeDebit,
		ImportID:    "row-1",
	})
	require.NoError(t, err)

	dup, err := svc.Duplicates.IsDuplicateByImportID(ctx, checking.ID, "row-1")
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = svc.Duplicates.IsDuplicateByImportID(ctx, savings.ID, "row-1")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = svc.Duplicates.IsDuplicateByImportID(ctx, checking.ID, "")
	require.NoError(t, err)
	assert.False(t, dup)

	draft := normalize.Draft{Date: day(4), Amount: money.MustParse("12.00"), Type: transaction.TypeDebit, Description: "grocery store"}
	tests := []struct {
		name   string
		mutate func(d *normalize.Draft)
		want   bool
	}{
		{name: "same", mutate: func(*normalize.Draft) {}, want: true},
		{name: "other date", mutate: func(d *normalize.Draft) { d.Date = day(5) }, want: false},
		{name: "other amount", mutate: func(d *normalize.Draft) { d.Amount = money.MustParse("12.01") }, want: false},
		{name: "other type", mutate: func(d *normalize.Draft) { d.Type = transaction.TypeCredit }, want: false},
		{name: "other description", mutate: func(d *normalize.Draft) { d.Description = "grocery stores" }, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := draft
			tc.mutate(&d)
			got, err := svc.Duplicates.IsDuplicate(ctx, checking.ID, d)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
