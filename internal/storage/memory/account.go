package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

const defaultAccountLimit = 20

type accountReader struct {
	view func() *tables
}

func (r *accountReader) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := r.view().accounts[id]
	if !ok {
		return nil, ledgererr.NotFound("account", id)
	}
	return clone(a), nil
}

func (r *accountReader) List(_ context.Context, filter *account.AccountFilter) (*account.AccountListResult, error) {
	var accounts []*account.Account
	for _, a := range r.view().accounts {
		if a.UserID == filter.UserID {
			accounts = append(accounts, clone(a))
		}
	}

	slices.SortFunc(accounts, func(a, b *account.Account) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})

	limit := defaultAccountLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	if filter.Offset >= len(accounts) {
		return &account.AccountListResult{}, nil
	}
	accounts = accounts[filter.Offset:]

	var next *account.AccountCursor
	if len(accounts) > limit {
		accounts = accounts[:limit]
		next = &account.AccountCursor{Position: filter.Offset + limit, Limit: limit}
	}
	return &account.AccountListResult{Accounts: accounts, NextCursor: next}, nil
}

type accountWriter struct {
	accountReader
	s *Store
}

func (w *accountWriter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return w.FindByID(ctx, id)
}

func (w *accountWriter) Insert(_ context.Context, create *account.AccountCreate) (*account.Account, error) {
	id, err := w.s.newID()
	if err != nil {
		return nil, err
	}
	a := &account.Account{
		ID:              id,
		UserID:          create.UserID,
		Name:            create.Name,
		Type:            create.Type,
		Currency:        create.Currency,
		Balance:         create.StartingBalance,
		StartingBalance: create.StartingBalance,
		CreatedAt:       w.s.now(),
	}
	w.view().accounts[id] = a
	return clone(a), nil
}

func (w *accountWriter) UpdateBalance(_ context.Context, id uuid.UUID, balance money.Amount) error {
	work := w.view()
	a, ok := work.accounts[id]
	if !ok {
		return ledgererr.NotFound("account", id)
	}
	updated := clone(a)
	updated.Balance = balance
	work.accounts[id] = updated
	return nil
}
