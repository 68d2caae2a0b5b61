package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/account"
)

const defaultAccountLimit = 20

// AccountService handles account business logic.
type AccountService struct {
	storage  *storage.Storage
	operator processor
}

// NewAccountService creates a new AccountService.
func NewAccountService(store *storage.Storage, op processor) *AccountService {
	return &AccountService{storage: store, operator: op}
}

// CreateAccount creates an account whose balance starts at its starting
// balance.
func (s *AccountService) CreateAccount(ctx context.Context, in NewAccount) (*account.Account, error) {
	if in.Type == "" {
		in.Type = account.AccountTypeChecking
	}
	if _, err := account.ParseAccountType(string(in.Type)); err != nil {
		return nil, &ledgererr.ValidationError{Field: "type", Err: err}
	}

	action := &actions.CreateAccount{
		UserID:          in.UserID,
		Name:            in.Name,
		Type:            in.Type,
		Currency:        in.Currency,
		StartingBalance: in.StartingBalance,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

// GetAccount retrieves an account owned by userID.
func (s *AccountService) GetAccount(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	acct, err := s.storage.Reader.Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		return nil, ledgererr.NotFound("account", id)
	}
	return acct, nil
}

// ListAccounts returns a page of the user's accounts using cursor pagination.
func (s *AccountService) ListAccounts(ctx context.Context, userID uuid.UUID, cursor *account.AccountCursor) (*account.AccountListResult, error) {
	filter := &account.AccountFilter{UserID: userID, Limit: defaultAccountLimit}
	if cursor != nil {
		filter.Offset = cursor.Position
		if cursor.Limit > 0 {
			filter.Limit = cursor.Limit
		}
	}
	return s.storage.Reader.Accounts.List(ctx, filter)
}

// RecomputeBalance sums the account's transactions from scratch and compares
// the result with the stored balance. With repair set, a disagreeing stored
// balance is overwritten.
func (s *AccountService) RecomputeBalance(ctx context.Context, userID, id uuid.UUID, repair bool) (*actions.BalanceCheck, error) {
	action := &actions.RecomputeBalance{UserID: userID, AccountID: id, Repair: repair}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

// Reconcile compares a statement balance with the ledger balance within
// tolerance.
func (s *AccountService) Reconcile(ctx context.Context, userID, id uuid.UUID, statementBalance, tolerance money.Amount) (*Reconciliation, error) {
	acct, err := s.GetAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		AccountID:        acct.ID,
		LedgerBalance:    acct.Balance,
		StatementBalance: statementBalance,
		Difference:       statementBalance.Sub(acct.Balance),
		Tolerance:        tolerance.Abs(),
		Matched:          money.EqualWithinTolerance(statementBalance, acct.Balance, tolerance),
	}, nil
}
