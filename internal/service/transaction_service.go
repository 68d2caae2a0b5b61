package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/operator/actions"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

const defaultLimit = 20

// TransactionService handles transaction business logic. Mutations run as
// operator actions so each one changes exactly one balance atomically.
type TransactionService struct {
	storage  *storage.Storage
	operator processor
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store *storage.Storage, op processor) *TransactionService {
	return &TransactionService{storage: store, operator: op}
}

// CreateTransaction persists a transaction and applies its balance effect.
func (s *TransactionService) CreateTransaction(ctx context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	action := &actions.CreateTransaction{Input: create}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

// GetTransaction retrieves a transaction owned by userID.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	tx, err := s.storage.Reader.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ledgererr.NotFound("transaction", id)
	}
	return tx, nil
}

// ListTransactions returns a page of transactions using cursor-based pagination.
func (s *TransactionService) ListTransactions(ctx context.Context, q TransactionQuery) (*transaction.TransactionListResult, error) {
	filter := &transaction.TransactionFilter{
		UserID:     q.UserID,
		AccountID:  q.AccountID,
		CategoryID: q.CategoryID,
		Limit:      defaultLimit,
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	if q.Cursor != nil {
		filter.Offset = q.Cursor.Position
		if q.Cursor.Limit > 0 {
			filter.Limit = q.Cursor.Limit
		}
		maxCreationTime := q.Cursor.MaxCreationTime
		filter.MaxCreationTime = &maxCreationTime
	}
	return s.storage.Reader.Transactions.List(ctx, filter)
}

// UpdateTransaction applies patch. Amount and type changes move the balance
// by the difference of the old and new effects.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch transaction.Patch) (*transaction.Transaction, error) {
	if patch.IsEmpty() {
		return s.GetTransaction(ctx, userID, id)
	}
	action := &actions.UpdateTransaction{UserID: userID, ID: id, Patch: patch}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

// DeleteTransaction reverses the transaction's balance effect and removes it.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return s.operator.Process(ctx, &actions.DeleteTransaction{UserID: userID, ID: id})
}
