package memory

import (
	"context"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

const defaultTransactionLimit = 20

type transactionReader struct {
	view func() *tables
}

// filter returns copies of every stored transaction accepted by keep.
func (r *transactionReader) filter(keep func(*transaction.Transaction) bool) []*transaction.Transaction {
	var out []*transaction.Transaction
	for _, t := range r.view().transactions {
		if keep(t) {
			out = append(out, clone(t))
		}
	}
	return out
}

func byDateThenID(a, b *transaction.Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return compareIDs(a.ID, b.ID)
}

func (r *transactionReader) FindByID(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, ok := r.view().transactions[id]
	if !ok {
		return nil, ledgererr.NotFound("transaction", id)
	}
	return clone(t), nil
}

func (r *transactionReader) List(_ context.Context, filter *transaction.TransactionFilter) (*transaction.TransactionListResult, error) {
	txs := r.filter(func(t *transaction.Transaction) bool {
		if t.UserID != filter.UserID {
			return false
		}
		if filter.AccountID != nil && t.AccountID != *filter.AccountID {
			return false
		}
		if filter.CategoryID != nil && (!t.CategoryID.Valid || t.CategoryID.UUID != *filter.CategoryID) {
			return false
		}
		return filter.MaxCreationTime == nil || !t.CreatedAt.After(*filter.MaxCreationTime)
	})
	slices.SortFunc(txs, func(a, b *transaction.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})

	limit := defaultTransactionLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	if filter.Offset >= len(txs) {
		return &transaction.TransactionListResult{}, nil
	}
	txs = txs[filter.Offset:]
	if len(txs) > limit+1 {
		txs = txs[:limit+1]
	}
	return transaction.Paginate(txs, filter, limit), nil
}

func (r *transactionReader) ExistsByImportID(_ context.Context, accountID uuid.UUID, importID string) (bool, error) {
	if importID == "" {
		return false, nil
	}
	return importIDTaken(r.view(), accountID, importID), nil
}

func importIDTaken(tb *tables, accountID uuid.UUID, importID string) bool {
	for _, t := range tb.transactions {
		if t.AccountID == accountID && t.ImportID == importID {
			return true
		}
	}
	return false
}

func (r *transactionReader) FindSimilar(_ context.Context, accountID uuid.UUID, date time.Time, amount money.Amount, txType transaction.Type) ([]*transaction.Transaction, error) {
	day := transaction.DayOf(date)
	txs := r.filter(func(t *transaction.Transaction) bool {
		return t.AccountID == accountID && t.Date.Equal(day) && t.Amount == amount && t.Type == txType
	})
	slices.SortFunc(txs, func(a, b *transaction.Transaction) int { return compareIDs(a.ID, b.ID) })
	return txs, nil
}

func (r *transactionReader) FindCandidates(_ context.Context, q *transaction.CandidateQuery) ([]*transaction.Transaction, error) {
	from, to := transaction.DayOf(q.From), transaction.DayOf(q.To)
	txs := r.filter(func(t *transaction.Transaction) bool {
		return t.UserID == q.UserID &&
			t.AccountID != q.AccountID &&
			t.ID != q.SourceID &&
			t.Type == q.Type &&
			t.Amount == q.Amount &&
			!t.IsLinked() &&
			!t.Date.Before(from) && !t.Date.After(to)
	})
	slices.SortFunc(txs, byDateThenID)
	return txs, nil
}

func (r *transactionReader) ListUnlinked(_ context.Context, q *transaction.UnlinkedQuery) (*transaction.UnlinkedPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	unlinked := r.filter(func(t *transaction.Transaction) bool {
		return t.UserID == q.UserID && !t.IsLinked()
	})
	slices.SortFunc(unlinked, byDateThenID)

	page := &transaction.UnlinkedPage{Total: len(unlinked)}
	for _, t := range unlinked {
		if q.After != nil {
			after := &transaction.Transaction{Date: transaction.DayOf(q.After.Date), ID: q.After.ID}
			if byDateThenID(t, after) <= 0 {
				continue
			}
		}
		if len(page.Transactions) == limit {
			last := page.Transactions[limit-1]
			page.Next = &transaction.UnlinkedCursor{Date: last.Date, ID: last.ID}
			break
		}
		page.Transactions = append(page.Transactions, t)
	}
	return page, nil
}

func (r *transactionReader) SumByAccount(_ context.Context, accountID uuid.UUID) (*transaction.AccountTotals, error) {
	totals := &transaction.AccountTotals{}
	for _, t := range r.view().transactions {
		if t.AccountID != accountID {
			continue
		}
		totals.Count++
		if t.Type == transaction.TypeCredit {
			totals.Credits = totals.Credits.Add(t.Amount)
		} else {
			totals.Debits = totals.Debits.Add(t.Amount)
		}
	}
	return totals, nil
}

type transactionWriter struct {
	transactionReader
	s *Store
}

func (w *transactionWriter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return w.FindByID(ctx, id)
}

func (w *transactionWriter) Insert(_ context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	id, err := w.s.newID()
	if err != nil {
		return nil, err
	}
	now := w.s.now()
	t := &transaction.Transaction{
		ID:          id,
		UserID:      create.UserID,
		AccountID:   create.AccountID,
		Date:        transaction.DayOf(create.Date),
		Description: create.Description,
		Amount:      create.Amount,
		Type:        create.Type,
		CategoryID:  create.CategoryID,
		Vendor:      create.Vendor,
		Reference:   create.Reference,
		Notes:       create.Notes,
		ImportID:    create.ImportID,
		Reconciled:  create.Reconciled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	work := w.view()
	if _, ok := work.accounts[create.AccountID]; !ok {
		return nil, ledgererr.NotFound("account", create.AccountID)
	}
	if create.ImportID != "" && importIDTaken(work, create.AccountID, create.ImportID) {
		return nil, &ledgererr.DuplicateError{AccountID: create.AccountID.String(), ImportID: create.ImportID}
	}
	work.transactions[id] = t
	return clone(t), nil
}

func (w *transactionWriter) Save(_ context.Context, t *transaction.Transaction) error {
	work := w.view()
	if _, ok := work.transactions[t.ID]; !ok {
		return ledgererr.NotFound("transaction", t.ID)
	}
	t.Date = transaction.DayOf(t.Date)
	t.UpdatedAt = w.s.now()
	work.transactions[t.ID] = clone(t)
	return nil
}

func (w *transactionWriter) Delete(_ context.Context, id uuid.UUID) error {
	work := w.view()
	if _, ok := work.transactions[id]; !ok {
		return ledgererr.NotFound("transaction", id)
	}
	delete(work.transactions, id)
	// Mirrors ON DELETE SET NULL.
	for otherID, other := range work.transactions {
		if other.LinkedTransactionID.Valid && other.LinkedTransactionID.UUID == id {
			updated := clone(other)
			updated.LinkedTransactionID = uuid.NullUUID{}
			work.transactions[otherID] = updated
		}
	}
	return nil
}
