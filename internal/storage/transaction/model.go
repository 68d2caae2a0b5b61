package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
)

// Type is the direction of a transaction relative to its account.
type Type string

const (
	TypeCredit Type = "credit"
	TypeDebit  Type = "debit"
)

var ErrUnknownField = errors.New("unknown field")

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeCredit, TypeDebit:
		return t, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q", s)
	}
}

func (t Type) Valid() bool {
	return t == TypeCredit || t == TypeDebit
}

func (t Type) Opposite() Type {
	if t == TypeCredit {
		return TypeDebit
	}
	return TypeCredit
}

// Effect is the signed change a transaction of this type and amount makes to
// its account balance.
func Effect(t Type, amount money.Amount) money.Amount {
	if t == TypeDebit {
		return amount.Neg()
	}
	return amount
}

// Transaction represents a transaction record. Amount is always a magnitude;
// the direction lives in Type. Empty optional strings are stored as NULL.
type Transaction struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	AccountID           uuid.UUID
	Date                time.Time
	Description         string
	Amount              money.Amount
	Type                Type
	CategoryID          uuid.NullUUID
	Vendor              string
	Reference           string
	Notes               string
	ImportID            string
	Reconciled          bool
	LinkedTransactionID uuid.NullUUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (t *Transaction) Effect() money.Amount {
	return Effect(t.Type, t.Amount)
}

func (t *Transaction) IsLinked() bool {
	return t.LinkedTransactionID.Valid
}

// TransactionCreate is the input for creating a new transaction.
type TransactionCreate struct {
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Date        time.Time
	Description string
	Amount      money.Amount
	Type        Type
	CategoryID  uuid.NullUUID
	Vendor      string
	Reference   string
	Notes       string
	ImportID    string
	Reconciled  bool
}

// TransactionFilter specifies filters for listing transactions.
type TransactionFilter struct {
	UserID          uuid.UUID
	AccountID       *uuid.UUID
	CategoryID      *uuid.UUID
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxCreationTime so subsequent pages are consistent.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

// TransactionListResult contains a page of transactions and an optional next cursor.
type TransactionListResult struct {
	Transactions []*Transaction
	NextCursor   *TransactionCursor
}

// CandidateQuery selects possible transfer counterparts of a source
// transaction: same user, another account, opposite type, equal amount,
// unlinked, dated within [From, To].
type CandidateQuery struct {
	UserID    uuid.UUID
	SourceID  uuid.UUID
	AccountID uuid.UUID
	Type      Type
	Amount    money.Amount
	From      time.Time
	To        time.Time
}

// UnlinkedCursor is a keyset position over (date, id).
type UnlinkedCursor struct {
	Date time.Time
	ID   uuid.UUID
}

type UnlinkedQuery struct {
	UserID uuid.UUID
	After  *UnlinkedCursor
	Limit  int
}

// UnlinkedPage is one page of unlinked transactions ordered by date then id.
// Total counts every unlinked transaction of the user at query time.
type UnlinkedPage struct {
	Transactions []*Transaction
	Total        int
	Next         *UnlinkedCursor
}

// AccountTotals is the sum of credit and debit amounts of one account.
type AccountTotals struct {
	Credits money.Amount
	Debits  money.Amount
	Count   int
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, filter *TransactionFilter) (*TransactionListResult, error)
	ExistsByImportID(ctx context.Context, accountID uuid.UUID, importID string) (bool, error)
	FindSimilar(ctx context.Context, accountID uuid.UUID, date time.Time, amount money.Amount, txType Type) ([]*Transaction, error)
	FindCandidates(ctx context.Context, query *CandidateQuery) ([]*Transaction, error)
	ListUnlinked(ctx context.Context, query *UnlinkedQuery) (*UnlinkedPage, error)
	SumByAccount(ctx context.Context, accountID uuid.UUID) (*AccountTotals, error)
}

type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DayOf truncates t to its UTC calendar date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
