package transaction

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/storage/pgerr"
)

var _ IWriter = (*Writer)(nil)

type Writer struct {
	tx bob.Executor
	Reader
}

func NewWriter(tx bob.Executor) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return w.one(ctx, id, sm.ForUpdate())
}

func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	q := psql.Insert(
		im.Into(tableName, columns...),
		im.Values(psql.Arg(
			id, create.UserID, create.AccountID, DayOf(create.Date), create.Description,
			create.Amount, string(create.Type), create.CategoryID, nullString(create.Vendor),
			nullString(create.Reference), nullString(create.Notes), nullString(create.ImportID),
			create.Reconciled, uuid.NullUUID{}, now, now,
		)),
		im.Returning(anyColumns()...),
	)
	res, err := bob.One(ctx, w.tx, q, scan.StructMapper[row]())
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, &ledgererr.DuplicateError{AccountID: create.AccountID.String(), ImportID: create.ImportID}
		}
		return nil, err
	}
	return rowToTransaction(&res), nil
}

// Save writes every mutable column of tx and refreshes UpdatedAt.
func (w *Writer) Save(ctx context.Context, tx *Transaction) error {
	tx.UpdatedAt = time.Now().UTC()
	q := psql.Update(
		um.Table(tableName),
		um.SetCol("date").ToArg(DayOf(tx.Date)),
		um.SetCol("description").ToArg(tx.Description),
		um.SetCol("amount").ToArg(tx.Amount),
		um.SetCol("type").ToArg(string(tx.Type)),
		um.SetCol("category_id").ToArg(tx.CategoryID),
		um.SetCol("vendor").ToArg(nullString(tx.Vendor)),
		um.SetCol("reference").ToArg(nullString(tx.Reference)),
		um.SetCol("notes").ToArg(nullString(tx.Notes)),
		um.SetCol("reconciled").ToArg(tx.Reconciled),
		um.SetCol("linked_transaction_id").ToArg(tx.LinkedTransactionID),
		um.SetCol("updated_at").ToArg(tx.UpdatedAt),
		um.Where(col("id").EQ(psql.Arg(tx.ID))),
	)
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledgererr.NotFound("transaction", tx.ID)
	}
	return nil
}

func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	q := psql.Delete(
		dm.From(tableName),
		dm.Where(col("id").EQ(psql.Arg(id))),
	)
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledgererr.NotFound("transaction", id)
	}
	return nil
}

func anyColumns() []any {
	cols := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = c
	}
	return cols
}
