package account

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
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

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	return w.find(ctx, id, sm.ForUpdate())
}

func (w *Writer) Insert(ctx context.Context, create *AccountCreate) (*Account, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	returning := make([]any, len(columns))
	for i, c := range columns {
		returning[i] = c
	}

	q := psql.Insert(
		im.Into(tableName, columns...),
		im.Values(psql.Arg(
			id, create.UserID, create.Name, string(create.Type), create.Currency,
			create.StartingBalance, create.StartingBalance, time.Now().UTC(),
		)),
		im.Returning(returning...),
	)
	res, err := bob.One(ctx, w.tx, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowToAccount(&res), nil
}

func (w *Writer) UpdateBalance(ctx context.Context, id uuid.UUID, balance money.Amount) error {
	q := psql.Update(
		um.Table(tableName),
		um.SetCol("balance").ToArg(balance),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledgererr.NotFound("account", id)
	}
	return nil
}
