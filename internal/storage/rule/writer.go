package rule

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
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

func (w *Writer) Insert(ctx context.Context, create *RuleCreate) (*Rule, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	returning := make([]any, len(columns))
	for i, c := range columns {
		returning[i] = c
	}

	q := psql.Insert(
		im.Into(tableName, columns...),
		im.Values(psql.Arg(
			id, create.UserID, create.Pattern, string(create.Field), string(create.MatchType),
			create.Priority, create.CategoryID, nullString(create.VendorName), create.Active, now, now,
		)),
		im.Returning(returning...),
	)
	res, err := bob.One(ctx, w.tx, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowToRule(&res), nil
}

func (w *Writer) Save(ctx context.Context, r *Rule) error {
	r.UpdatedAt = time.Now().UTC()
	q := psql.Update(
		um.Table(tableName),
		um.SetCol("pattern").ToArg(r.Pattern),
		um.SetCol("field").ToArg(string(r.Field)),
		um.SetCol("match_type").ToArg(string(r.MatchType)),
		um.SetCol("priority").ToArg(r.Priority),
		um.SetCol("category_id").ToArg(r.CategoryID),
		um.SetCol("vendor_name").ToArg(nullString(r.VendorName)),
		um.SetCol("active").ToArg(r.Active),
		um.SetCol("updated_at").ToArg(r.UpdatedAt),
		um.Where(psql.Quote("id").EQ(psql.Arg(r.ID))),
	)
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledgererr.NotFound("rule", r.ID)
	}
	return nil
}

func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	q := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledgererr.NotFound("rule", id)
	}
	return nil
}
