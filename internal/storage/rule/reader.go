package rule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
)

var _ IReader = (*Reader)(nil)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func quotedColumns() []any {
	cols := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = psql.Quote(c)
	}
	return cols
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Rule, error) {
	q := psql.Select(
		sm.Columns(quotedColumns()...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	res, err := bob.One(ctx, r.exec, q, scan.StructMapper[row]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("rule", id)
	}
	if err != nil {
		return nil, err
	}
	return rowToRule(&res), nil
}

// ListByUser returns all of a user's rules, active or not, in evaluation order.
func (r *Reader) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Rule, error) {
	q := psql.Select(
		sm.Columns(quotedColumns()...),
		sm.From(tableName),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.OrderBy(psql.Quote("priority")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	result := make([]*Rule, len(rows))
	for i := range rows {
		result[i] = rowToRule(&rows[i])
	}
	return result, nil
}
