package transaction

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
)

const defaultListLimit = 20

var _ IReader = (*Reader)(nil)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func col(name string) dialect.Expression {
	return psql.Quote(name)
}

func selectColumns() bob.Mod[*dialect.SelectQuery] {
	cols := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = col(c)
	}
	return sm.Columns(cols...)
}

func (r *Reader) one(ctx context.Context, id uuid.UUID, mods ...bob.Mod[*dialect.SelectQuery]) (*Transaction, error) {
	mods = append([]bob.Mod[*dialect.SelectQuery]{
		selectColumns(),
		sm.From(tableName),
		sm.Where(col("id").EQ(psql.Arg(id))),
	}, mods...)
	res, err := bob.One(ctx, r.exec, psql.Select(mods...), scan.StructMapper[row]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledgererr.NotFound("transaction", id)
	}
	if err != nil {
		return nil, err
	}
	return rowToTransaction(&res), nil
}

func (r *Reader) all(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) ([]*Transaction, error) {
	mods = append([]bob.Mod[*dialect.SelectQuery]{selectColumns(), sm.From(tableName)}, mods...)
	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	result := make([]*Transaction, len(rows))
	for i := range rows {
		result[i] = rowToTransaction(&rows[i])
	}
	return result, nil
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.one(ctx, id)
}

// List returns a page of the user's transactions, newest first.
func (r *Reader) List(ctx context.Context, filter *TransactionFilter) (*TransactionListResult, error) {
	limit := defaultListLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Where(col("user_id").EQ(psql.Arg(filter.UserID))),
	}
	if filter.AccountID != nil {
		queryMods = append(queryMods, sm.Where(col("account_id").EQ(psql.Arg(*filter.AccountID))))
	}
	if filter.CategoryID != nil {
		queryMods = append(queryMods, sm.Where(col("category_id").EQ(psql.Arg(*filter.CategoryID))))
	}
	if filter.MaxCreationTime != nil {
		queryMods = append(queryMods, sm.Where(col("created_at").LTE(psql.Arg(*filter.MaxCreationTime))))
	}
	queryMods = append(queryMods,
		sm.OrderBy(col("created_at")).Desc(),
		sm.OrderBy(col("id")).Desc(),
		sm.Limit(limit+1),
		sm.Offset(filter.Offset),
	)

	txs, err := r.all(ctx, queryMods...)
	if err != nil {
		return nil, err
	}
	return Paginate(txs, filter, limit), nil
}

// Paginate trims a result fetched with a limit+1 probe and derives the next
// cursor.
func Paginate(txs []*Transaction, filter *TransactionFilter, limit int) *TransactionListResult {
	if len(txs) == 0 {
		return &TransactionListResult{}
	}
	var next *TransactionCursor
	if len(txs) > limit {
		txs = txs[:limit]
		maxCreationTime := txs[0].CreatedAt
		if filter.MaxCreationTime != nil {
			maxCreationTime = *filter.MaxCreationTime
		}
		next = &TransactionCursor{
			Position:        filter.Offset + limit,
			Limit:           limit,
			MaxCreationTime: maxCreationTime,
		}
	}
	return &TransactionListResult{Transactions: txs, NextCursor: next}
}

func (r *Reader) ExistsByImportID(ctx context.Context, accountID uuid.UUID, importID string) (bool, error) {
	if importID == "" {
		return false, nil
	}
	q := psql.Select(
		sm.Columns("count(*)"),
		sm.From(tableName),
		sm.Where(col("account_id").EQ(psql.Arg(accountID))),
		sm.Where(col("import_id").EQ(psql.Arg(importID))),
	)
	n, err := bob.One(ctx, r.exec, q, scan.SingleColumnMapper[int64])
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Reader) FindSimilar(ctx context.Context, accountID uuid.UUID, date time.Time, amount money.Amount, txType Type) ([]*Transaction, error) {
	return r.all(ctx,
		sm.Where(col("account_id").EQ(psql.Arg(accountID))),
		sm.Where(col("date").EQ(psql.Arg(DayOf(date)))),
		sm.Where(col("amount").EQ(psql.Arg(amount))),
		sm.Where(col("type").EQ(psql.Arg(string(txType)))),
		sm.OrderBy(col("id")).Asc(),
	)
}

func (r *Reader) FindCandidates(ctx context.Context, query *CandidateQuery) ([]*Transaction, error) {
	return r.all(ctx,
		sm.Where(col("user_id").EQ(psql.Arg(query.UserID))),
		sm.Where(col("account_id").NE(psql.Arg(query.AccountID))),
		sm.Where(col("id").NE(psql.Arg(query.SourceID))),
		sm.Where(col("type").EQ(psql.Arg(string(query.Type)))),
		sm.Where(col("amount").EQ(psql.Arg(query.Amount))),
		sm.Where(col("linked_transaction_id").IsNull()),
		sm.Where(col("date").GTE(psql.Arg(DayOf(query.From)))),
		sm.Where(col("date").LTE(psql.Arg(DayOf(query.To)))),
		sm.OrderBy(col("date")).Asc(),
		sm.OrderBy(col("id")).Asc(),
	)
}

func (r *Reader) ListUnlinked(ctx context.Context, query *UnlinkedQuery) (*UnlinkedPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	countQuery := psql.Select(
		sm.Columns("count(*)"),
		sm.From(tableName),
		sm.Where(col("user_id").EQ(psql.Arg(query.UserID))),
		sm.Where(col("linked_transaction_id").IsNull()),
	)
	total, err := bob.One(ctx, r.exec, countQuery, scan.SingleColumnMapper[int64])
	if err != nil {
		return nil, err
	}

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Where(col("user_id").EQ(psql.Arg(query.UserID))),
		sm.Where(col("linked_transaction_id").IsNull()),
	}
	if query.After != nil {
		queryMods = append(queryMods, sm.Where(psql.Raw(`("date", "id") > (?, ?)`, DayOf(query.After.Date), query.After.ID)))
	}
	queryMods = append(queryMods,
		sm.OrderBy(col("date")).Asc(),
		sm.OrderBy(col("id")).Asc(),
		sm.Limit(limit+1),
	)
	txs, err := r.all(ctx, queryMods...)
	if err != nil {
		return nil, err
	}

	page := &UnlinkedPage{Transactions: txs, Total: int(total)}
	if len(txs) > limit {
		page.Transactions = txs[:limit]
		last := page.Transactions[limit-1]
		page.Next = &UnlinkedCursor{Date: last.Date, ID: last.ID}
	}
	return page, nil
}

func (r *Reader) SumByAccount(ctx context.Context, accountID uuid.UUID) (*AccountTotals, error) {
	q := psql.Select(
		sm.Columns(
			`COALESCE(SUM("amount") FILTER (WHERE "type" = 'credit'), 0) AS "credits"`,
			`COALESCE(SUM("amount") FILTER (WHERE "type" = 'debit'), 0) AS "debits"`,
			`count(*) AS "count"`,
		),
		sm.From(tableName),
		sm.Where(col("account_id").EQ(psql.Arg(accountID))),
	)
	res, err := bob.One(ctx, r.exec, q, scan.StructMapper[totalsRow]())
	if err != nil {
		return nil, err
	}
	return &AccountTotals{Credits: res.Credits, Debits: res.Debits, Count: int(res.Count)}, nil
}
