package transaction

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
)

const tableName = "transactions"

var columns = []string{
	"id", "user_id", "account_id", "date", "description", "amount", "type",
	"category_id", "vendor", "reference", "notes", "import_id", "reconciled",
	"linked_transaction_id", "created_at", "updated_at",
}

type row struct {
	ID                  uuid.UUID      `db:"id"`
	UserID              uuid.UUID      `db:"user_id"`
	AccountID           uuid.UUID      `db:"account_id"`
	Date                time.Time      `db:"date"`
	Description         string         `db:"description"`
	Amount              money.Amount   `db:"amount"`
	Type                string         `db:"type"`
	CategoryID          uuid.NullUUID  `db:"category_id"`
	Vendor              sql.NullString `db:"vendor"`
	Reference           sql.NullString `db:"reference"`
	Notes               sql.NullString `db:"notes"`
	ImportID            sql.NullString `db:"import_id"`
	Reconciled          bool           `db:"reconciled"`
	LinkedTransactionID uuid.NullUUID  `db:"linked_transaction_id"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

type totalsRow struct {
	Credits money.Amount `db:"credits"`
	Debits  money.Amount `db:"debits"`
	Count   int64        `db:"count"`
}

func rowToTransaction(r *row) *Transaction {
	return &Transaction{
		ID:                  r.ID,
		UserID:              r.UserID,
		AccountID:           r.AccountID,
		Date:                DayOf(r.Date),
		Description:         r.Description,
		Amount:              r.Amount,
		Type:                Type(r.Type),
		CategoryID:          r.CategoryID,
		Vendor:              r.Vendor.String,
		Reference:           r.Reference.String,
		Notes:               r.Notes.String,
		ImportID:            r.ImportID.String,
		Reconciled:          r.Reconciled,
		LinkedTransactionID: r.LinkedTransactionID,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
