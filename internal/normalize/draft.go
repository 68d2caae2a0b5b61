// Package normalize turns raw statement records into transaction drafts and
// derives their import ids.
package normalize

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// Draft is a normalized transaction that has not been persisted. Amount is
// the unsigned magnitude.
type Draft struct {
	Date        time.Time
	Amount      money.Amount
	Type        transaction.Type
	Description string
	Vendor      string
	Reference   string
	CategoryID  uuid.NullUUID
	ImportID    string
}

// SignedAmount is positive for credits and negative for debits.
func (d *Draft) SignedAmount() money.Amount {
	return transaction.Effect(d.Type, d.Amount)
}
