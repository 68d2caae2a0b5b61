package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

// DuplicateDetector checks drafts against transactions already stored for an
// account.
type DuplicateDetector struct {
	reader transaction.IReader
}

func NewDuplicateDetector(store *storage.Storage) *DuplicateDetector {
	return &DuplicateDetector{reader: store.Reader.Transactions}
}

// IsDuplicateByImportID is the exact check that makes re-imports idempotent.
func (d *DuplicateDetector) IsDuplicateByImportID(ctx context.Context, accountID uuid.UUID, importID string) (bool, error) {
	if importID == "" {
		return false, nil
	}
	return d.reader.ExistsByImportID(ctx, accountID, importID)
}

// IsDuplicate reports whether a stored transaction has the same date, amount,
// type and normalized description. It is a heuristic for sources without
// stable ids.
func (d *DuplicateDetector) IsDuplicate(ctx context.Context, accountID uuid.UUID, draft normalize.Draft) (bool, error) {
	return d.isDuplicateExcept(ctx, accountID, draft, nil)
}

func (d *DuplicateDetector) isDuplicateExcept(ctx context.Context, accountID uuid.UUID, draft normalize.Draft, except map[uuid.UUID]struct{}) (bool, error) {
	similar, err := d.reader.FindSimilar(ctx, accountID, draft.Date, draft.Amount, draft.Type)
	if err != nil {
		return false, err
	}
	want := normalize.NormalizeDescription(draft.Description)
	for _, tx := range similar {
		if _, skip := except[tx.ID]; skip {
			continue
		}
		if normalize.NormalizeDescription(tx.Description) == want {
			return true, nil
		}
	}
	return false, nil
}
