package service

import (
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/statement"
)

// ImportRequest describes one statement file to ingest.
//
// Delimited files go to AccountID using Mapping; a nil Mapping is guessed
// from the header row. Structured files route each source account through
// AccountMapping. When AccountMapping is empty and AccountID is set, every
// source account goes to AccountID.
type ImportRequest struct {
	UserID         uuid.UUID
	Data           []byte
	Format         statement.Format
	Filename       string
	AccountID      uuid.UUID
	Mapping        *normalize.ColumnMapping
	AccountMapping map[string]uuid.UUID
	SkipDuplicates bool
	// Limit caps the number of previewed rows. Import ignores it.
	Limit int
}

// RowFailure is a record that could not be turned into a transaction. Row is
// the zero-based data row index.
type RowFailure struct {
	Row             int
	SourceAccountID string
	Error           string
}

type DraftPreview struct {
	Row                 int
	SourceAccountID     string
	Draft               normalize.Draft
	DuplicateByImportID bool
	LikelyDuplicate     bool
}

type AccountSummary struct {
	SourceAccountID      string
	Type                 string
	Currency             string
	DestinationAccountID uuid.NullUUID
	TransactionCount     int
	StatementBalance     *money.Amount
}

type PreviewResult struct {
	Format            statement.Format
	Transactions      []DraftPreview
	TotalRows         int
	ValidTransactions int
	Duplicates        int
	Errors            []RowFailure
	AccountSummaries  []AccountSummary
}

// AccountResult reports one source account imported into one destination.
// BalanceDifference is the statement balance minus the ledger balance after
// the import and is only set when the statement carries a balance.
type AccountResult struct {
	DestinationAccountID uuid.UUID
	SourceAccountID      string
	Imported             int
	Skipped              int
	StatementBalance     *money.Amount
	BalanceDifference    *money.Amount
}

type ImportResult struct {
	Imported         int
	Skipped          int
	Errors           []RowFailure
	AccountResults   []AccountResult
	UnmappedAccounts []string
}
