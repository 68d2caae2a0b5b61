// Package statementimport serves statement file previews and imports.
package statementimport

import (
	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// ColumnMapping names the zero-based columns of a delimited file.
type ColumnMapping struct {
	Date        int    `json:"date" minimum:"0"`
	Amount      int    `json:"amount" minimum:"0"`
	Description int    `json:"description" minimum:"0"`
	Type        *int   `json:"type,omitempty" minimum:"0" doc:"Optional credit/debit column; otherwise the amount sign decides"`
	Vendor      *int   `json:"vendor,omitempty" minimum:"0"`
	Reference   *int   `json:"reference,omitempty" minimum:"0"`
	DateFormat  string `json:"dateFormat,omitempty" doc:"Go time layout, e.g. 01/02/2006"`
}

// ImportBody is shared by preview and import.
type ImportBody struct {
	Filename       string            `json:"filename,omitempty" doc:"Used to detect the format when format is empty"`
	Format         string            `json:"format,omitempty" enum:"csv,ofx,qfx"`
	Content        []byte            `json:"content,omitempty" doc:"Base64 file content"`
	Text           string            `json:"text,omitempty" doc:"Plain text file content, used when content is empty"`
	AccountID      string            `json:"accountId,omitempty" doc:"Destination of a delimited file, or of every source account of a structured file without accountMapping"`
	Mapping        *ColumnMapping    `json:"mapping,omitempty" doc:"Column mapping, guessed from the header row when absent"`
	AccountMapping map[string]string `json:"accountMapping,omitempty" doc:"Source account id to destination account UUID"`
	SkipDuplicates bool              `json:"skipDuplicates,omitempty" doc:"Also skip likely duplicates of existing transactions"`
}

type Draft struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Vendor      string `json:"vendor,omitempty"`
	Reference   string `json:"reference,omitempty"`
	CategoryID  string `json:"categoryId,omitempty"`
	ImportID    string `json:"importId"`
}

type DraftPreview struct {
	Row                 int    `json:"row" doc:"Zero-based data row"`
	SourceAccountID     string `json:"sourceAccountId,omitempty"`
	Draft               Draft  `json:"transaction"`
	DuplicateByImportID bool   `json:"duplicateByImportId"`
	LikelyDuplicate     bool   `json:"likelyDuplicate"`
}

type RowFailure struct {
	Row             int    `json:"row"`
	SourceAccountID string `json:"sourceAccountId,omitempty"`
	Error           string `json:"error"`
}

type AccountSummary struct {
	SourceAccountID      string `json:"sourceAccountId"`
	Type                 string `json:"type,omitempty"`
	Currency             string `json:"currency,omitempty"`
	DestinationAccountID string `json:"destinationAccountId,omitempty"`
	TransactionCount     int    `json:"transactionCount"`
	StatementBalance     string `json:"statementBalance,omitempty"`
}

type PreviewResult struct {
	Format            string           `json:"format"`
	Transactions      []DraftPreview   `json:"transactions"`
	TotalRows         int              `json:"totalRows"`
	ValidTransactions int              `json:"validTransactions"`
	Duplicates        int              `json:"duplicates"`
	Errors            []RowFailure     `json:"errors"`
	AccountSummaries  []AccountSummary `json:"accountSummaries,omitempty"`
}

type AccountResult struct {
	DestinationAccountID string `json:"destinationAccountId"`
	SourceAccountID      string `json:"sourceAccountId,omitempty"`
	Imported             int    `json:"imported"`
	Skipped              int    `json:"skipped"`
	StatementBalance     string `json:"statementBalance,omitempty"`
	BalanceDifference    string `json:"balanceDifference,omitempty" doc:"Statement balance minus ledger balance after the import"`
}

type ImportResult struct {
	Imported         int             `json:"imported"`
	Skipped          int             `json:"skipped"`
	Errors           []RowFailure    `json:"errors"`
	AccountResults   []AccountResult `json:"accountResults"`
	UnmappedAccounts []string        `json:"unmappedAccounts,omitempty"`
}

func optionalAmount(a *money.Amount) string {
	if a == nil {
		return ""
	}
	return a.String()
}

func toFailures(in []service.RowFailure) []RowFailure {
	out := make([]RowFailure, len(in))
	for i, f := range in {
		out[i] = RowFailure{Row: f.Row, SourceAccountID: f.SourceAccountID, Error: f.Error}
	}
	return out
}

func toPreview(r *service.PreviewResult) PreviewResult {
	out := PreviewResult{
		Format:            string(r.Format),
		Transactions:      make([]DraftPreview, len(r.Transactions)),
		TotalRows:         r.TotalRows,
		ValidTransactions: r.ValidTransactions,
		Duplicates:        r.Duplicates,
		Errors:            toFailures(r.Errors),
	}
	for i, p := range r.Transactions {
		out.Transactions[i] = DraftPreview{
			Row:             p.Row,
			SourceAccountID: p.SourceAccountID,
			Draft: Draft{
				Date:        p.Draft.Date.Format(common.DateLayout),
				Amount:      p.Draft.Amount.String(),
				Type:        string(p.Draft.Type),
				Description: p.Draft.Description,
				Vendor:      p.Draft.Vendor,
				Reference:   p.Draft.Reference,
				CategoryID:  common.NullID(p.Draft.CategoryID),
				ImportID:    p.Draft.ImportID,
			},
			DuplicateByImportID: p.DuplicateByImportID,
			LikelyDuplicate:     p.LikelyDuplicate,
		}
	}
	for _, s := range r.AccountSummaries {
		out.AccountSummaries = append(out.AccountSummaries, AccountSummary{
			SourceAccountID:      s.SourceAccountID,
			Type:                 s.Type,
			Currency:             s.Currency,
			DestinationAccountID: common.NullID(s.DestinationAccountID),
			TransactionCount:     s.TransactionCount,
			StatementBalance:     optionalAmount(s.StatementBalance),
		})
	}
	return out
}

func toImportResult(r *service.ImportResult) ImportResult {
	out := ImportResult{
		Imported:         r.Imported,
		Skipped:          r.Skipped,
		Errors:           toFailures(r.Errors),
		AccountResults:   make([]AccountResult, len(r.AccountResults)),
		UnmappedAccounts: r.UnmappedAccounts,
	}
	for i, a := range r.AccountResults {
		out.AccountResults[i] = AccountResult{
			DestinationAccountID: a.DestinationAccountID.String(),
			SourceAccountID:      a.SourceAccountID,
			Imported:             a.Imported,
			Skipped:              a.Skipped,
			StatementBalance:     optionalAmount(a.StatementBalance),
			BalanceDifference:    optionalAmount(a.BalanceDifference),
		}
	}
	return out
}
