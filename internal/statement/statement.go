// Package statement decodes downloaded bank statement files into raw records.
//
// Delimited text has no notion of a source account; the caller names the
// destination. OFX and QFX files are self-describing and may carry several
// source accounts, each with native transaction ids and types.
package statement

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/carson-networks/budget-ledger/internal/ledgererr"
	"github.com/carson-networks/budget-ledger/internal/money"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
	FormatQFX Format = "qfx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported statement format")
	ErrNoNativeAccounts  = errors.New("format does not encode source accounts")
)

// Structured reports whether the format carries its own accounts and ids.
func (f Format) Structured() bool {
	return f == FormatOFX || f == FormatQFX
}

// ParseFormat validates a caller-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatOFX, FormatQFX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DetectFormat picks a format from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".ofx":
		return FormatOFX, nil
	case ".qfx":
		return FormatQFX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// RawRecord is one data row of a statement. Exactly one of Fields and Native
// is set unless Err is non-nil.
type RawRecord struct {
	// Index is the zero-based position of the record among the file's data rows.
	Index           int
	Fields          []string
	Native          *NativeTransaction
	SourceAccountID string
	Err             error
}

// NativeTransaction is a statement transaction as the bank described it.
// Amount is signed: negative amounts left the account.
type NativeTransaction struct {
	FITID    string
	TrnType  string
	Posted   time.Time
	Amount   money.Amount
	Name     string
	Memo     string
	Payee    string
	CheckNum string
	RefNum   string
}

// SourceAccount is one account statement inside a structured file.
type SourceAccount struct {
	ID            string
	BankID        string
	Type          string
	Currency      string
	LedgerBalance *money.Amount
	BalanceAsOf   time.Time
	Transactions  []RawRecord
}

type Statement struct {
	Format   Format
	Accounts []SourceAccount
}

// Parse returns the file's records as a lazy sequence. Ranging over the
// sequence again re-reads the same bytes from the start. limit <= 0 means
// no limit. Structural failures are returned before any record is produced.
func Parse(data []byte, format Format, limit int) (iter.Seq[RawRecord], error) {
	switch format {
	case FormatCSV:
		return parseDelimited(data, limit)
	case FormatOFX, FormatQFX:
		st, err := parseOFX(data, format)
		if err != nil {
			return nil, err
		}
		return st.records(limit), nil
	default:
		return nil, &ledgererr.ParseError{Format: string(format), Err: ErrUnsupportedFormat}
	}
}

// ParseFull decodes a structured file into its source accounts.
func ParseFull(data []byte, format Format) (*Statement, error) {
	if !format.Structured() {
		return nil, &ledgererr.ParseError{Format: string(format), Err: ErrNoNativeAccounts}
	}
	return parseOFX(data, format)
}

// CountRows returns the number of data records, including malformed ones.
func CountRows(data []byte, format Format) (int, error) {
	seq, err := Parse(data, format, 0)
	if err != nil {
		return 0, err
	}
	n := 0
	for range seq {
		n++
	}
	return n, nil
}

func (s *Statement) records(limit int) iter.Seq[RawRecord] {
	return func(yield func(RawRecord) bool) {
		n := 0
		for _, acct := range s.Accounts {
			for _, rec := range acct.Transactions {
				if limit > 0 && n >= limit {
					return
				}
				n++
				if !yield(rec) {
					return
				}
			}
		}
	}
}
