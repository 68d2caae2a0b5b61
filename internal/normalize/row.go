package normalize

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/carson-networks/budget-ledger/internal/money"
	"github.com/carson-networks/budget-ledger/internal/statement"
	"github.com/carson-networks/budget-ledger/internal/storage/transaction"
)

var (
	ErrMissingDescription = errors.New("description is empty")
	ErrMissingDate        = errors.New("date is empty")
	ErrMissingAmount      = errors.New("amount is empty")
	ErrShortRow           = errors.New("row has fewer columns than the mapping requires")
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"02.01.2006",
	"2.1.2006",
	"02-01-2006",
	"2006/01/02",
	"20060102",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
}

var strictPolicy = bluemonday.StrictPolicy()

// Clean strips markup and collapses whitespace in a text field taken from a
// statement.
func Clean(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// MapRowToTransaction applies mapping to one delimited row.
func MapRowToTransaction(fields []string, mapping ColumnMapping) (Draft, error) {
	get := func(idx int) (string, error) {
		if idx < 0 || idx >= len(fields) {
			return "", ErrShortRow
		}
		return strings.TrimSpace(fields[idx]), nil
	}
	getOpt := func(idx *int) string {
		if idx == nil || *idx < 0 || *idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[*idx])
	}

	rawDate, err := get(mapping.Date)
	if err != nil {
		return Draft{}, err
	}
	rawAmount, err := get(mapping.Amount)
	if err != nil {
		return Draft{}, err
	}
	rawDesc, err := get(mapping.Description)
	if err != nil {
		return Draft{}, err
	}

	date, err := ParseDate(rawDate, mapping.DateFormat)
	if err != nil {
		return Draft{}, err
	}
	signed, err := ParseAmount(rawAmount)
	if err != nil {
		return Draft{}, err
	}
	desc := Clean(rawDesc)
	if desc == "" {
		return Draft{}, ErrMissingDescription
	}

	d := Draft{
		Date:        date,
		Amount:      signed.Abs(),
		Type:        typeFromSign(signed),
		Description: desc,
		Vendor:      Clean(getOpt(mapping.Vendor)),
		Reference:   Clean(getOpt(mapping.Reference)),
	}
	if mapping.Type != nil {
		if t, ok := parseTypeColumn(getOpt(mapping.Type)); ok {
			d.Type = t
		}
	}
	return d, nil
}

// MapNativeTransaction converts a structured-dialect record whose direction
// comes from its transaction type.
func MapNativeTransaction(n *statement.NativeTransaction) (Draft, error) {
	if n.Posted.IsZero() {
		return Draft{}, ErrMissingDate
	}
	desc := Clean(n.Name)
	if desc == "" {
		desc = Clean(n.Payee)
	}
	if desc == "" {
		desc = Clean(n.Memo)
	}
	if desc == "" {
		return Draft{}, ErrMissingDescription
	}

	d := Draft{
		Date:        transaction.DayOf(n.Posted),
		Amount:      n.Amount.Abs(),
		Type:        nativeType(n.TrnType, n.Amount),
		Description: desc,
		Vendor:      Clean(n.Payee),
		Reference:   firstNonEmpty(n.CheckNum, n.RefNum, n.FITID),
	}
	return d, nil
}

var (
	creditTrnTypes = map[string]bool{"CREDIT": true, "DEP": true, "INT": true, "DIV": true, "DIRECTDEP": true}
	debitTrnTypes  = map[string]bool{
		"DEBIT": true, "CHECK": true, "PAYMENT": true, "ATM": true, "POS": true,
		"FEE": true, "SRVCHG": true, "DIRECTDEBIT": true, "REPEATPMT": true, "CASH": true,
	}
)

func nativeType(trnType string, signed money.Amount) transaction.Type {
	t := strings.ToUpper(strings.TrimSpace(trnType))
	switch {
	case creditTrnTypes[t]:
		return transaction.TypeCredit
	case debitTrnTypes[t]:
		return transaction.TypeDebit
	default:
		return typeFromSign(signed)
	}
}

func typeFromSign(signed money.Amount) transaction.Type {
	if signed.IsNegative() {
		return transaction.TypeDebit
	}
	return transaction.TypeCredit
}

func parseTypeColumn(s string) (transaction.Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "cr", "c", "deposit", "in":
		return transaction.TypeCredit, true
	case "debit", "dr", "d", "withdrawal", "out", "payment":
		return transaction.TypeDebit, true
	default:
		return "", false
	}
}

// ParseDate parses s with layout, or with the first matching common layout
// when layout is empty. The result is a UTC calendar date.
func ParseDate(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	if layout != "" {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q does not match %q", s, layout)
		}
		return transaction.DayOf(t), nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return transaction.DayOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// ParseAmount reads a signed amount as banks print it: currency symbols,
// thousands separators, a decimal comma, parentheses or a trailing minus.
func ParseAmount(s string) (money.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingAmount
	}

	negative := false
	if strings.Contains(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(s, ")")
	}
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	cleaned := normalizeSeparators(b.String())

	a, err := money.Parse(cleaned)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	if negative {
		a = a.Abs().Neg()
	}
	return a, nil
}

// normalizeSeparators rewrites the number so '.' is the only decimal mark and
// no grouping separators remain. The right-most of ',' and '.' is the decimal
// mark when both appear; a lone ',' followed by exactly one or two digits is
// a decimal comma.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			if digits := len(s) - lastComma - 1; digits == 1 || digits == 2 {
				return strings.Replace(s, ",", ".", 1)
			}
		}
		return strings.ReplaceAll(s, ",", "")
	default:
		return s
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
