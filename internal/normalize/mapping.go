package normalize

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMappingRequired = errors.New("column mapping is required for delimited files")

// ColumnMapping names the zero-based column of each draft field. Optional
// columns are nil when absent.
type ColumnMapping struct {
	Date        int
	Amount      int
	Description int
	Type        *int
	Vendor      *int
	Reference   *int
	// DateFormat is a Go time layout; empty means try the common layouts.
	DateFormat string
}

// Validate checks the mapping against the header width of a file.
func (m *ColumnMapping) Validate(columnCount int) error {
	check := func(name string, idx int) error {
		if idx < 0 || idx >= columnCount {
			return fmt.Errorf("%s column %d out of range (file has %d columns)", name, idx, columnCount)
		}
		return nil
	}
	if err := check("date", m.Date); err != nil {
		return err
	}
	if err := check("amount", m.Amount); err != nil {
		return err
	}
	if err := check("description", m.Description); err != nil {
		return err
	}
	for name, idx := range map[string]*int{"type": m.Type, "vendor": m.Vendor, "reference": m.Reference} {
		if idx == nil {
			continue
		}
		if err := check(name, *idx); err != nil {
			return err
		}
	}
	return nil
}

var suggestOrder = []string{"date", "amount", "description", "type", "vendor", "reference"}

var headerAliases = map[string][]string{
	"date":        {"date", "posted", "posting date", "transaction date", "trans date", "booking date", "value date", "datum"},
	"amount":      {"amount", "amt", "value", "transaction amount", "bedrag", "betrag"},
	"description": {"description", "desc", "memo", "details", "narrative", "name", "payee", "omschrijving"},
	"type":        {"type", "transaction type", "dr/cr", "credit/debit", "debit/credit"},
	"vendor":      {"vendor", "merchant", "counterparty"},
	"reference":   {"reference", "ref", "check number", "check", "cheque", "transaction id", "id"},
}

// SuggestMapping guesses a mapping from header names. It reports false when
// no date, amount and description columns could be found.
func SuggestMapping(headers []string) (ColumnMapping, bool) {
	found := map[string]int{}
	for _, field := range suggestOrder {
		for _, alias := range headerAliases[field] {
			if idx := indexOf(headers, alias); idx >= 0 {
				if _, taken := claimed(found, idx); !taken {
					found[field] = idx
				}
				break
			}
		}
	}

	m := ColumnMapping{Date: -1, Amount: -1, Description: -1}
	if idx, ok := found["date"]; ok {
		m.Date = idx
	}
	if idx, ok := found["amount"]; ok {
		m.Amount = idx
	}
	if idx, ok := found["description"]; ok {
		m.Description = idx
	}
	if idx, ok := found["type"]; ok {
		m.Type = &idx
	}
	if idx, ok := found["vendor"]; ok {
		m.Vendor = &idx
	}
	if idx, ok := found["reference"]; ok {
		m.Reference = &idx
	}
	return m, m.Date >= 0 && m.Amount >= 0 && m.Description >= 0
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func claimed(found map[string]int, idx int) (string, bool) {
	for field, i := range found {
		if i == idx {
			return field, true
		}
	}
	return "", false
}
