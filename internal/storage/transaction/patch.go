package transaction

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/money"
)

const DateLayout = "2006-01-02"

// Patch is a partial update. A nil field is left untouched; a pointer to the
// empty string clears an optional text field.
type Patch struct {
	Date        *time.Time
	Description *string
	Amount      *money.Amount
	Type        *Type
	CategoryID  *uuid.NullUUID
	Vendor      *string
	Reference   *string
	Notes       *string
	Reconciled  *bool
}

// Set assigns one field from its wire representation.
func (p *Patch) Set(field, value string) error {
	switch field {
	case "date":
		d, err := time.Parse(DateLayout, value)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		d = DayOf(d)
		p.Date = &d
	case "description":
		p.Description = &value
	case "amount":
		a, err := money.Parse(value)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if a.IsNegative() {
			return fmt.Errorf("amount: must not be negative")
		}
		p.Amount = &a
	case "type":
		t, err := ParseType(value)
		if err != nil {
			return err
		}
		p.Type = &t
	case "categoryId":
		id := uuid.NullUUID{}
		if value != "" {
			parsed, err := uuid.FromString(value)
			if err != nil {
				return fmt.Errorf("categoryId: %w", err)
			}
			id = uuid.NullUUID{UUID: parsed, Valid: true}
		}
		p.CategoryID = &id
	case "vendor":
		p.Vendor = &value
	case "reference":
		p.Reference = &value
	case "notes":
		p.Notes = &value
	case "reconciled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("reconciled: %w", err)
		}
		p.Reconciled = &b
	default:
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return nil
}

func (p *Patch) IsEmpty() bool {
	return p.Date == nil && p.Description == nil && p.Amount == nil && p.Type == nil &&
		p.CategoryID == nil && p.Vendor == nil && p.Reference == nil && p.Notes == nil &&
		p.Reconciled == nil
}

// ChangesEffect reports whether applying the patch to tx would change its
// balance effect.
func (p *Patch) ChangesEffect(tx *Transaction) bool {
	if p.Amount != nil && *p.Amount != tx.Amount {
		return true
	}
	return p.Type != nil && *p.Type != tx.Type
}

func (p *Patch) Apply(tx *Transaction) {
	if p.Date != nil {
		tx.Date = DayOf(*p.Date)
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.CategoryID != nil {
		tx.CategoryID = *p.CategoryID
	}
	if p.Vendor != nil {
		tx.Vendor = *p.Vendor
	}
	if p.Reference != nil {
		tx.Reference = *p.Reference
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
	if p.Reconciled != nil {
		tx.Reconciled = *p.Reconciled
	}
}
