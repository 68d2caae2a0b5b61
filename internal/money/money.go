// Package money implements fixed-point amounts stored as integer cents.
//
// Decimal strings are converted to cents once at the boundary; every arithmetic
// operation afterwards is plain int64 math, so values never drift.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount.
const Scale = 2

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrPrecision     = errors.New("amount has more than two decimal places")
	ErrOverflow      = errors.New("amount out of range")
)

// Amount is a number of minor units (cents). The sign is meaningful for
// balances; transaction amounts are always non-negative magnitudes.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromCents builds an Amount from a count of minor units.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// Parse converts a decimal string such as "12.5", "-0.01" or "1000" to an Amount.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	shifted := d.Shift(Scale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %q", ErrPrecision, s)
	}
	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return Amount(bi.Int64()), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Cents returns the raw minor unit count.
func (a Amount) Cents() int64 { return int64(a) }

func (a Amount) Add(b Amount) Amount { return a + b }
func (a Amount) Sub(b Amount) Amount { return a - b }
func (a Amount) Neg() Amount         { return -a }
func (a Amount) IsZero() bool        { return a == 0 }
func (a Amount) IsNegative() bool    { return a < 0 }

func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Compare returns -1, 0 or +1.
func (a Amount) Compare(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// EqualWithinTolerance reports whether |a-b| <= eps. It exists for comparing a
// bank-reported balance with the ledger; invariant checks use ==.
func EqualWithinTolerance(a, b, eps Amount) bool {
	return a.Sub(b).Abs() <= eps.Abs()
}

// String renders the canonical decimal form, e.g. "-19.99".
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	// Avoid overflow on math.MinInt64 by working on uint64.
	u := uint64(cents)
	if cents < 0 {
		u = uint64(-(cents + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}

// Display renders the amount for people, using the currency's symbol and
// grouping where the currency is known and uses two decimal places.
func (a Amount) Display(currency string) string {
	cur := gomoney.GetCurrency(strings.ToUpper(currency))
	if cur == nil || cur.Fraction != Scale {
		if currency == "" {
			return a.String()
		}
		return a.String() + " " + strings.ToUpper(currency)
	}
	return gomoney.New(int64(a), cur.Code).Display()
}

// AddStrings adds two decimal strings exactly.
func AddStrings(a, b string) (string, error) {
	x, err := Parse(a)
	if err != nil {
		return "", err
	}
	y, err := Parse(b)
	if err != nil {
		return "", err
	}
	return x.Add(y).String(), nil
}

// SubStrings subtracts b from a exactly.
func SubStrings(a, b string) (string, error) {
	x, err := Parse(a)
	if err != nil {
		return "", err
	}
	y, err := Parse(b)
	if err != nil {
		return "", err
	}
	return x.Sub(y).String(), nil
}

// Scan implements sql.Scanner for BIGINT cent columns.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*a = Amount(v)
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	case nil:
		*a = 0
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}

func (a *Amount) scanString(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("money: scan %q: %w", s, err)
	}
	*a = Amount(n)
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
