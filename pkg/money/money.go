// Package money provides the fixed-scale decimal amount type used
// throughout the ledger. Amounts are never represented as binary floats:
// every wire value is a decimal string, every stored value a NUMERIC(19,4).
package money

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every amount is rounded to.
const Scale = 4

// Precision is the total number of significant digits a NUMERIC column allows.
const Precision = 19

// Amount is a fixed-scale decimal value. The zero Amount is zero.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{d: decimal.Zero}

// Parse reads a decimal string (e.g. "50.00") as an Amount. It rejects
// binary-float-style scientific notation and rounds to Scale fractional digits.
func Parse(s string) (Amount, error) {
	if s == "" {
		return Zero, fmt.Errorf("money: empty amount")
	}

	if strings.ContainsAny(s, "eE") {
		return Zero, fmt.Errorf("money: invalid amount %q: exponent notation is not accepted", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}

	return Amount{d: d.Round(Scale)}, nil
}

// FromInt builds an Amount from a whole number of currency units, so
// FromInt(5) is "5.0000" (unused by
// the wire format but convenient for tests and seed data).
func FromInt(i int64) Amount {
	return Amount{d: decimal.New(i, 0)}
}

// String renders the canonical decimal string, always with Scale fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(Scale)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// Cmp compares a to b: -1, 0, 1.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) bool {
	return a.d.GreaterThan(b.d)
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Equal reports whether a and b represent the same numeric value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// MarshalJSON renders the amount as a canonical decimal string, per spec.md
// §6 ("amounts on the wire are decimal strings").
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// Value implements driver.Valuer so an Amount can be written to a NUMERIC column.
func (a Amount) Value() (driver.Value, error) {
	return a.d.Value()
}

// Scan implements sql.Scanner so an Amount can be read from a NUMERIC column.
func (a *Amount) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}

	a.d = d.Round(Scale)

	return nil
}
