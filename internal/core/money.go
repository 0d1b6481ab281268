// Package core holds the domain model: money handling, entities with their
// invariants, and the pure report arithmetic.
//
// Amounts are carried as integer cents everywhere inside the system; the
// decimal form only appears at the JSON boundary.
package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money is a positive-or-zero amount of the ledger currency in cents.
// Direction (income vs expense) is carried by TransactionType, never by sign.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in currency units (e.g. 1234 cents -> 12.34).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MoneyFromDecimal converts a decimal currency amount to cents, rounding
// half away from zero past the second fractional digit.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// ParseMoney parses a decimal string ("12.34") into cents.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

// MarshalJSON renders the amount as a plain JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts both quoted and unquoted decimal numbers.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return ErrInvalidAmount
	}
	*m = MoneyFromDecimal(d)
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}
