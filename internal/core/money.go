// Package core provides the domain types shared by every component: dates,
// amounts, transactions and detected sequences.
//
// This file handles amount parsing. Bank exports carry amounts as decimal
// strings or JSON numbers; both go through shopspring/decimal so values like
// 1.30 survive exactly instead of picking up float noise.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to signed cents.
//
// It accepts both dot (12.34) and negative (-9.99) forms. Sub-cent digits are
// rounded half-up on the absolute value, so -9.995 becomes -1000 cents.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234, nil
//	ParseAmount("-9.99")  -> -999, nil
//	ParseAmount("1.3")    -> 130, nil
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || !cents.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals, e.g. "-9.99".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// WithinTolerance reports whether other is within the relative tolerance band
// around m. Tolerance 0.5 means other may deviate up to 50% of |m|. Both
// amounts must have the same sign to be considered consistent; a refund does
// not continue a subscription.
func (m Money) WithinTolerance(other Money, tolerance float64) bool {
	if m.Cents == 0 || other.Cents == 0 {
		return m.Cents == other.Cents
	}
	if (m.Cents < 0) != (other.Cents < 0) {
		return false
	}
	base := m.Cents
	if base < 0 {
		base = -base
	}
	diff := m.Cents - other.Cents
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) <= tolerance*float64(base)
}
