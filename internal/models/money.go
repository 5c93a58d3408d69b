package models

import (
	"github.com/shopspring/decimal"
)

// moneyScale is the number of sub-cent units per cent. Amounts are
// stored as integers (cents x 10000) so repeated increments never
// accumulate floating-point drift.
const moneyScale = 10000

// Money is a fixed-point monetary amount in sub-cent units
type Money int64

// MoneyFromCents converts a decimal cent amount into sub-cent units,
// rounding to the nearest unit
func MoneyFromCents(cents decimal.Decimal) Money {
	return Money(cents.Mul(decimal.NewFromInt(moneyScale)).Round(0).IntPart())
}

// Cents returns the amount as decimal cents
func (m Money) Cents() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(moneyScale))
}

// IsZero reports whether the amount is exactly zero
func (m Money) IsZero() bool {
	return m == 0
}

// Add returns the sum of two amounts
func (m Money) Add(other Money) Money {
	return m + other
}
