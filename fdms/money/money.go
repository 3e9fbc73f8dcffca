package money

import "github.com/shopspring/decimal"

// The authority's wire format is fixed-point with exactly 2 decimal places.
// Every price, quantity, percent and total must pass through Round2 before it
// enters a receipt or a signature computation.

var half = decimal.New(5, -1)

// Round2 rounds to 2 decimal places, half up in decimal arithmetic:
// ties always round toward positive infinity, so -10.125 becomes -10.12.
// decimal.Round would take negative ties away from zero instead. Idempotent.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// Round2Float is Round2 over a binary float input.
func Round2Float(v float64) float64 {
	f, _ := Round2(decimal.NewFromFloat(v)).Float64()
	return f
}

// Cents returns the scaled-integer form used in signature payloads: the value
// rounded to 2 decimals, multiplied by 100 and truncated. Exact by
// construction since the rounded value has no sub-cent part.
func Cents(d decimal.Decimal) int64 {
	return Round2(d).Mul(decimal.NewFromInt(100)).IntPart()
}

// CentsFloat is Cents over a binary float input.
func CentsFloat(v float64) int64 {
	return Cents(decimal.NewFromFloat(v))
}

// Fixed2 renders with exactly 2 decimal places, e.g. "15.00".
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Fixed2Float is Fixed2 over a binary float input.
func Fixed2Float(v float64) string {
	return Fixed2(decimal.NewFromFloat(v))
}
