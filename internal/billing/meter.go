package billing

import "github.com/shopspring/decimal"

// MeterDelta returns the consumption between two readings of a meter.
// The result is not clamped: a meter rollback or replacement yields a
// negative delta and is billed as-is.
func MeterDelta(oldReading, newReading any) decimal.Decimal {
	return Coerce(newReading).Sub(Coerce(oldReading))
}

// Apportion splits a shared-equipment delta among divisor people and
// re-scales it to the occupants billed on this invoice. When sharing is off
// or the divisor is not positive the raw delta is returned unchanged.
func Apportion(rawDelta decimal.Decimal, shared bool, divisor, occupants decimal.Decimal) decimal.Decimal {
	if !shared || !divisor.IsPositive() {
		return rawDelta
	}
	return rawDelta.Div(divisor).Mul(occupants)
}
