package booking

// DefaultTaxRateBps is the GST rate for entertainment services,
// expressed in basis points (18%).
const DefaultTaxRateBps = 1800

// DefaultHoldMinutes is how long a seat hold lasts before it lapses.
const DefaultHoldMinutes = 2

// CalculateTax returns the tax on a non-negative subtotal of minor
// currency units at the given rate in basis points, rounding half away
// from zero.  Integer arithmetic throughout; money never touches
// floating point.
func CalculateTax(subtotalInPaisa, rateBps int64) int64 {
	return (subtotalInPaisa*rateBps + 5000) / 10000
}
