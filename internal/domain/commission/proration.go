package commission

import "github.com/shopspring/decimal"

// Prorate computes the used portion of a billing period, rounded to cents
// with the engine's rounding mode. A zero-length period has no usable amount
// by definition, so totalDays <= 0 yields zero rather than an error.
func Prorate(fullAmount decimal.Decimal, daysUsed, totalDays int) decimal.Decimal {
	if totalDays <= 0 {
		return decimal.Zero
	}
	return fullAmount.
		Div(decimal.NewFromInt(int64(totalDays))).
		Mul(decimal.NewFromInt(int64(daysUsed))).
		Round(2)
}

// Refund is the unused remainder: original minus the prorated used portion,
// so Refund + Prorate always reconstructs the original exactly.
func Refund(originalAmount decimal.Decimal, daysUsed, totalDays int) decimal.Decimal {
	return originalAmount.Sub(Prorate(originalAmount, daysUsed, totalDays))
}
