package calculation

import "github.com/shopspring/decimal"

// Modeled tax and product rules. These values are part of the projection
// contract and must not be tuned.
var (
	// GPTDivisor converts total premium funding into the minimum guideline death benefit.
	GPTDivisor = decimal.RequireFromString("0.20")
	// MECPremiumMultiple is the seven-pay style floor: first-year premium x 8.
	MECPremiumMultiple = decimal.NewFromInt(8)

	WithdrawalTaxRate          = decimal.RequireFromString("0.24")
	EarlyWithdrawalPenaltyRate = decimal.RequireFromString("0.10")
	PenaltyAgeThreshold        = decimal.RequireFromString("59.5")

	// CreditingVolatility scales the standard normal draw added to the average return.
	CreditingVolatility = decimal.RequireFromString("0.01")

	COIBaseRate = decimal.RequireFromString("0.005")
	COIAgeSlope = decimal.RequireFromString("0.0005")
)

var hundred = decimal.NewFromInt(100)

// COIRate is the cost-of-insurance charge per dollar of death benefit in a given
// year of the projection.
func COIRate(age, startAge int) decimal.Decimal {
	return COIBaseRate.Add(COIAgeSlope.Mul(decimal.NewFromInt(int64(age - startAge))))
}

// PenaltyApplies reports whether a taxable withdrawal at age is subject to the
// early-withdrawal penalty.
func PenaltyApplies(age int) bool {
	return decimal.NewFromInt(int64(age)).LessThan(PenaltyAgeThreshold)
}
