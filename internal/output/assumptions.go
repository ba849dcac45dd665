package output

import (
	"fmt"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// DefaultAssumptions lists the fixed modeling rules rendered in console output.
var DefaultAssumptions = []string{
	fmt.Sprintf("Guideline minimum death benefit: total funding / %s", calculation.GPTDivisor.StringFixed(2)),
	fmt.Sprintf("MEC floor: first-year premium x %s", calculation.MECPremiumMultiple.String()),
	fmt.Sprintf("Taxable withdrawals: %s income tax", FormatRate(calculation.WithdrawalTaxRate)),
	fmt.Sprintf("Early withdrawal penalty: %s of the taxable amount before age %s", FormatRate(calculation.EarlyWithdrawalPenaltyRate), calculation.PenaltyAgeThreshold.String()),
	fmt.Sprintf("Cost of insurance: %s of death benefit plus %s per policy year", FormatRate(calculation.COIBaseRate), FormatRate(calculation.COIAgeSlope)),
}

// GenerateAssumptions creates the assumptions list from the policy's own values
func GenerateAssumptions(p domain.PolicyParameters) []string {
	out := []string{
		fmt.Sprintf("Index crediting: %s average, %s standard deviation, floor %s, cap %s",
			FormatPercentage(p.AverageReturn),
			FormatRate(calculation.CreditingVolatility),
			FormatPercentage(p.InterestFloor),
			FormatPercentage(p.InterestCap)),
		fmt.Sprintf("Issue age %d: guideline factor %s, corridor factor %s",
			p.StartAge,
			calculation.GuidelineFactor(p.StartAge).String(),
			calculation.CorridorFactor(p.StartAge).String()),
	}
	if p.AllowMEC {
		out = append(out, "MEC status waived: withdrawals are taxed basis-first")
	}
	return append(out, DefaultAssumptions...)
}
