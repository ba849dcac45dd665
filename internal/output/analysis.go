package output

import (
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// ProjectionSummary condenses a year table into the headline numbers.
type ProjectionSummary struct {
	YearsInForce      int
	TotalPremiums     decimal.Decimal
	TotalWithdrawals  decimal.Decimal
	TotalTax          decimal.Decimal
	TotalPenalty      decimal.Decimal
	PeakCashValue     decimal.Decimal
	PeakAge           int
	FinalCashValue    decimal.Decimal
	FinalDeathBenefit decimal.Decimal
	FirstMECAge       int
	FirstWithdrawAge  int
	Lapsed            bool
	LapseAge          int
}

// SummarizeProjection walks the year table once and collects totals and milestones.
// Ages are zero when the milestone never happens.
func SummarizeProjection(result *domain.SimulationResult) ProjectionSummary {
	if result == nil || len(result.Years) == 0 {
		return ProjectionSummary{}
	}
	s := ProjectionSummary{
		YearsInForce:      len(result.Years),
		TotalPremiums:     result.TotalPremiums(),
		FinalCashValue:    result.FinalCashValue(),
		FinalDeathBenefit: result.FinalDeathBenefit,
	}
	s.TotalWithdrawals, s.TotalTax, s.TotalPenalty = result.TotalWithdrawals()

	for _, y := range result.Years {
		if y.CashValue.GreaterThan(s.PeakCashValue) {
			s.PeakCashValue = y.CashValue
			s.PeakAge = y.Age
		}
		if y.MECStatus && s.FirstMECAge == 0 {
			s.FirstMECAge = y.Age
		}
		if y.Withdrawal.IsPositive() && s.FirstWithdrawAge == 0 {
			s.FirstWithdrawAge = y.Age
		}
		if y.PolicyLapsed && !s.Lapsed {
			s.Lapsed = true
			s.LapseAge = y.Age
		}
	}
	return s
}
