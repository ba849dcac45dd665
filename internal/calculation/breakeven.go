package calculation

import (
	"errors"
	"fmt"

	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrPolicyNotSustainable is returned when the policy does not stay in force to
// its end age even without withdrawals.
var ErrPolicyNotSustainable = errors.New("policy does not stay in force without withdrawals")

// maxDoublings bounds the search for an unsustainable upper withdrawal.
const maxDoublings = 40

// SustainableIncome is the largest level annual withdrawal, in whole dollars,
// that keeps the policy in force with positive cash value through its end age.
type SustainableIncome struct {
	StartAge   int                      `json:"start_age"`
	Amount     decimal.Decimal          `json:"amount"`
	Iterations int                      `json:"iterations"`
	Simulation *domain.SimulationResult `json:"simulation"`
}

// SolveSustainableWithdrawal finds the break-even withdrawal by bisection over
// whole-dollar amounts. Projections credit exactly the average return.
func (se *SimulationEngine) SolveSustainableWithdrawal(params domain.PolicyParameters, startAge int) (*SustainableIncome, error) {
	if startAge < params.StartAge || startAge > params.EndAge {
		return nil, fmt.Errorf("withdrawal start age %d is outside the policy ages %d-%d", startAge, params.StartAge, params.EndAge)
	}
	logger := se.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	iterations := 0
	project := func(amount decimal.Decimal) (*domain.SimulationResult, bool, error) {
		iterations++
		trial := params
		trial.Withdrawal = &domain.Withdrawal{StartAge: startAge, Amount: amount}
		result, err := se.Simulate(trial, ZeroVarianceSource{})
		if err != nil {
			return nil, false, err
		}
		return result, sustains(trial, result), nil
	}

	best, ok, err := project(decimal.Zero)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPolicyNotSustainable
	}

	low := decimal.Zero
	high := params.Premium.TotalFunding().Add(params.StartingCashValue()).Ceil()
	if !high.IsPositive() {
		high = decimal.NewFromInt(1)
	}
	for i := 0; ; i++ {
		result, ok, err := project(high)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if i == maxDoublings {
			return nil, fmt.Errorf("no unsustainable withdrawal found up to %s", high.StringFixed(0))
		}
		low, best = high, result
		high = high.Mul(decimal.NewFromInt(2))
	}

	two := decimal.NewFromInt(2)
	one := decimal.NewFromInt(1)
	for high.Sub(low).GreaterThan(one) {
		mid := low.Add(high).Div(two).Floor()
		result, ok, err := project(mid)
		if err != nil {
			return nil, err
		}
		if ok {
			low, best = mid, result
		} else {
			high = mid
		}
	}

	logger.Infof("sustainable withdrawal from age %d: %s after %d projections", startAge, low.StringFixed(0), iterations)
	return &SustainableIncome{
		StartAge:   startAge,
		Amount:     low,
		Iterations: iterations,
		Simulation: best,
	}, nil
}

// sustains reports whether the projection ran every year and ended with positive cash value.
func sustains(params domain.PolicyParameters, result *domain.SimulationResult) bool {
	return len(result.Years) == params.Years() && !result.Lapsed() && result.FinalCashValue().IsPositive()
}
