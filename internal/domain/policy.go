package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TestType selects the statutory definition-of-life-insurance test applied to a policy.
type TestType string

const (
	GuidelinePremiumTest      TestType = "GPT"
	CashValueAccumulationTest TestType = "CVAT"
)

// ParseTestType accepts the short codes and a few long-form spellings.
func ParseTestType(s string) (TestType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GPT", "GUIDELINE", "GUIDELINE_PREMIUM_TEST":
		return GuidelinePremiumTest, nil
	case "CVAT", "CASH_VALUE", "CASH_VALUE_ACCUMULATION_TEST":
		return CashValueAccumulationTest, nil
	default:
		return "", fmt.Errorf("unknown test type %q (expected GPT or CVAT)", s)
	}
}

// Valid reports whether t is one of the supported tests.
func (t TestType) Valid() bool {
	return t == GuidelinePremiumTest || t == CashValueAccumulationTest
}

// PremiumSchedule describes how much premium is paid in each policy year.
//
// A flat schedule pays Amount for Years years. When TotalYears exceeds Years the
// schedule becomes two-phase: Amount for the first Years years, then
// OngoingAmount through year TotalYears.
type PremiumSchedule struct {
	Amount        decimal.Decimal `yaml:"amount" json:"amount"`
	Years         int             `yaml:"years" json:"years"`
	OngoingAmount decimal.Decimal `yaml:"ongoing_amount,omitempty" json:"ongoing_amount,omitempty"`
	TotalYears    int             `yaml:"total_years,omitempty" json:"total_years,omitempty"`
}

// FlatPremium builds a schedule paying amount for years years.
func FlatPremium(amount decimal.Decimal, years int) PremiumSchedule {
	return PremiumSchedule{Amount: amount, Years: years}
}

// TwoPhasePremium builds a schedule paying initial for initialYears years and
// ongoing until totalYears.
func TwoPhasePremium(initial decimal.Decimal, initialYears int, ongoing decimal.Decimal, totalYears int) PremiumSchedule {
	return PremiumSchedule{
		Amount:        initial,
		Years:         initialYears,
		OngoingAmount: ongoing,
		TotalYears:    totalYears,
	}
}

// IsTwoPhase reports whether an ongoing phase follows the initial one.
func (ps PremiumSchedule) IsTwoPhase() bool {
	return ps.TotalYears > ps.Years
}

// PremiumForYear returns the premium due in the given 1-based policy year.
func (ps PremiumSchedule) PremiumForYear(year int) decimal.Decimal {
	switch {
	case year <= ps.Years:
		return ps.Amount
	case year <= ps.TotalYears:
		return ps.OngoingAmount
	default:
		return decimal.Zero
	}
}

// TotalFunding is the sum of all scheduled premiums.
func (ps PremiumSchedule) TotalFunding() decimal.Decimal {
	total := ps.Amount.Mul(decimal.NewFromInt(int64(ps.Years)))
	if ps.IsTwoPhase() {
		total = total.Add(ps.OngoingAmount.Mul(decimal.NewFromInt(int64(ps.TotalYears - ps.Years))))
	}
	return total
}

// FirstYearPremium is the premium paid in policy year 1.
func (ps PremiumSchedule) FirstYearPremium() decimal.Decimal {
	return ps.PremiumForYear(1)
}

// PayingYears is the number of years with a scheduled premium.
func (ps PremiumSchedule) PayingYears() int {
	if ps.IsTwoPhase() {
		return ps.TotalYears
	}
	return ps.Years
}

// Exchange carries value from a prior policy through a tax-free 1035 exchange.
type Exchange struct {
	CashValue decimal.Decimal `yaml:"cash_value" json:"cash_value"`
	CostBasis decimal.Decimal `yaml:"cost_basis" json:"cost_basis"`
}

// Withdrawal describes annual policy withdrawals starting at a given age.
type Withdrawal struct {
	StartAge int             `yaml:"start_age" json:"start_age"`
	Amount   decimal.Decimal `yaml:"amount" json:"amount"`
}

// PolicyParameters holds every input the projection engine needs.
// Rates (AverageReturn, InterestCap, InterestFloor) are percentages, so 6 means 6%.
type PolicyParameters struct {
	TestType         TestType        `yaml:"test_type" json:"test_type"`
	StartAge         int             `yaml:"start_age" json:"start_age"`
	EndAge           int             `yaml:"end_age" json:"end_age"`
	Premium          PremiumSchedule `yaml:"premium" json:"premium"`
	DeathBenefit     decimal.Decimal `yaml:"death_benefit" json:"death_benefit"`
	AverageReturn    decimal.Decimal `yaml:"average_return" json:"average_return"`
	InterestCap      decimal.Decimal `yaml:"interest_cap" json:"interest_cap"`
	InterestFloor    decimal.Decimal `yaml:"interest_floor" json:"interest_floor"`
	InitialCostBasis decimal.Decimal `yaml:"initial_cost_basis" json:"initial_cost_basis"`
	Exchange         *Exchange       `yaml:"exchange_1035,omitempty" json:"exchange_1035,omitempty"`
	AllowMEC         bool            `yaml:"allow_mec" json:"allow_mec"`
	Withdrawal       *Withdrawal     `yaml:"withdrawal,omitempty" json:"withdrawal,omitempty"`
}

// Years is the maximum number of policy years the projection runs.
func (p PolicyParameters) Years() int {
	return p.EndAge - p.StartAge + 1
}

// StartingCashValue is the cash value carried into year 1.
func (p PolicyParameters) StartingCashValue() decimal.Decimal {
	if p.Exchange != nil {
		return p.Exchange.CashValue
	}
	return decimal.Zero
}

// StartingCostBasis is the cost basis carried into year 1. An exchange replaces
// the initial basis with the prior policy's basis.
func (p PolicyParameters) StartingCostBasis() decimal.Decimal {
	if p.Exchange != nil {
		return p.Exchange.CostBasis
	}
	return p.InitialCostBasis
}

// WithdrawalsActive reports whether a withdrawal is taken at the given age.
func (p PolicyParameters) WithdrawalsActive(age int) bool {
	return p.Withdrawal != nil && p.Withdrawal.Amount.IsPositive() && age >= p.Withdrawal.StartAge
}

// WithSchedule returns a copy of p funded by the given schedule and death benefit.
func (p PolicyParameters) WithSchedule(schedule PremiumSchedule, deathBenefit decimal.Decimal) PolicyParameters {
	out := p
	out.Premium = schedule
	out.DeathBenefit = deathBenefit
	return out
}
