package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPremiumSchedule_Flat(t *testing.T) {
	ps := FlatPremium(decimal.NewFromInt(50000), 4)

	testCases := []struct {
		year     int
		expected int64
		desc     string
	}{
		{year: 1, expected: 50000, desc: "first year"},
		{year: 4, expected: 50000, desc: "last paying year"},
		{year: 5, expected: 0, desc: "after funding period"},
		{year: 30, expected: 0, desc: "far future"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.True(t, decimal.NewFromInt(tc.expected).Equal(ps.PremiumForYear(tc.year)))
		})
	}

	assert.False(t, ps.IsTwoPhase())
	assert.True(t, decimal.NewFromInt(200000).Equal(ps.TotalFunding()))
	assert.True(t, decimal.NewFromInt(50000).Equal(ps.FirstYearPremium()))
	assert.Equal(t, 4, ps.PayingYears())
}

func TestPremiumSchedule_TwoPhase(t *testing.T) {
	ps := TwoPhasePremium(decimal.NewFromInt(100000), 2, decimal.NewFromInt(20000), 7)

	assert.True(t, ps.IsTwoPhase())
	assert.True(t, decimal.NewFromInt(100000).Equal(ps.PremiumForYear(2)))
	assert.True(t, decimal.NewFromInt(20000).Equal(ps.PremiumForYear(3)))
	assert.True(t, decimal.NewFromInt(20000).Equal(ps.PremiumForYear(7)))
	assert.True(t, ps.PremiumForYear(8).IsZero())

	// 100,000 x 2 + 20,000 x 5
	assert.True(t, decimal.NewFromInt(300000).Equal(ps.TotalFunding()))
	assert.Equal(t, 7, ps.PayingYears())
}

func TestPolicyParameters_StartingValues(t *testing.T) {
	p := PolicyParameters{
		StartAge:         45,
		EndAge:           50,
		InitialCostBasis: decimal.NewFromInt(1000),
	}
	assert.Equal(t, 6, p.Years())
	assert.True(t, p.StartingCashValue().IsZero())
	assert.True(t, decimal.NewFromInt(1000).Equal(p.StartingCostBasis()))

	p.Exchange = &Exchange{CashValue: decimal.NewFromInt(200000), CostBasis: decimal.NewFromInt(50000)}
	assert.True(t, decimal.NewFromInt(200000).Equal(p.StartingCashValue()))
	assert.True(t, decimal.NewFromInt(50000).Equal(p.StartingCostBasis()), "exchange basis replaces the initial basis")
}

func TestPolicyParameters_WithdrawalsActive(t *testing.T) {
	p := PolicyParameters{}
	assert.False(t, p.WithdrawalsActive(70))

	p.Withdrawal = &Withdrawal{StartAge: 65, Amount: decimal.NewFromInt(10000)}
	assert.False(t, p.WithdrawalsActive(64))
	assert.True(t, p.WithdrawalsActive(65))
	assert.True(t, p.WithdrawalsActive(80))

	p.Withdrawal.Amount = decimal.Zero
	assert.False(t, p.WithdrawalsActive(80))
}

func TestParseTestType(t *testing.T) {
	tt, err := ParseTestType("gpt")
	require.NoError(t, err)
	assert.Equal(t, GuidelinePremiumTest, tt)

	tt, err = ParseTestType(" CVAT ")
	require.NoError(t, err)
	assert.Equal(t, CashValueAccumulationTest, tt)

	_, err = ParseTestType("7702")
	assert.Error(t, err)
}

func TestParseObjectiveAndStrategy(t *testing.T) {
	obj, err := ParseObjective("DB")
	require.NoError(t, err)
	assert.Equal(t, MaximizeDeathBenefit, obj)

	obj, err = ParseObjective("cash_value")
	require.NoError(t, err)
	assert.Equal(t, MaximizeCashValue, obj)

	_, err = ParseObjective("irr")
	assert.Error(t, err)

	gs, err := ParseGridStrategy("sweep")
	require.NoError(t, err)
	assert.Equal(t, DeathBenefitSweep, gs)

	gs, err = ParseGridStrategy("three_axis")
	require.NoError(t, err)
	assert.Equal(t, ThreeAxisGrid, gs)
}

func TestVerdict_FailedTests(t *testing.T) {
	v := Verdict{
		Failures: []FailureReason{
			{Age: 45, Year: 1, Test: FailedGPT},
			{Age: 46, Year: 2, Test: FailedGPT},
			{Age: 46, Year: 2, Test: FailedTEFRA},
		},
		BelowMinimumDeathBenefit: true,
	}
	assert.Equal(t, []FailedTest{FailedGPT, FailedTEFRA, FailedMinimumDB}, v.FailedTests())
	assert.Equal(t, []FailureReason{
		{Age: 45, Year: 1, Test: FailedGPT},
		{Age: 46, Year: 2, Test: FailedTEFRA},
	}, v.FirstFailures())
	assert.Empty(t, Verdict{Compliant: true}.FirstFailures())
}

func TestSimulationResult_Aggregates(t *testing.T) {
	sr := &SimulationResult{
		Years: []YearRecord{
			{Year: 1, Premium: decimal.NewFromInt(100), Withdrawal: decimal.Zero, WithdrawalTax: decimal.Zero, EarlyPenalty: decimal.Zero, CashValue: decimal.NewFromInt(90)},
			{Year: 2, Premium: decimal.NewFromInt(100), Withdrawal: decimal.NewFromInt(50), WithdrawalTax: decimal.NewFromInt(12), EarlyPenalty: decimal.NewFromInt(5), CashValue: decimal.NewFromInt(140)},
		},
	}
	assert.True(t, decimal.NewFromInt(200).Equal(sr.TotalPremiums()))
	w, tax, pen := sr.TotalWithdrawals()
	assert.True(t, decimal.NewFromInt(50).Equal(w))
	assert.True(t, decimal.NewFromInt(12).Equal(tax))
	assert.True(t, decimal.NewFromInt(5).Equal(pen))
	assert.True(t, decimal.NewFromInt(140).Equal(sr.FinalCashValue()))
	assert.False(t, sr.Lapsed())

	empty := &SimulationResult{}
	assert.Equal(t, YearRecord{}, empty.Final())
}
