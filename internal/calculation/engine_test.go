package calculation

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %s, got %s", want, got), msgAndArgs...)
	}
}

// baselinePolicy is the age 45-50, $50k x 4, $2M GPT illustration.
func baselinePolicy() domain.PolicyParameters {
	return domain.PolicyParameters{
		TestType:      domain.GuidelinePremiumTest,
		StartAge:      45,
		EndAge:        50,
		Premium:       domain.FlatPremium(dec("50000"), 4),
		DeathBenefit:  dec("2000000"),
		AverageReturn: dec("6"),
		InterestCap:   dec("10"),
		InterestFloor: dec("0"),
	}
}

func TestSimulate_BaselineDeterministic(t *testing.T) {
	engine := NewSimulationEngine()
	result, err := engine.Simulate(baselinePolicy(), ZeroVarianceSource{})
	require.NoError(t, err)
	require.Len(t, result.Years, 6)

	first := result.Years[0]
	assert.Equal(t, 45, first.Age)
	assert.Equal(t, 1, first.Year)
	assertDec(t, "50000.00", first.Premium)
	assertDec(t, "10000.00", first.COI)
	assertDec(t, "6.00", first.IndexCredit)
	assertDec(t, "42400.00", first.CashValue)
	assertDec(t, "50000.00", first.CostBasis)
	assertDec(t, "2000000.00", first.DeathBenefit)
	assert.False(t, first.GPTFailed)
	assert.False(t, first.TEFRAFailed)
	assert.False(t, first.MECStatus)
	assert.True(t, first.DeathBenefitTaxFree)
	assert.False(t, first.PolicyLapsed)

	expected := []struct {
		age   int
		coi   string
		cv    string
		basis string
	}{
		{45, "10000", "42400.00", "50000"},
		{46, "11000", "86284.00", "100000"},
		{47, "12000", "131741.04", "150000"},
		{48, "13000", "178865.50", "200000"},
		{49, "14000", "174757.43", "200000"},
		{50, "15000", "169342.88", "200000"},
	}
	for i, e := range expected {
		y := result.Years[i]
		assert.Equal(t, e.age, y.Age)
		assert.Equal(t, i+1, y.Year)
		assertDec(t, e.coi, y.COI, "coi at age %d", e.age)
		assertDec(t, e.cv, y.CashValue, "cash value at age %d", e.age)
		assertDec(t, e.basis, y.CostBasis, "basis at age %d", e.age)
	}
	assert.True(t, result.Years[4].Premium.IsZero(), "no premium after the funding period")

	assertDec(t, "1000000", result.MinRequiredDeathBenefit)
	assertDec(t, "2000000", result.FinalDeathBenefit)
	assert.True(t, EvaluateCompliance(result).Compliant)
}

func TestSimulate_LapseOnFirstYear(t *testing.T) {
	p := baselinePolicy()
	p.DeathBenefit = dec("20000000") // COI 100,000 > 50,000 premium

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	require.Len(t, result.Years, 1)

	rec := result.Years[0]
	assert.True(t, rec.CashValue.IsZero())
	assert.True(t, rec.DeathBenefit.IsZero())
	assert.True(t, rec.PolicyLapsed)
	assert.True(t, rec.GPTFailed)
	assert.True(t, rec.TEFRAFailed)
	assert.True(t, rec.MECStatus)
	assert.False(t, rec.DeathBenefitTaxFree)
	assert.True(t, rec.IndexCredit.IsZero())
	assertDec(t, "100000", rec.COI)
	assertDec(t, "50000", rec.CostBasis)

	assert.True(t, result.FinalDeathBenefit.IsZero())
	verdict := EvaluateCompliance(result)
	assert.False(t, verdict.Compliant)
	assert.Contains(t, verdict.FailedTests(), domain.FailedLapse)
}

func TestSimulate_LapseAfterFundingStops(t *testing.T) {
	p := baselinePolicy()
	p.EndAge = 80
	p.DeathBenefit = dec("4975000")

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	assert.Less(t, len(result.Years), p.Years())

	last := result.Final()
	assert.True(t, last.PolicyLapsed)
	assert.True(t, last.CashValue.IsZero())
	for _, y := range result.Years[:len(result.Years)-1] {
		assert.False(t, y.PolicyLapsed)
	}
}

func TestSimulate_FirstYearZeroCashValueIsNotLapsed(t *testing.T) {
	p := baselinePolicy()
	p.AverageReturn = dec("0")
	p.Withdrawal = &domain.Withdrawal{StartAge: 45, Amount: dec("40000")}

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	require.Len(t, result.Years, 1, "projection stops once the cash value is exhausted")
	assert.True(t, result.Years[0].CashValue.IsZero())
	assert.False(t, result.Years[0].PolicyLapsed)
}

func TestSimulate_LaterYearZeroCashValueIsLapsed(t *testing.T) {
	p := baselinePolicy()
	p.AverageReturn = dec("0")
	p.Premium = domain.FlatPremium(dec("50000"), 2)
	p.Withdrawal = &domain.Withdrawal{StartAge: 46, Amount: dec("79000")}

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	require.Len(t, result.Years, 2)

	y2 := result.Years[1]
	assert.True(t, y2.CashValue.IsZero())
	assert.True(t, y2.PolicyLapsed)
	assertDec(t, "21000", y2.CostBasis)
	assert.False(t, EvaluateCompliance(result).Compliant)
}

func TestSimulate_BasisFirstWithdrawal(t *testing.T) {
	p := baselinePolicy()
	p.StartAge, p.EndAge = 60, 61
	p.Premium = domain.FlatPremium(dec("50000"), 1)
	p.Withdrawal = &domain.Withdrawal{StartAge: 60, Amount: dec("10000")}

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	require.Len(t, result.Years, 2)

	y1, y2 := result.Years[0], result.Years[1]
	assertDec(t, "32400", y1.CashValue)
	assertDec(t, "40000", y1.CostBasis)
	assertDec(t, "10000", y1.Withdrawal)
	assert.True(t, y1.WithdrawalTax.IsZero())
	assert.True(t, y1.EarlyPenalty.IsZero())

	assertDec(t, "11000", y2.COI)
	assertDec(t, "12684", y2.CashValue)
	assertDec(t, "30000", y2.CostBasis)
}

func TestSimulate_MECGainFirstWithdrawal(t *testing.T) {
	p := domain.PolicyParameters{
		TestType:      domain.GuidelinePremiumTest,
		StartAge:      55,
		EndAge:        55,
		Premium:       domain.FlatPremium(dec("50000"), 1),
		DeathBenefit:  dec("1000000"),
		AverageReturn: dec("6"),
		InterestCap:   dec("10"),
		InterestFloor: dec("0"),
		Exchange:      &domain.Exchange{CashValue: dec("200000"), CostBasis: dec("50000")},
		Withdrawal:    &domain.Withdrawal{StartAge: 55, Amount: dec("20000")},
	}

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	require.Len(t, result.Years, 1)

	y := result.Years[0]
	assert.True(t, y.GPTFailed, "50,000 exceeds the 31,000 guideline limit at 55")
	assert.True(t, y.MECStatus)
	assert.False(t, y.DeathBenefitTaxFree)
	assertDec(t, "100000", y.CostBasis, "gain-first withdrawals leave basis untouched")
	assertDec(t, "4800", y.WithdrawalTax)
	assertDec(t, "2000", y.EarlyPenalty)
	assertDec(t, "239700", y.CashValue)

	p.AllowMEC = true
	result, err = NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	y = result.Years[0]
	assert.True(t, y.GPTFailed)
	assert.False(t, y.MECStatus)
	assertDec(t, "80000", y.CostBasis)
	assert.True(t, y.WithdrawalTax.IsZero())
}

func TestSimulate_CVATCorridorRatchet(t *testing.T) {
	p := domain.PolicyParameters{
		TestType:      domain.CashValueAccumulationTest,
		StartAge:      45,
		EndAge:        60,
		Premium:       domain.FlatPremium(dec("10000"), 1),
		DeathBenefit:  dec("500000"),
		AverageReturn: dec("6"),
		InterestCap:   dec("10"),
		InterestFloor: dec("0"),
		Exchange:      &domain.Exchange{CashValue: dec("1000000"), CostBasis: dec("500000")},
	}

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Years)

	assertDec(t, "1400000", result.Years[0].DeathBenefit, "corridor lifts the face amount to 1.4x cash value")
	for i := 1; i < len(result.Years); i++ {
		assert.True(t, result.Years[i].DeathBenefit.GreaterThanOrEqual(result.Years[i-1].DeathBenefit),
			"death benefit decreased at year %d", result.Years[i].Year)
		assert.False(t, result.Years[i].GPTFailed)
	}
	assertDec(t, "1400000", result.MinRequiredDeathBenefit)
}

func TestSimulate_CostBasisMonotonicWithoutWithdrawals(t *testing.T) {
	p := baselinePolicy()
	p.EndAge = 70
	result, err := NewSimulationEngine().Simulate(p, NewSeededSource(7))
	require.NoError(t, err)
	for i := 1; i < len(result.Years); i++ {
		assert.True(t, result.Years[i].CostBasis.GreaterThanOrEqual(result.Years[i-1].CostBasis))
		assert.Equal(t, result.Years[i-1].Age+1, result.Years[i].Age)
		assert.Equal(t, result.Years[i-1].Year+1, result.Years[i].Year)
	}
}

func TestSimulate_CreditsStayWithinBounds(t *testing.T) {
	p := baselinePolicy()
	p.EndAge = 85
	p.AverageReturn = dec("9.99")
	p.InterestCap = dec("10")
	p.InterestFloor = dec("9.98")

	result, err := NewSimulationEngine().Simulate(p, NewSeededSource(42))
	require.NoError(t, err)
	for _, y := range result.Years {
		if y.PolicyLapsed {
			continue
		}
		assert.True(t, y.IndexCredit.GreaterThanOrEqual(dec("9.98")), "credit %s below floor", y.IndexCredit)
		assert.True(t, y.IndexCredit.LessThanOrEqual(dec("10")), "credit %s above cap", y.IndexCredit)
	}
}

func TestSimulate_SameSeedIsReproducible(t *testing.T) {
	engine := NewSimulationEngine()
	p := baselinePolicy()
	p.EndAge = 75

	a, err := engine.Simulate(p, NewSeededSource(1234))
	require.NoError(t, err)
	b, err := engine.Simulate(p, NewSeededSource(1234))
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestSimulate_TwoPhaseMinimumDeathBenefit(t *testing.T) {
	p := baselinePolicy()
	p.Premium = domain.TwoPhasePremium(dec("100000"), 2, dec("20000"), 6)

	// funding 100,000x2 + 20,000x4 = 280,000 -> 1,400,000; 8 x 100,000 = 800,000
	assertDec(t, "1400000", MinRequiredDeathBenefit(p))

	result, err := NewSimulationEngine().Simulate(p, ZeroVarianceSource{})
	require.NoError(t, err)
	assertDec(t, "100000", result.Years[1].Premium)
	assertDec(t, "20000", result.Years[2].Premium)
}

func TestSimulate_InvalidParameters(t *testing.T) {
	engine := NewSimulationEngine()

	p := baselinePolicy()
	p.EndAge = 40
	_, err := engine.Simulate(p, ZeroVarianceSource{})
	assert.Error(t, err)

	_, err = engine.Simulate(baselinePolicy(), nil)
	assert.Error(t, err)

	p = baselinePolicy()
	p.TestType = "7702A"
	_, err = engine.Simulate(p, ZeroVarianceSource{})
	assert.Error(t, err)
}

type recordingLogger struct {
	NopLogger
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.lines = append(r.lines, format)
}

func TestSimulate_DebugLogging(t *testing.T) {
	engine := NewSimulationEngine()
	rec := &recordingLogger{}
	engine.SetLogger(rec)
	engine.Debug = true

	_, err := engine.Simulate(baselinePolicy(), ZeroVarianceSource{})
	require.NoError(t, err)
	assert.Len(t, rec.lines, 6)
	assert.True(t, strings.HasPrefix(rec.lines[0], "age %d year %d"))

	engine.SetLogger(nil)
	assert.IsType(t, NopLogger{}, engine.Logger)
}
