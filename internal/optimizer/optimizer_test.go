package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePolicy() domain.PolicyParameters {
	return domain.PolicyParameters{
		TestType:      domain.GuidelinePremiumTest,
		StartAge:      45,
		EndAge:        55,
		AverageReturn: dec("6"),
		InterestCap:   dec("10"),
		InterestFloor: dec("0"),
	}
}

func sweepRequest(total string, objective domain.Objective) Request {
	return Request{
		Base:            basePolicy(),
		Strategy:        domain.DeathBenefitSweep,
		Objective:       objective,
		TotalInvestment: dec(total),
		PayYears:        4,
	}
}

func deterministicOptions(workers int) Options {
	return Options{Workers: workers, Top: 0, FailureLogSize: 5, Deterministic: true}
}

func TestOptimize_SweepMaximizesDeathBenefit(t *testing.T) {
	opt := NewOptimizer(nil, deterministicOptions(4))
	result, err := opt.Optimize(context.Background(), sweepRequest("200000", domain.MaximizeDeathBenefit))
	require.NoError(t, err)

	assert.Equal(t, 190, result.Evaluated)
	require.True(t, result.Feasible())
	require.NotEmpty(t, result.Ranked)
	assert.Equal(t, result.Compliant, len(result.Ranked))
	assert.Nil(t, result.FailureLog)

	best := result.Best
	assert.True(t, best.Verdict.Compliant)
	require.NotNil(t, best.Simulation)
	assert.True(t, best.ObjectiveValue.Equal(best.DeathBenefit))

	for _, c := range result.Ranked {
		assert.True(t, c.Verdict.Compliant)
		assert.True(t, c.DeathBenefit.LessThanOrEqual(best.DeathBenefit))
		assert.True(t, c.DeathBenefit.GreaterThanOrEqual(dec("1000000")), "below the funding minimum")
		assert.Nil(t, c.Simulation)
	}
	for i := 1; i < len(result.Ranked); i++ {
		assert.True(t, result.Ranked[i-1].ObjectiveValue.GreaterThanOrEqual(result.Ranked[i].ObjectiveValue))
	}
	assert.True(t, result.Ranked[0].DeathBenefit.Equal(best.DeathBenefit))
}

func TestOptimize_SweepMaximizesCashValue(t *testing.T) {
	opt := NewOptimizer(nil, deterministicOptions(2))
	result, err := opt.Optimize(context.Background(), sweepRequest("200000", domain.MaximizeCashValue))
	require.NoError(t, err)
	require.True(t, result.Feasible())

	// The smallest face amount that satisfies the guideline limit carries the lowest charges.
	assert.True(t, dec("1800000").Equal(result.Best.DeathBenefit), "got %s", result.Best.DeathBenefit)
	assert.True(t, result.Best.ObjectiveValue.Equal(result.Best.Simulation.FinalCashValue()))
}

func TestOptimize_Infeasible(t *testing.T) {
	opt := NewOptimizer(nil, deterministicOptions(4))
	result, err := opt.Optimize(context.Background(), sweepRequest("4000000", domain.MaximizeDeathBenefit))
	require.NoError(t, err, "no feasible plan is a result, not an error")

	assert.False(t, result.Feasible())
	assert.Nil(t, result.Best)
	assert.Empty(t, result.Ranked)
	assert.Equal(t, 190, result.Evaluated)
	assert.Equal(t, 0, result.Compliant)

	require.Len(t, result.FailureLog, 5)
	for i, f := range result.FailureLog {
		assert.Equal(t, i, f.Index, "failure log keeps grid order")
		assert.Contains(t, f.Reasons, domain.FailedGPT)
		require.NotEmpty(t, f.Failures)
		assert.Equal(t, domain.FailureReason{Age: 45, Year: 1, Test: domain.FailedGPT}, f.Failures[0],
			"overfunding fails the guideline test in the first year")
	}
}

func TestOptimize_CapBelowFloorCreditsTheCap(t *testing.T) {
	req := sweepRequest("200000", domain.MaximizeDeathBenefit)
	req.Base.InterestCap = dec("-5")
	req.Base.InterestFloor = dec("0")

	opt := NewOptimizer(nil, deterministicOptions(4))
	result, err := opt.Optimize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 190, result.Evaluated)

	// Shrinking cash value does not by itself fail the corridor, so compliant plans can remain.
	if !result.Feasible() {
		assert.NotEmpty(t, result.FailureLog)
		return
	}
	for _, y := range result.Best.Simulation.Years {
		assert.True(t, dec("-5").Equal(y.IndexCredit), "age %d credited %s", y.Age, y.IndexCredit)
	}
}

func TestOptimize_WorkerCountDoesNotChangeResult(t *testing.T) {
	run := func(workers int, opts Options) []byte {
		opts.Workers = workers
		result, err := NewOptimizer(nil, opts).Optimize(context.Background(), sweepRequest("200000", domain.MaximizeCashValue))
		require.NoError(t, err)
		data, err := json.Marshal(result)
		require.NoError(t, err)
		return data
	}

	assert.JSONEq(t, string(run(1, deterministicOptions(1))), string(run(8, deterministicOptions(8))))

	seeded := Options{Top: 5, FailureLogSize: 5, Seed: 42}
	assert.JSONEq(t, string(run(1, seeded)), string(run(8, seeded)))
}

func TestOptimize_ThreeAxis(t *testing.T) {
	opt := NewOptimizer(nil, Options{Workers: 4, Top: 5, FailureLogSize: 5, Deterministic: true})
	result, err := opt.Optimize(context.Background(), Request{
		Base:      basePolicy(),
		Strategy:  domain.ThreeAxisGrid,
		Objective: domain.MaximizeCashValue,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ThreeAxisGrid, result.Strategy)
	assert.Equal(t, 315, result.Evaluated)
	require.True(t, result.Feasible())
	assert.LessOrEqual(t, len(result.Ranked), 5)
	assert.GreaterOrEqual(t, result.Compliant, len(result.Ranked))

	best := result.Best
	assert.True(t, best.Verdict.Compliant)
	assert.True(t, best.Premium.GreaterThanOrEqual(dec("50000")))
	assert.True(t, best.Premium.LessThanOrEqual(dec("150000")))
	assert.GreaterOrEqual(t, best.Years, 4)
	assert.LessOrEqual(t, best.Years, 10)
	assert.True(t, best.FinalCashValue.Equal(best.ObjectiveValue))
}

func TestReduce_FirstFoundWinsTies(t *testing.T) {
	compliant := domain.Verdict{Compliant: true}
	mk := func(idx int, value string) evaluation {
		return evaluation{
			params:    domain.CandidateParams{Index: idx, DeathBenefit: dec(value)},
			result:    &domain.SimulationResult{Years: []domain.YearRecord{{Year: 1}}},
			verdict:   compliant,
			objective: dec(value),
		}
	}
	evals := []evaluation{
		mk(0, "100"),
		mk(1, "300"),
		mk(2, "300"),
		mk(3, "200"),
	}

	out := reduce(Request{Objective: domain.MaximizeDeathBenefit}, domain.DeathBenefitSweep, evals, Options{Top: 3}, 0)
	require.True(t, out.Feasible())
	assert.Equal(t, 1, out.Best.Index)
	require.Len(t, out.Ranked, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{out.Ranked[0].Index, out.Ranked[1].Index, out.Ranked[2].Index})
	assert.Equal(t, 4, out.Compliant)
}

func TestOptimize_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOptimizer(nil, deterministicOptions(2)).Optimize(ctx, sweepRequest("200000", domain.MaximizeDeathBenefit))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimize_InvalidRequest(t *testing.T) {
	opt := NewDefaultOptimizer()

	testCases := []struct {
		desc string
		req  Request
	}{
		{desc: "unknown objective", req: Request{Base: basePolicy(), Strategy: domain.ThreeAxisGrid, Objective: "irr"}},
		{desc: "unknown strategy", req: Request{Base: basePolicy(), Strategy: "spiral", Objective: domain.MaximizeCashValue}},
		{desc: "sweep without pay years", req: Request{Base: basePolicy(), Strategy: domain.DeathBenefitSweep, Objective: domain.MaximizeCashValue, TotalInvestment: dec("1000")}},
		{desc: "sweep without budget", req: Request{Base: basePolicy(), Strategy: domain.DeathBenefitSweep, Objective: domain.MaximizeCashValue, PayYears: 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := opt.Optimize(context.Background(), tc.req)
			require.Error(t, err)
			var optErr *OptimizerError
			assert.True(t, errors.As(err, &optErr))
			assert.Equal(t, "validate_request", optErr.Operation)
		})
	}
}

func TestOptimizerError(t *testing.T) {
	cause := errors.New("boom")
	err := &OptimizerError{Operation: "evaluate_candidate", Message: "failed", Cause: cause}
	assert.Equal(t, "evaluate_candidate: failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "op: msg", (&OptimizerError{Operation: "op", Message: "msg"}).Error())
}

func TestOptimize_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	opt := NewOptimizer(nil, deterministicOptions(4))
	opt.Metrics = NewMetrics(reg)

	_, err := opt.Optimize(context.Background(), sweepRequest("4000000", domain.MaximizeDeathBenefit))
	require.NoError(t, err)

	strategy := string(domain.DeathBenefitSweep)
	assert.Equal(t, float64(190), testutil.ToFloat64(opt.Metrics.candidatesEvaluated.WithLabelValues(strategy)))
	assert.Equal(t, float64(0), testutil.ToFloat64(opt.Metrics.candidatesCompliant.WithLabelValues(strategy)))
	assert.Equal(t, float64(190), testutil.ToFloat64(opt.Metrics.candidatesRejected.WithLabelValues(strategy, string(domain.FailedGPT))))
	assert.Equal(t, float64(0), testutil.ToFloat64(opt.Metrics.activeEvaluations))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

type countingLogger struct {
	infos int64
}

func (c *countingLogger) Debugf(string, ...any) {}
func (c *countingLogger) Infof(string, ...any)  { c.infos++ }
func (c *countingLogger) Warnf(string, ...any)  {}
func (c *countingLogger) Errorf(string, ...any) {}

func TestOptimize_ProgressLogging(t *testing.T) {
	logger := &countingLogger{}
	opt := NewOptimizer(nil, deterministicOptions(1))
	opt.SetLogger(logger)

	_, err := opt.Optimize(context.Background(), sweepRequest("200000", domain.MaximizeDeathBenefit))
	require.NoError(t, err)
	// start line plus at least the first progress line; the rest are throttled
	assert.GreaterOrEqual(t, logger.infos, int64(2))
	assert.Less(t, logger.infos, int64(190))

	opt.SetLogger(nil)
	assert.NotNil(t, opt.Logger)
}
