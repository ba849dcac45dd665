package optimizer

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Optimizer searches a candidate grid for the best compliant funding plan
type Optimizer struct {
	Engine  *calculation.SimulationEngine
	Options Options
	Logger  calculation.Logger
	Metrics *Metrics
}

// NewOptimizer creates a new optimizer
func NewOptimizer(engine *calculation.SimulationEngine, options Options) *Optimizer {
	if engine == nil {
		engine = calculation.NewSimulationEngine()
	}
	return &Optimizer{
		Engine:  engine,
		Options: options,
		Logger:  calculation.NopLogger{},
	}
}

// NewDefaultOptimizer creates an optimizer with default options
func NewDefaultOptimizer() *Optimizer {
	return NewOptimizer(nil, DefaultOptions())
}

// SetLogger sets the progress logger. If nil is provided, a no-op logger is used.
func (o *Optimizer) SetLogger(l calculation.Logger) {
	if l == nil {
		o.Logger = calculation.NopLogger{}
		return
	}
	o.Logger = l
}

// evaluation is the outcome of simulating one grid point
type evaluation struct {
	params    domain.CandidateParams
	result    *domain.SimulationResult
	verdict   domain.Verdict
	objective decimal.Decimal
	err       error
}

// Optimize evaluates every grid point and returns the compliant candidate with the
// greatest objective value. Ties go to the earliest point in grid order. When no
// candidate is compliant the result is infeasible, which is not an error.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*domain.OptimizationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	grid, err := NewGrid(req)
	if err != nil {
		return nil, err
	}

	opts := o.Options
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	baseSeed := int64(0)
	if !opts.Deterministic {
		baseSeed = calculation.ResolveSeed(opts.Seed)
	}

	o.Logger.Infof("optimizing %s over %d candidates (objective=%s, workers=%d)", grid.Strategy(), grid.Size(), req.Objective, opts.Workers)

	evals, err := o.evaluateGrid(ctx, req, grid, opts, baseSeed)
	if err != nil {
		return nil, err
	}
	return reduce(req, grid.Strategy(), evals, opts, baseSeed), nil
}

// evaluateGrid simulates every point on a bounded worker pool. Each point writes
// only its own slot, and its random source depends only on its index.
func (o *Optimizer) evaluateGrid(ctx context.Context, req Request, grid *Grid, opts Options, baseSeed int64) ([]evaluation, error) {
	points := grid.Points()
	evals := make([]evaluation, len(points))

	var wg sync.WaitGroup
	var completed int64
	semaphore := make(chan struct{}, opts.Workers)
	progress := &rate.Sometimes{First: 1, Interval: 2 * time.Second}

	for i, p := range points {
		// Check context cancellation
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, point domain.CandidateParams) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}
			evals[idx] = o.evaluate(req, grid.Strategy(), point, opts, baseSeed)

			done := atomic.AddInt64(&completed, 1)
			progress.Do(func() {
				o.Logger.Infof("evaluated %d/%d candidates", done, len(points))
			})
		}(i, p)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, e := range evals {
		if e.err != nil {
			return nil, &OptimizerError{
				Operation: "evaluate_candidate",
				Message:   "failed to simulate " + e.params.String(),
				Cause:     e.err,
			}
		}
	}
	return evals, nil
}

func (o *Optimizer) evaluate(req Request, strategy domain.GridStrategy, point domain.CandidateParams, opts Options, baseSeed int64) evaluation {
	o.Metrics.evaluationStarted()
	start := time.Now()

	params := req.Base.WithSchedule(domain.FlatPremium(point.Premium, point.Years), point.DeathBenefit)

	var rng calculation.RandomSource = calculation.ZeroVarianceSource{}
	seed := int64(0)
	if !opts.Deterministic {
		seed = baseSeed + int64(point.Index)
		rng = calculation.NewSeededSource(seed)
	}

	result, err := o.Engine.Simulate(params, rng)
	if err != nil {
		o.Metrics.observe(strategy, domain.Verdict{}, time.Since(start))
		return evaluation{params: point, err: err}
	}
	result.Seed = seed

	verdict := calculation.EvaluateCompliance(result)
	o.Metrics.observe(strategy, verdict, time.Since(start))

	return evaluation{
		params:    point,
		result:    result,
		verdict:   verdict,
		objective: objectiveValue(req.Objective, point, result),
	}
}

// objectiveValue is the candidate's face amount or its final cash value.
func objectiveValue(objective domain.Objective, point domain.CandidateParams, result *domain.SimulationResult) decimal.Decimal {
	if objective == domain.MaximizeCashValue {
		return result.FinalCashValue()
	}
	return point.DeathBenefit
}

// isBetter reports whether a candidate strictly beats the current best.
func isBetter(candidate decimal.Decimal, best *domain.Candidate) bool {
	return best == nil || candidate.GreaterThan(best.ObjectiveValue)
}

// reduce walks evaluations in grid order to pick the best, rank the compliant
// candidates and fill the failure log.
func reduce(req Request, strategy domain.GridStrategy, evals []evaluation, opts Options, baseSeed int64) *domain.OptimizationResult {
	out := &domain.OptimizationResult{
		Strategy:  strategy,
		Objective: req.Objective,
		Evaluated: len(evals),
		BaseSeed:  baseSeed,
		Ranked:    []domain.Candidate{},
	}

	for _, e := range evals {
		if !e.verdict.Compliant {
			if len(out.FailureLog) < opts.FailureLogSize {
				out.FailureLog = append(out.FailureLog, domain.CandidateFailure{
					CandidateParams: e.params,
					Reasons:         e.verdict.FailedTests(),
					Failures:        e.verdict.FirstFailures(),
				})
			}
			continue
		}

		out.Compliant++
		c := toCandidate(e)
		if isBetter(c.ObjectiveValue, out.Best) {
			best := c
			best.Simulation = e.result
			out.Best = &best
		}
		out.Ranked = append(out.Ranked, c)
	}

	sort.SliceStable(out.Ranked, func(i, j int) bool {
		return out.Ranked[i].ObjectiveValue.GreaterThan(out.Ranked[j].ObjectiveValue)
	})
	if opts.Top > 0 && len(out.Ranked) > opts.Top {
		out.Ranked = out.Ranked[:opts.Top]
	}
	if out.Best != nil {
		out.FailureLog = nil
	}
	return out
}

func toCandidate(e evaluation) domain.Candidate {
	final := e.result.Final()
	return domain.Candidate{
		CandidateParams: e.params,
		ObjectiveValue:  e.objective,
		FinalCashValue:  final.CashValue,
		FinalDeathBen:   e.result.FinalDeathBenefit,
		MECInFinalYear:  final.MECStatus,
		Verdict:         e.verdict,
	}
}
