package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// MonteCarloConfig holds configuration for a stochastic illustration
type MonteCarloConfig struct {
	NumSimulations int   `yaml:"num_simulations" json:"num_simulations"`
	Seed           int64 `yaml:"seed" json:"seed"`
	Workers        int   `yaml:"workers" json:"workers"`
}

// MonteCarloSimulator runs the projection across many independently seeded crediting paths
type MonteCarloSimulator struct {
	Engine         *SimulationEngine
	NumSimulations int
	Seed           int64
	Workers        int
}

// MonteCarloResult represents the aggregate of all crediting paths
type MonteCarloResult struct {
	Outcomes             []SimulationOutcome `json:"outcomes"`
	ComplianceRate       decimal.Decimal     `json:"compliance_rate"`
	LapseRate            decimal.Decimal     `json:"lapse_rate"`
	MedianFinalCashValue decimal.Decimal     `json:"median_final_cash_value"`
	PercentileRanges     PercentileRanges    `json:"percentile_ranges"`
	NumSimulations       int                 `json:"num_simulations"`
	BaseSeed             int64               `json:"base_seed"`
}

// SimulationOutcome summarizes a single crediting path
type SimulationOutcome struct {
	Seed              int64           `json:"seed"`
	YearsInForce      int             `json:"years_in_force"`
	FinalCashValue    decimal.Decimal `json:"final_cash_value"`
	FinalDeathBenefit decimal.Decimal `json:"final_death_benefit"`
	Compliant         bool            `json:"compliant"`
	Lapsed            bool            `json:"lapsed"`
	MECYears          int             `json:"mec_years"`
}

// PercentileRanges represents percentile ranges of final cash value
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// NewMonteCarloSimulator creates a new Monte Carlo simulator
func NewMonteCarloSimulator(engine *SimulationEngine, config MonteCarloConfig) *MonteCarloSimulator {
	if engine == nil {
		engine = NewSimulationEngine()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &MonteCarloSimulator{
		Engine:         engine,
		NumSimulations: config.NumSimulations,
		Seed:           ResolveSeed(config.Seed),
		Workers:        config.Workers,
	}
}

// RunSimulation projects the policy once per path. Path i is seeded with Seed+i,
// so results do not depend on the worker count.
func (mcs *MonteCarloSimulator) RunSimulation(ctx context.Context, params domain.PolicyParameters) (*MonteCarloResult, error) {
	if mcs.NumSimulations <= 0 {
		return nil, fmt.Errorf("number of simulations must be positive, got %d", mcs.NumSimulations)
	}
	if err := checkIterable(params, ZeroVarianceSource{}); err != nil {
		return nil, err
	}

	results := make([]SimulationOutcome, mcs.NumSimulations)
	errs := make([]error, mcs.NumSimulations)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, mcs.Workers)

	for i := 0; i < mcs.NumSimulations; i++ {
		wg.Add(1)
		go func(simIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore

			if ctx.Err() != nil {
				return
			}
			seed := mcs.Seed + int64(simIndex)
			outcome, err := mcs.runSinglePath(params, seed)
			results[simIndex] = outcome
			errs[simIndex] = err
		}(i)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	finals := sortedFinalCashValues(results)
	n := decimal.NewFromInt(int64(len(results)))
	compliant, lapsed := 0, 0
	for _, o := range results {
		if o.Compliant {
			compliant++
		}
		if o.Lapsed {
			lapsed++
		}
	}

	return &MonteCarloResult{
		Outcomes:             results,
		ComplianceRate:       decimal.NewFromInt(int64(compliant)).Div(n),
		LapseRate:            decimal.NewFromInt(int64(lapsed)).Div(n),
		MedianFinalCashValue: finals[len(finals)/2],
		PercentileRanges:     percentileRanges(finals),
		NumSimulations:       mcs.NumSimulations,
		BaseSeed:             mcs.Seed,
	}, nil
}

// runSinglePath runs one seeded projection
func (mcs *MonteCarloSimulator) runSinglePath(params domain.PolicyParameters, seed int64) (SimulationOutcome, error) {
	result, err := mcs.Engine.Simulate(params, NewSeededSource(seed))
	if err != nil {
		return SimulationOutcome{}, err
	}
	mecYears := 0
	for _, y := range result.Years {
		if y.MECStatus {
			mecYears++
		}
	}
	return SimulationOutcome{
		Seed:              seed,
		YearsInForce:      len(result.Years),
		FinalCashValue:    result.FinalCashValue(),
		FinalDeathBenefit: result.FinalDeathBenefit,
		Compliant:         EvaluateCompliance(result).Compliant,
		Lapsed:            result.Lapsed(),
		MECYears:          mecYears,
	}, nil
}

func sortedFinalCashValues(outcomes []SimulationOutcome) []decimal.Decimal {
	values := make([]decimal.Decimal, len(outcomes))
	for i, o := range outcomes {
		values[i] = o.FinalCashValue
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
	return values
}

// percentileRanges picks nearest-rank percentiles from ascending values
func percentileRanges(sorted []decimal.Decimal) PercentileRanges {
	n := len(sorted)
	return PercentileRanges{
		P10: sorted[n/10],
		P25: sorted[n/4],
		P50: sorted[n/2],
		P75: sorted[3*n/4],
		P90: sorted[9*n/10],
	}
}
