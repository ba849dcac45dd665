package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
)

// ErrUnsupportedFormat is returned when no formatter matches the requested name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Report is the input to every formatter. Sections that were not computed are nil.
type Report struct {
	Policy       domain.PolicyParameters        `json:"policy"`
	Simulation   *domain.SimulationResult       `json:"simulation,omitempty"`
	Verdict      *domain.Verdict                `json:"verdict,omitempty"`
	Optimization *domain.OptimizationResult     `json:"optimization,omitempty"`
	MonteCarlo   *calculation.MonteCarloResult  `json:"monte_carlo,omitempty"`
	Income       *calculation.SustainableIncome `json:"income,omitempty"`
}

// NewSimulationReport builds a report for a single projection.
func NewSimulationReport(params domain.PolicyParameters, result *domain.SimulationResult) *Report {
	verdict := calculation.EvaluateCompliance(result)
	return &Report{Policy: params, Simulation: result, Verdict: &verdict}
}

// NewOptimizationReport builds a report for a grid search. The best candidate's
// projection, when there is one, becomes the report's year table.
func NewOptimizationReport(params domain.PolicyParameters, result *domain.OptimizationResult) *Report {
	r := &Report{Policy: params, Optimization: result}
	if result.Feasible() {
		best := result.Best
		r.Policy = params.WithSchedule(domain.FlatPremium(best.Premium, best.Years), best.DeathBenefit)
		r.Simulation = best.Simulation
		verdict := best.Verdict
		r.Verdict = &verdict
	}
	return r
}

// NewMonteCarloReport builds a report for a stochastic illustration.
func NewMonteCarloReport(params domain.PolicyParameters, result *calculation.MonteCarloResult) *Report {
	return &Report{Policy: params, MonteCarlo: result}
}

// NewIncomeReport builds a report for a solved withdrawal. The policy carries the
// solved withdrawal and the year table is the projection at that amount.
func NewIncomeReport(params domain.PolicyParameters, income *calculation.SustainableIncome) *Report {
	params.Withdrawal = &domain.Withdrawal{StartAge: income.StartAge, Amount: income.Amount}
	r := NewSimulationReport(params, income.Simulation)
	r.Income = income
	return r
}

// GenerateReport renders the report with the named formatter and writes it to w.
func GenerateReport(w io.Writer, report *Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveReport writes the report to a timestamped file in dir and returns its path.
func SaveReport(report *Report, format, dir string) (string, error) {
	f := GetFormatterByName(format)
	if f == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return WriteFormatted(f, report, dir, extensionFor(f.Name()))
}
