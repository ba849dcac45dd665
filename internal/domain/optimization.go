package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Objective defines which outcome the optimizer maximizes
type Objective string

const (
	MaximizeDeathBenefit Objective = "death_benefit" // Largest compliant face amount
	MaximizeCashValue    Objective = "cash_value"    // Largest final cash value
)

// ParseObjective resolves user-facing objective names.
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "death_benefit", "db", "death-benefit":
		return MaximizeDeathBenefit, nil
	case "cash_value", "cv", "cash-value":
		return MaximizeCashValue, nil
	default:
		return "", fmt.Errorf("unknown objective %q (expected death_benefit or cash_value)", s)
	}
}

// GridStrategy selects the candidate grid the optimizer enumerates
type GridStrategy string

const (
	DeathBenefitSweep GridStrategy = "death_benefit_sweep" // Fixed funding, sweep face amount
	ThreeAxisGrid     GridStrategy = "three_axis"          // Premium x funding years x face amount
)

// ParseGridStrategy resolves user-facing strategy names.
func ParseGridStrategy(s string) (GridStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "death_benefit_sweep", "sweep", "db_sweep":
		return DeathBenefitSweep, nil
	case "three_axis", "grid", "3d":
		return ThreeAxisGrid, nil
	default:
		return "", fmt.Errorf("unknown grid strategy %q (expected death_benefit_sweep or three_axis)", s)
	}
}

// CandidateParams is one point of the search grid.
type CandidateParams struct {
	Index        int             `json:"index"`
	Premium      decimal.Decimal `json:"premium"`
	Years        int             `json:"years"`
	DeathBenefit decimal.Decimal `json:"death_benefit"`
}

func (cp CandidateParams) String() string {
	return fmt.Sprintf("premium=%s years=%d db=%s", cp.Premium.StringFixed(2), cp.Years, cp.DeathBenefit.StringFixed(0))
}

// Candidate is an evaluated grid point.
type Candidate struct {
	CandidateParams
	ObjectiveValue decimal.Decimal   `json:"objective_value"`
	FinalCashValue decimal.Decimal   `json:"final_cash_value"`
	FinalDeathBen  decimal.Decimal   `json:"final_death_benefit"`
	MECInFinalYear bool              `json:"mec_final_year"`
	Verdict        Verdict           `json:"verdict"`
	Simulation     *SimulationResult `json:"simulation,omitempty"`
}

// CandidateFailure is a failure-log entry for a rejected candidate. Failures holds
// the earliest age at which each yearly test failed; a minimum death benefit
// shortfall has no age and appears only in Reasons.
type CandidateFailure struct {
	CandidateParams
	Reasons  []FailedTest    `json:"reasons"`
	Failures []FailureReason `json:"failures,omitempty"`
}

// OptimizationResult contains the outcome of a full grid search
type OptimizationResult struct {
	Strategy   GridStrategy       `json:"strategy"`
	Objective  Objective          `json:"objective"`
	Best       *Candidate         `json:"best,omitempty"`
	Ranked     []Candidate        `json:"ranked"`
	Evaluated  int                `json:"evaluated"`
	Compliant  int                `json:"compliant"`
	FailureLog []CandidateFailure `json:"failure_log,omitempty"`
	BaseSeed   int64              `json:"base_seed"`
}

// Feasible reports whether any candidate passed every compliance test.
func (or *OptimizationResult) Feasible() bool {
	return or != nil && or.Best != nil
}
