package optimizer

import (
	"fmt"
	"runtime"

	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Request describes one optimization run
type Request struct {
	Base      domain.PolicyParameters // Everything except premium schedule and face amount
	Strategy  domain.GridStrategy
	Objective domain.Objective

	// Death benefit sweep only: total funding spread evenly over PayYears
	TotalInvestment decimal.Decimal
	PayYears        int
}

// Options configures how the grid is evaluated
type Options struct {
	Workers        int   // Concurrent evaluations; 1 evaluates sequentially
	Top            int   // Ranked candidates kept; 0 keeps all
	FailureLogSize int   // Rejected candidates recorded when nothing passes
	Seed           int64 // Base seed; candidate i uses Seed+i
	Deterministic  bool  // Credit exactly the average return on every candidate
}

// DefaultOptions returns default optimizer configuration
func DefaultOptions() Options {
	return Options{
		Workers:        runtime.NumCPU(),
		Top:            5,
		FailureLogSize: 5,
	}
}

// Validate checks the request before any candidate is generated
func (r Request) Validate() error {
	switch r.Objective {
	case domain.MaximizeDeathBenefit, domain.MaximizeCashValue:
	default:
		return &OptimizerError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("unsupported objective: %q", r.Objective),
		}
	}

	switch r.Strategy {
	case domain.DeathBenefitSweep:
		if r.PayYears <= 0 {
			return &OptimizerError{
				Operation: "validate_request",
				Message:   "pay_years must be positive for the death benefit sweep",
			}
		}
		if !r.TotalInvestment.IsPositive() {
			return &OptimizerError{
				Operation: "validate_request",
				Message:   "total_investment must be positive for the death benefit sweep",
			}
		}
	case domain.ThreeAxisGrid:
	default:
		return &OptimizerError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("unsupported grid strategy: %q", r.Strategy),
		}
	}

	if r.Base.EndAge < r.Base.StartAge {
		return &OptimizerError{
			Operation: "validate_request",
			Message:   "end_age cannot be before start_age",
		}
	}
	if !r.Base.TestType.Valid() {
		return &OptimizerError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("unsupported test type: %q", r.Base.TestType),
		}
	}
	return nil
}

// OptimizerError represents errors from the plan optimizer
type OptimizerError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *OptimizerError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *OptimizerError) Unwrap() error {
	return e.Cause
}
