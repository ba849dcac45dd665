package calculation

import (
	"github.com/rpgo/iul-planner/internal/domain"
)

// EvaluateCompliance decides whether a projection keeps the policy's tax-qualified status.
// The policy is compliant when no year failed the guideline premium or corridor test,
// the policy never lapsed, and the final death benefit covers the required minimum.
func EvaluateCompliance(result *domain.SimulationResult) domain.Verdict {
	if result == nil {
		return domain.Verdict{}
	}

	var failures []domain.FailureReason
	for _, y := range result.Years {
		if y.GPTFailed {
			failures = append(failures, domain.FailureReason{Age: y.Age, Year: y.Year, Test: domain.FailedGPT})
		}
		if y.TEFRAFailed {
			failures = append(failures, domain.FailureReason{Age: y.Age, Year: y.Year, Test: domain.FailedTEFRA})
		}
		if y.PolicyLapsed {
			failures = append(failures, domain.FailureReason{Age: y.Age, Year: y.Year, Test: domain.FailedLapse})
		}
	}

	belowMin := result.FinalDeathBenefit.LessThan(result.MinRequiredDeathBenefit)
	return domain.Verdict{
		Compliant:                len(failures) == 0 && !belowMin,
		Failures:                 failures,
		BelowMinimumDeathBenefit: belowMin,
	}
}
