package domain

import (
	"github.com/shopspring/decimal"
)

// SimulationSettings controls the random crediting source
type SimulationSettings struct {
	Seed          int64 `yaml:"seed" json:"seed"`
	Deterministic bool  `yaml:"deterministic" json:"deterministic"`
}

// OptimizationSettings configures the plan optimizer
type OptimizationSettings struct {
	Strategy        GridStrategy    `yaml:"strategy" json:"strategy"`
	Objective       Objective       `yaml:"objective" json:"objective"`
	TotalInvestment decimal.Decimal `yaml:"total_investment" json:"total_investment"`
	PayYears        int             `yaml:"pay_years" json:"pay_years"`
	Workers         int             `yaml:"workers" json:"workers"`
	Top             int             `yaml:"top" json:"top"`
	FailureLogSize  int             `yaml:"failure_log_size" json:"failure_log_size"`
}

// DefaultOptimizationSettings returns the settings used when none are configured.
func DefaultOptimizationSettings() OptimizationSettings {
	return OptimizationSettings{
		Strategy:       ThreeAxisGrid,
		Objective:      MaximizeCashValue,
		PayYears:       4,
		Top:            5,
		FailureLogSize: 5,
	}
}

// Configuration represents the complete input file
type Configuration struct {
	Policy       PolicyParameters      `yaml:"policy" json:"policy"`
	Simulation   SimulationSettings    `yaml:"simulation" json:"simulation"`
	Optimization *OptimizationSettings `yaml:"optimization,omitempty" json:"optimization,omitempty"`
}
