package config

import (
	"fmt"
	"os"

	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const maxAge = 120

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.LoadFromBytes(data)
}

// LoadFromBytes parses, normalizes and validates a configuration document
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.normalize(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Validate the configuration
	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// normalize resolves enum spellings and fills optimizer defaults
func (ip *InputParser) normalize(config *domain.Configuration) error {
	if config.Policy.TestType != "" {
		tt, err := domain.ParseTestType(string(config.Policy.TestType))
		if err != nil {
			return err
		}
		config.Policy.TestType = tt
	}

	if config.Optimization == nil {
		return nil
	}
	opt := config.Optimization
	defaults := domain.DefaultOptimizationSettings()
	if opt.Strategy == "" {
		opt.Strategy = defaults.Strategy
	} else {
		s, err := domain.ParseGridStrategy(string(opt.Strategy))
		if err != nil {
			return err
		}
		opt.Strategy = s
	}
	if opt.Objective == "" {
		opt.Objective = defaults.Objective
	} else {
		o, err := domain.ParseObjective(string(opt.Objective))
		if err != nil {
			return err
		}
		opt.Objective = o
	}
	if opt.PayYears == 0 {
		opt.PayYears = defaults.PayYears
	}
	if opt.Top == 0 {
		opt.Top = defaults.Top
	}
	if opt.FailureLogSize == 0 {
		opt.FailureLogSize = defaults.FailureLogSize
	}
	return nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validatePolicy(&config.Policy); err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}

	if config.Optimization != nil {
		if err := ip.validateOptimization(config.Optimization); err != nil {
			return fmt.Errorf("optimization validation failed: %w", err)
		}
	}

	return nil
}

// validatePolicy validates the policy parameters
func (ip *InputParser) validatePolicy(p *domain.PolicyParameters) error {
	if !p.TestType.Valid() {
		return fmt.Errorf("test_type must be GPT or CVAT, got %q", p.TestType)
	}

	// Validate ages
	if p.StartAge <= 0 || p.StartAge > maxAge {
		return fmt.Errorf("start_age must be between 1 and %d", maxAge)
	}
	if p.EndAge < p.StartAge {
		return fmt.Errorf("end_age cannot be before start_age")
	}
	if p.EndAge > maxAge {
		return fmt.Errorf("end_age cannot exceed %d", maxAge)
	}

	if err := ip.validatePremium(&p.Premium); err != nil {
		return fmt.Errorf("premium validation failed: %w", err)
	}

	if p.DeathBenefit.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("death_benefit must be positive")
	}
	if p.InterestCap.LessThan(p.InterestFloor) {
		return fmt.Errorf("interest_cap cannot be below interest_floor")
	}
	if p.InitialCostBasis.LessThan(decimal.Zero) {
		return fmt.Errorf("initial_cost_basis cannot be negative")
	}

	if p.Exchange != nil {
		if p.Exchange.CashValue.LessThan(decimal.Zero) {
			return fmt.Errorf("exchange cash_value cannot be negative")
		}
		if p.Exchange.CostBasis.LessThan(decimal.Zero) {
			return fmt.Errorf("exchange cost_basis cannot be negative")
		}
	}

	if p.Withdrawal != nil {
		if p.Withdrawal.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("withdrawal amount cannot be negative")
		}
		if p.Withdrawal.StartAge < 0 || p.Withdrawal.StartAge > maxAge {
			return fmt.Errorf("withdrawal start_age must be between 0 and %d", maxAge)
		}
	}

	return nil
}

// validatePremium validates a premium schedule
func (ip *InputParser) validatePremium(ps *domain.PremiumSchedule) error {
	if ps.Amount.LessThan(decimal.Zero) {
		return fmt.Errorf("amount cannot be negative")
	}
	if ps.Years < 0 {
		return fmt.Errorf("years cannot be negative")
	}
	if ps.OngoingAmount.LessThan(decimal.Zero) {
		return fmt.Errorf("ongoing_amount cannot be negative")
	}
	if ps.TotalYears != 0 && ps.TotalYears < ps.Years {
		return fmt.Errorf("total_years (%d) cannot be less than years (%d)", ps.TotalYears, ps.Years)
	}
	if !ps.IsTwoPhase() && ps.OngoingAmount.IsPositive() {
		return fmt.Errorf("ongoing_amount requires total_years greater than years")
	}
	return nil
}

// validateOptimization validates optimizer settings
func (ip *InputParser) validateOptimization(o *domain.OptimizationSettings) error {
	if o.Strategy == domain.DeathBenefitSweep {
		if o.TotalInvestment.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("total_investment must be positive for the death benefit sweep")
		}
		if o.PayYears <= 0 {
			return fmt.Errorf("pay_years must be positive for the death benefit sweep")
		}
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if o.Top < 0 {
		return fmt.Errorf("top cannot be negative")
	}
	if o.FailureLogSize < 0 {
		return fmt.Errorf("failure_log_size cannot be negative")
	}
	return nil
}

// CreateExampleConfiguration returns the age 45 illustration shipped in testdata
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Policy: domain.PolicyParameters{
			TestType:         domain.GuidelinePremiumTest,
			StartAge:         45,
			EndAge:           62,
			Premium:          domain.FlatPremium(decimal.NewFromInt(50000), 4),
			DeathBenefit:     decimal.NewFromInt(1800000),
			AverageReturn:    decimal.NewFromInt(8),
			InterestCap:      decimal.NewFromInt(12),
			InterestFloor:    decimal.Zero,
			InitialCostBasis: decimal.Zero,
			Withdrawal: &domain.Withdrawal{
				StartAge: 60,
				Amount:   decimal.NewFromInt(10000),
			},
		},
		Simulation: domain.SimulationSettings{
			Seed: 20240101,
		},
		Optimization: &domain.OptimizationSettings{
			Strategy:        domain.ThreeAxisGrid,
			Objective:       domain.MaximizeCashValue,
			TotalInvestment: decimal.NewFromInt(200000),
			PayYears:        4,
			Top:             5,
			FailureLogSize:  5,
		},
	}
}

// SaveConfiguration writes a configuration as YAML
func (ip *InputParser) SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
