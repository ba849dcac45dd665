package main

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/rpgo/iul-planner/internal/optimizer"
	"github.com/rpgo/iul-planner/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [input-file]",
		Short: "Search funding plans for the best compliant design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, args[0])
		},
	}
	addSimulationFlags(cmd)
	addOutputFlags(cmd, "console, csv, candidates-csv, json")
	cmd.Flags().String("strategy", "", "Grid strategy: death_benefit_sweep or three_axis (default from config)")
	cmd.Flags().String("objective", "", "Objective: death_benefit or cash_value (default from config)")
	cmd.Flags().String("total-investment", "", "Total premium budget for the death benefit sweep")
	cmd.Flags().Int("pay-years", 0, "Funding years for the death benefit sweep")
	cmd.Flags().Int("workers", 0, "Concurrent evaluations (default: number of CPUs)")
	cmd.Flags().Int("top", 0, "Ranked candidates to keep (0 keeps all)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus text-format metrics to this file")
	return cmd
}

// optimizationSettings merges the configured settings with command-line overrides.
func optimizationSettings(cmd *cobra.Command, cfg *domain.Configuration) (domain.OptimizationSettings, error) {
	settings := domain.DefaultOptimizationSettings()
	if cfg.Optimization != nil {
		settings = *cfg.Optimization
	}
	flags := cmd.Flags()

	if flags.Changed("strategy") {
		s, _ := flags.GetString("strategy")
		strategy, err := domain.ParseGridStrategy(s)
		if err != nil {
			return settings, err
		}
		settings.Strategy = strategy
	}
	if flags.Changed("objective") {
		o, _ := flags.GetString("objective")
		objective, err := domain.ParseObjective(o)
		if err != nil {
			return settings, err
		}
		settings.Objective = objective
	}
	if flags.Changed("total-investment") {
		s, _ := flags.GetString("total-investment")
		total, err := decimal.NewFromString(s)
		if err != nil {
			return settings, fmt.Errorf("invalid --total-investment %q: %w", s, err)
		}
		settings.TotalInvestment = total
	}
	if flags.Changed("pay-years") {
		settings.PayYears, _ = flags.GetInt("pay-years")
	}
	if flags.Changed("workers") {
		settings.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("top") {
		settings.Top, _ = flags.GetInt("top")
	}
	if settings.Workers <= 0 {
		settings.Workers = runtime.NumCPU()
	}
	return settings, nil
}

func runOptimize(cmd *cobra.Command, inputFile string) error {
	cfg, err := loadConfiguration(cmd, inputFile)
	if err != nil {
		return err
	}
	settings, err := optimizationSettings(cmd, cfg)
	if err != nil {
		return err
	}
	logger, _ := cliLogger(cmd)

	engine := calculation.NewSimulationEngine()
	engine.SetLogger(logger)

	opt := optimizer.NewOptimizer(engine, optimizer.Options{
		Workers:        settings.Workers,
		Top:            settings.Top,
		FailureLogSize: settings.FailureLogSize,
		Seed:           cfg.Simulation.Seed,
		Deterministic:  cfg.Simulation.Deterministic,
	})
	opt.SetLogger(logger)

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	var registry *prometheus.Registry
	if metricsFile != "" {
		registry = prometheus.NewRegistry()
		opt.Metrics = optimizer.NewMetrics(registry)
	}

	result, err := opt.Optimize(commandContext(cmd), optimizer.Request{
		Base:            cfg.Policy,
		Strategy:        settings.Strategy,
		Objective:       settings.Objective,
		TotalInvestment: settings.TotalInvestment,
		PayYears:        settings.PayYears,
	})
	if err != nil {
		return err
	}
	if !result.Feasible() {
		logger.Warnf("no compliant plan among %d candidates", result.Evaluated)
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics file %s: %w", metricsFile, err)
		}
	}

	return emit(cmd, output.NewOptimizationReport(cfg.Policy, result))
}
