package main

import (
	"fmt"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/output"
	"github.com/spf13/cobra"
)

func monteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [input-file]",
		Short: "Project the policy across many seeded crediting paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonteCarlo(cmd, args[0])
		},
	}
	addSimulationFlags(cmd)
	addOutputFlags(cmd, "console, montecarlo-csv, json")
	cmd.Flags().IntP("simulations", "s", 1000, "Number of crediting paths")
	cmd.Flags().Int("workers", 0, "Concurrent paths (default: number of CPUs)")
	cmd.Flags().String("csv-dir", "", "Also write summary, detailed and percentile CSV files to this directory")
	return cmd
}

func runMonteCarlo(cmd *cobra.Command, inputFile string) error {
	cfg, err := loadConfiguration(cmd, inputFile)
	if err != nil {
		return err
	}
	if cfg.Simulation.Deterministic {
		return fmt.Errorf("monte carlo needs random crediting; remove deterministic mode")
	}
	logger, debugMode := cliLogger(cmd)

	engine := calculation.NewSimulationEngine()
	engine.SetLogger(logger)
	engine.Debug = debugMode

	paths, _ := cmd.Flags().GetInt("simulations")
	workers, _ := cmd.Flags().GetInt("workers")
	sim := calculation.NewMonteCarloSimulator(engine, calculation.MonteCarloConfig{
		NumSimulations: paths,
		Seed:           cfg.Simulation.Seed,
		Workers:        workers,
	})
	logger.Infof("running %d crediting paths from base seed %d", sim.NumSimulations, sim.Seed)

	result, err := sim.RunSimulation(commandContext(cmd), cfg.Policy)
	if err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("csv-dir"); dir != "" {
		csvReport := &output.MonteCarloCSVReport{Result: result}
		if err := csvReport.GenerateAllCSVReports(dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Monte Carlo CSV reports written to %s\n", dir)
	}

	return emit(cmd, output.NewMonteCarloReport(cfg.Policy, result))
}
