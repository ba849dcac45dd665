package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/rpgo/iul-planner/internal/optimizer"
	"github.com/rpgo/iul-planner/internal/output"
	"github.com/spf13/cobra"
)

// errNonCompliant is returned by simulate --strict when the projection fails a test.
var errNonCompliant = errors.New("policy is not compliant")

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [input-file]",
		Short: "Project a policy year by year and check compliance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args[0])
		},
	}
	addSimulationFlags(cmd)
	addOutputFlags(cmd, "console, csv, json")
	cmd.Flags().Bool("strict", false, "Exit with an error when the policy is not compliant")
	cmd.Flags().Bool("optimize-on-fail", false, "Search the three-axis grid when the policy is not compliant")
	return cmd
}

func runSimulate(cmd *cobra.Command, inputFile string) error {
	cfg, err := loadConfiguration(cmd, inputFile)
	if err != nil {
		return err
	}
	logger, debugMode := cliLogger(cmd)

	engine := calculation.NewSimulationEngine()
	engine.SetLogger(logger)
	engine.Debug = debugMode

	rng, seed := calculation.SourceFor(cfg.Simulation)
	result, err := engine.Simulate(cfg.Policy, rng)
	if err != nil {
		return err
	}
	result.Seed = seed

	report := output.NewSimulationReport(cfg.Policy, result)
	compliant := report.Verdict.Compliant
	if !compliant {
		logger.Warnf("policy failed compliance: %v", report.Verdict.FailedTests())
	}

	optimizeOnFail, _ := cmd.Flags().GetBool("optimize-on-fail")
	if !compliant && optimizeOnFail {
		objective := domain.DefaultOptimizationSettings().Objective
		if cfg.Optimization != nil {
			objective = cfg.Optimization.Objective
		}
		opt := optimizer.NewOptimizer(engine, optimizer.Options{
			Workers:        runtime.NumCPU(),
			Top:            5,
			FailureLogSize: 5,
			Seed:           seed,
			Deterministic:  cfg.Simulation.Deterministic,
		})
		opt.SetLogger(logger)
		optResult, err := opt.Optimize(commandContext(cmd), optimizer.Request{
			Base:      cfg.Policy,
			Strategy:  domain.ThreeAxisGrid,
			Objective: objective,
		})
		if err != nil {
			return fmt.Errorf("fallback optimization failed: %w", err)
		}
		if optResult.Feasible() {
			report = output.NewOptimizationReport(cfg.Policy, optResult)
		} else {
			report.Optimization = optResult
		}
	}

	if err := emit(cmd, report); err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if strict && !compliant {
		return errNonCompliant
	}
	return nil
}
