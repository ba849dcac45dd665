package main

import (
	"fmt"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/output"
	"github.com/spf13/cobra"
)

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income [input-file]",
		Short: "Solve the largest level withdrawal the policy sustains to its end age",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIncome(cmd, args[0])
		},
	}
	cmd.Flags().Int("start-age", 0, "First withdrawal age (default from the config withdrawal)")
	cmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
	addOutputFlags(cmd, "console, csv, json")
	return cmd
}

func runIncome(cmd *cobra.Command, inputFile string) error {
	cfg, err := loadConfiguration(cmd, inputFile)
	if err != nil {
		return err
	}
	startAge, _ := cmd.Flags().GetInt("start-age")
	if !cmd.Flags().Changed("start-age") {
		if cfg.Policy.Withdrawal == nil {
			return fmt.Errorf("--start-age is required when the config has no withdrawal")
		}
		startAge = cfg.Policy.Withdrawal.StartAge
	}
	logger, debugMode := cliLogger(cmd)

	engine := calculation.NewSimulationEngine()
	engine.SetLogger(logger)
	engine.Debug = debugMode

	income, err := engine.SolveSustainableWithdrawal(cfg.Policy, startAge)
	if err != nil {
		return err
	}
	return emit(cmd, output.NewIncomeReport(cfg.Policy, income))
}
