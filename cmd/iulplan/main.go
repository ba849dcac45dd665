package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/config"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/rpgo/iul-planner/internal/output"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "iulplan",
		Short:         "IUL policy projection and funding optimizer",
		Long:          "Projects indexed universal life policies year by year, checks GPT/CVAT, TEFRA and MEC compliance, and searches funding plans for the best compliant design",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		simulateCmd(),
		optimizeCmd(),
		monteCarloCmd(),
		incomeCmd(),
		validateCmd(),
		factorsCmd(),
		exampleCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "iulplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a policy configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.NewInputParser().LoadFromFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid\n", args[0])
			return nil
		},
	}
}

func factorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factors",
		Short: "Print the guideline premium and corridor factor tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetInt("from")
			to, _ := cmd.Flags().GetInt("to")
			if to < from {
				return fmt.Errorf("--to (%d) cannot be before --from (%d)", to, from)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-5s %-10s %-8s\n", "Age", "Guideline", "Corridor")
			for _, row := range calculation.FactorTable(from, to) {
				fmt.Fprintf(w, "%-5d %-10s %-8s\n", row.Age, row.Guideline.StringFixed(4), row.Corridor.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().Int("from", calculation.FactorMinAge, "First age to print")
	cmd.Flags().Int("to", calculation.FactorMaxAge, "Last age to print")
	return cmd
}

func exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [output-file]",
		Short: "Write an example policy configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			if err := parser.SaveConfiguration(parser.CreateExampleConfiguration(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", args[0])
			return nil
		},
	}
}

// loadConfiguration reads the input file and applies the shared simulation flags.
func loadConfiguration(cmd *cobra.Command, inputFile string) (*domain.Configuration, error) {
	cfg, err := config.NewInputParser().LoadFromFile(inputFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("deterministic") {
		cfg.Simulation.Deterministic, _ = cmd.Flags().GetBool("deterministic")
	}
	return cfg, nil
}

// cliLogger returns a stderr logger when --debug is set.
func cliLogger(cmd *cobra.Command) (calculation.Logger, bool) {
	debugMode, _ := cmd.Flags().GetBool("debug")
	if !debugMode {
		return calculation.NopLogger{}, false
	}
	return calculation.NewStdLogger(cmd.ErrOrStderr(), true), true
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// emit renders the report to stdout and, with --save, to a timestamped file.
func emit(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	if err := output.GenerateReport(cmd.OutOrStdout(), report, format); err != nil {
		return err
	}
	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}
	dir, _ := cmd.Flags().GetString("output-dir")
	path, err := output.SaveReport(report, format, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	return nil
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("seed", 0, "Crediting seed (0 picks one and reports it)")
	cmd.Flags().Bool("deterministic", false, "Credit exactly the average return every year")
	cmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
}

func addOutputFlags(cmd *cobra.Command, formats string) {
	cmd.Flags().StringP("format", "f", "console", "Output format ("+formats+")")
	cmd.Flags().Bool("save", false, "Also write the report to a timestamped file")
	cmd.Flags().String("output-dir", ".", "Directory for saved reports")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}
