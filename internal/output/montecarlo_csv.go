package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rpgo/iul-planner/internal/calculation"
)

// MonteCarloCSVFormatter exports one row per crediting path.
type MonteCarloCSVFormatter struct{}

func (m MonteCarloCSVFormatter) Name() string { return "montecarlo-csv" }

func (m MonteCarloCSVFormatter) Format(report *Report) ([]byte, error) {
	if report == nil || report.MonteCarlo == nil {
		return nil, errors.New("report has no Monte Carlo result to export")
	}
	buf := &bytes.Buffer{}
	if err := writeMCOutcomes(buf, report.MonteCarlo); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MonteCarloCSVReport generates the CSV file set for a stochastic illustration
type MonteCarloCSVReport struct {
	Result *calculation.MonteCarloResult
}

// GenerateSummaryCSV creates a summary CSV with aggregate statistics
func (m *MonteCarloCSVReport) GenerateSummaryCSV(outputPath string) error {
	return writeCSVFile(outputPath, func(w io.Writer) error { return writeMCSummary(w, m.Result) })
}

// GenerateDetailedCSV creates a detailed CSV with individual path results
func (m *MonteCarloCSVReport) GenerateDetailedCSV(outputPath string) error {
	return writeCSVFile(outputPath, func(w io.Writer) error { return writeMCOutcomes(w, m.Result) })
}

// GeneratePercentileCSV creates a CSV with the final cash value percentiles
func (m *MonteCarloCSVReport) GeneratePercentileCSV(outputPath string) error {
	return writeCSVFile(outputPath, func(w io.Writer) error { return writeMCPercentiles(w, m.Result) })
}

// GenerateAllCSVReports creates all CSV reports in a single directory
func (m *MonteCarloCSVReport) GenerateAllCSVReports(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := m.GenerateSummaryCSV(filepath.Join(outputDir, "monte_carlo_summary.csv")); err != nil {
		return fmt.Errorf("failed to generate summary CSV: %w", err)
	}
	if err := m.GenerateDetailedCSV(filepath.Join(outputDir, "monte_carlo_detailed.csv")); err != nil {
		return fmt.Errorf("failed to generate detailed CSV: %w", err)
	}
	if err := m.GeneratePercentileCSV(filepath.Join(outputDir, "monte_carlo_percentiles.csv")); err != nil {
		return fmt.Errorf("failed to generate percentile CSV: %w", err)
	}
	return nil
}

func writeCSVFile(outputPath string, write func(io.Writer) error) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()
	return write(file)
}

func writeRows(out io.Writer, rows [][]string) error {
	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func writeMCSummary(out io.Writer, r *calculation.MonteCarloResult) error {
	return writeRows(out, [][]string{
		{"Metric", "Value", "Description"},
		{"Compliance Rate", FormatRate(r.ComplianceRate), "Share of paths that passed every compliance test"},
		{"Lapse Rate", FormatRate(r.LapseRate), "Share of paths where the policy lapsed"},
		{"Median Final Cash Value", FormatCurrency(r.MedianFinalCashValue), "Median cash value at the end of the projection"},
		{"10th Percentile Cash Value", FormatCurrency(r.PercentileRanges.P10), "10th percentile of final cash value"},
		{"90th Percentile Cash Value", FormatCurrency(r.PercentileRanges.P90), "90th percentile of final cash value"},
		{"Number of Simulations", strconv.Itoa(r.NumSimulations), "Total number of crediting paths"},
		{"Base Seed", strconv.FormatInt(r.BaseSeed, 10), "Path i is seeded with base seed + i"},
	})
}

func writeMCOutcomes(out io.Writer, r *calculation.MonteCarloResult) error {
	rows := make([][]string, 0, len(r.Outcomes)+1)
	rows = append(rows, []string{"Path", "Seed", "Years In Force", "Final Cash Value", "Final Death Benefit", "Compliant", "Lapsed", "MEC Years"})
	for i, o := range r.Outcomes {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(o.Seed, 10),
			strconv.Itoa(o.YearsInForce),
			o.FinalCashValue.StringFixed(2),
			o.FinalDeathBenefit.StringFixed(2),
			strconv.FormatBool(o.Compliant),
			strconv.FormatBool(o.Lapsed),
			strconv.Itoa(o.MECYears),
		})
	}
	return writeRows(out, rows)
}

func writeMCPercentiles(out io.Writer, r *calculation.MonteCarloResult) error {
	p := r.PercentileRanges
	return writeRows(out, [][]string{
		{"Percentile", "Final Cash Value", "Interpretation"},
		{"10th", p.P10.StringFixed(2), "Worst 10% of paths"},
		{"25th", p.P25.StringFixed(2), "Below average paths"},
		{"50th (Median)", p.P50.StringFixed(2), "Typical path"},
		{"75th", p.P75.StringFixed(2), "Above average paths"},
		{"90th", p.P90.StringFixed(2), "Best 10% of paths"},
	})
}
