package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
)

// ConsoleFormatter renders a styled human-readable illustration.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	if report == nil {
		return nil, errNoProjection
	}
	var buf bytes.Buffer
	fmt.Fprintln(&buf, titleStyle.Render("IUL POLICY ILLUSTRATION"))
	fmt.Fprintln(&buf, boxStyle.Render(policyBlock(report)))

	if report.Verdict != nil {
		fmt.Fprintln(&buf, verdictLine(*report.Verdict))
	}
	if report.Income != nil {
		fmt.Fprintln(&buf, sectionStyle.Render("SUSTAINABLE INCOME"))
		fmt.Fprintf(&buf, "  %s per year from age %d (%d projections)\n",
			FormatWholeCurrency(report.Income.Amount), report.Income.StartAge, report.Income.Iterations)
	}
	if report.Simulation != nil {
		writeYearTable(&buf, report.Simulation)
		writeProjectionSummary(&buf, SummarizeProjection(report.Simulation))
	}
	if report.Optimization != nil {
		writeOptimization(&buf, report.Optimization)
	}
	if report.MonteCarlo != nil {
		writeMonteCarlo(&buf, report.MonteCarlo)
	}

	fmt.Fprintln(&buf, sectionStyle.Render("ASSUMPTIONS"))
	for _, a := range GenerateAssumptions(report.Policy) {
		fmt.Fprintf(&buf, "  • %s\n", a)
	}
	return buf.Bytes(), nil
}

func policyBlock(report *Report) string {
	p := report.Policy
	var lines []string
	add := func(label, value string) {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-22s", label))+value)
	}

	add("Test type", string(p.TestType))
	add("Ages", fmt.Sprintf("%d to %d (%d years)", p.StartAge, p.EndAge, p.Years()))
	premium := fmt.Sprintf("%s x %d years", FormatCurrency(p.Premium.Amount), p.Premium.Years)
	if p.Premium.IsTwoPhase() {
		premium += fmt.Sprintf(", then %s through year %d", FormatCurrency(p.Premium.OngoingAmount), p.Premium.TotalYears)
	}
	add("Premium", premium)
	add("Total funding", FormatCurrency(p.Premium.TotalFunding()))
	add("Death benefit", FormatWholeCurrency(p.DeathBenefit))
	add("Crediting", fmt.Sprintf("%s average, cap %s, floor %s", FormatPercentage(p.AverageReturn), FormatPercentage(p.InterestCap), FormatPercentage(p.InterestFloor)))
	if p.Exchange != nil {
		add("1035 exchange", fmt.Sprintf("%s cash value, %s basis", FormatCurrency(p.Exchange.CashValue), FormatCurrency(p.Exchange.CostBasis)))
	}
	if p.Withdrawal != nil && p.Withdrawal.Amount.IsPositive() {
		add("Withdrawals", fmt.Sprintf("%s per year from age %d", FormatCurrency(p.Withdrawal.Amount), p.Withdrawal.StartAge))
	}
	if report.Simulation != nil {
		add("Minimum death benefit", FormatWholeCurrency(report.Simulation.MinRequiredDeathBenefit))
		if report.Simulation.Seed != 0 {
			add("Seed", fmt.Sprintf("%d", report.Simulation.Seed))
		}
	}
	return strings.Join(lines, "\n")
}

func verdictLine(v domain.Verdict) string {
	if v.Compliant {
		return badge(true, "COMPLIANT", "")
	}
	tests := v.FailedTests()
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = string(t)
	}
	line := badge(false, "", "NON-COMPLIANT") + ": " + strings.Join(names, ", ")
	if len(v.Failures) > 0 {
		first := v.Failures[0]
		line += fmt.Sprintf(" (first failure %s at age %d)", first.Test, first.Age)
	}
	return line
}

func writeYearTable(buf *bytes.Buffer, result *domain.SimulationResult) {
	fmt.Fprintln(buf, sectionStyle.Render("YEAR-BY-YEAR PROJECTION"))
	rows := make([][]string, len(result.Years))
	flagged := make([]bool, len(result.Years))
	for i, y := range result.Years {
		rows[i] = []string{
			intToString(y.Age),
			intToString(y.Year),
			FormatCurrency(y.Premium),
			FormatCurrency(y.COI),
			y.IndexCredit.StringFixed(2),
			FormatCurrency(y.CashValue),
			FormatCurrency(y.CostBasis),
			FormatCurrency(y.DeathBenefit),
			yesNo(y.GPTFailed),
			yesNo(y.TEFRAFailed),
			yesNo(y.MECStatus),
			FormatCurrency(y.Withdrawal),
			FormatCurrency(y.WithdrawalTax),
			FormatCurrency(y.EarlyPenalty),
			yesNo(y.DeathBenefitTaxFree),
			yesNo(y.PolicyLapsed),
		}
		flagged[i] = y.GPTFailed || y.TEFRAFailed || y.PolicyLapsed
	}
	fmt.Fprintln(buf, renderTable(YearColumns, rows, flagged))
}

func writeProjectionSummary(buf *bytes.Buffer, s ProjectionSummary) {
	fmt.Fprintln(buf, sectionStyle.Render("SUMMARY"))
	fmt.Fprintf(buf, "  Years in force:       %d\n", s.YearsInForce)
	fmt.Fprintf(buf, "  Total premiums:       %s\n", FormatCurrency(s.TotalPremiums))
	fmt.Fprintf(buf, "  Peak cash value:      %s (age %d)\n", FormatCurrency(s.PeakCashValue), s.PeakAge)
	fmt.Fprintf(buf, "  Final cash value:     %s\n", FormatCurrency(s.FinalCashValue))
	fmt.Fprintf(buf, "  Final death benefit:  %s\n", FormatCurrency(s.FinalDeathBenefit))
	if s.TotalWithdrawals.IsPositive() {
		fmt.Fprintf(buf, "  Withdrawals:          %s from age %d (tax %s, penalty %s)\n",
			FormatCurrency(s.TotalWithdrawals), s.FirstWithdrawAge, FormatCurrency(s.TotalTax), FormatCurrency(s.TotalPenalty))
	}
	if s.FirstMECAge != 0 {
		fmt.Fprintln(buf, warnStyle.Render(fmt.Sprintf("  MEC status first reached at age %d", s.FirstMECAge)))
	}
	if s.Lapsed {
		fmt.Fprintln(buf, failStyle.Render(fmt.Sprintf("  Policy lapsed at age %d", s.LapseAge)))
	}
}

func writeOptimization(buf *bytes.Buffer, opt *domain.OptimizationResult) {
	fmt.Fprintln(buf, sectionStyle.Render("OPTIMIZATION"))
	fmt.Fprintf(buf, "  Strategy %s, objective %s: %d candidates evaluated, %d compliant\n",
		opt.Strategy, opt.Objective, opt.Evaluated, opt.Compliant)

	if !opt.Feasible() {
		fmt.Fprintln(buf, "  "+badge(false, "", "No compliant plan found."))
		if len(opt.FailureLog) > 0 {
			fmt.Fprintln(buf, "  First rejected candidates:")
			for _, f := range opt.FailureLog {
				fmt.Fprintf(buf, "    %s: %s\n", f.CandidateParams, describeFailure(f))
			}
		}
		return
	}

	best := opt.Best
	fmt.Fprintf(buf, "  %s %s x %d years, death benefit %s, objective value %s\n",
		badge(true, "Best plan:", ""), FormatCurrency(best.Premium), best.Years, FormatWholeCurrency(best.DeathBenefit), FormatCurrency(best.ObjectiveValue))

	header := []string{"Rank", "Premium", "Years", "Death Benefit", "Objective", "Final Cash Value", "MEC"}
	rows := make([][]string, len(opt.Ranked))
	for i, c := range opt.Ranked {
		rows[i] = []string{
			intToString(i + 1),
			FormatCurrency(c.Premium),
			intToString(c.Years),
			FormatWholeCurrency(c.DeathBenefit),
			FormatCurrency(c.ObjectiveValue),
			FormatCurrency(c.FinalCashValue),
			yesNo(c.MECInFinalYear),
		}
	}
	fmt.Fprintln(buf, renderTable(header, rows, nil))
}

func writeMonteCarlo(buf *bytes.Buffer, mc *calculation.MonteCarloResult) {
	fmt.Fprintln(buf, sectionStyle.Render("MONTE CARLO"))
	fmt.Fprintf(buf, "  Paths: %d (base seed %d)\n", mc.NumSimulations, mc.BaseSeed)
	fmt.Fprintf(buf, "  Compliance rate: %s\n", FormatRate(mc.ComplianceRate))
	fmt.Fprintf(buf, "  Lapse rate:      %s\n", FormatRate(mc.LapseRate))
	p := mc.PercentileRanges
	rows := [][]string{
		{"10th", FormatCurrency(p.P10)},
		{"25th", FormatCurrency(p.P25)},
		{"50th", FormatCurrency(p.P50)},
		{"75th", FormatCurrency(p.P75)},
		{"90th", FormatCurrency(p.P90)},
	}
	fmt.Fprintln(buf, renderTable([]string{"Percentile", "Final Cash Value"}, rows, nil))
}

// renderTable right-aligns every column to its widest cell. Flagged rows are highlighted.
func renderTable(header []string, rows [][]string, flagged []bool) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	pad := func(cells []string) string {
		out := make([]string, len(cells))
		for i, cell := range cells {
			out[i] = strings.Repeat(" ", widths[i]-lipgloss.Width(cell)) + cell
		}
		return strings.Join(out, "  ")
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, headerCellStyle.Render(pad(header)))
	for i, row := range rows {
		line := pad(row)
		if flagged != nil && flagged[i] {
			line = warnStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
