package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/rpgo/iul-planner/internal/domain"
)

// CSVCandidatesFormatter exports the ranked optimizer candidates followed by the
// failure log when no candidate was compliant.
type CSVCandidatesFormatter struct{}

func (c CSVCandidatesFormatter) Name() string { return "candidates-csv" }

func (c CSVCandidatesFormatter) Format(report *Report) ([]byte, error) {
	if report == nil || report.Optimization == nil {
		return nil, errors.New("report has no optimization result to export")
	}
	opt := report.Optimization

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Rank", "Index", "Premium", "Years", "Death Benefit", "Objective", "Objective Value", "Final Cash Value", "Final Death Benefit", "MEC Final Year", "Compliant", "Failed Tests", "First Failure Ages"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i, c := range opt.Ranked {
		row := []string{
			intToString(i + 1),
			intToString(c.Index),
			c.Premium.StringFixed(2),
			intToString(c.Years),
			c.DeathBenefit.StringFixed(2),
			string(opt.Objective),
			c.ObjectiveValue.StringFixed(2),
			c.FinalCashValue.StringFixed(2),
			c.FinalDeathBen.StringFixed(2),
			boolToString(c.MECInFinalYear),
			boolToString(true),
			"",
			"",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	for _, f := range opt.FailureLog {
		row := []string{
			"",
			intToString(f.Index),
			f.Premium.StringFixed(2),
			intToString(f.Years),
			f.DeathBenefit.StringFixed(2),
			string(opt.Objective),
			"",
			"",
			"",
			"",
			boolToString(false),
			joinFailedTests(f.Reasons),
			joinFailureAges(f.Failures),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func joinFailedTests(tests []domain.FailedTest) string {
	parts := make([]string, len(tests))
	for i, t := range tests {
		parts[i] = string(t)
	}
	return strings.Join(parts, ";")
}

// joinFailureAges renders each test's first failing age as TEST@age.
func joinFailureAges(failures []domain.FailureReason) string {
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = fmt.Sprintf("%s@%d", f.Test, f.Age)
	}
	return strings.Join(parts, ";")
}

// describeFailure is the console form of a failure-log entry.
func describeFailure(f domain.CandidateFailure) string {
	var parts []string
	for _, r := range f.Failures {
		parts = append(parts, fmt.Sprintf("%s at age %d", r.Test, r.Age))
	}
	for _, t := range f.Reasons {
		if t == domain.FailedMinimumDB {
			parts = append(parts, "death benefit below minimum")
		}
	}
	if len(parts) == 0 {
		return joinFailedTests(f.Reasons)
	}
	return strings.Join(parts, ", ")
}
