package output

import (
	"bytes"
	"encoding/csv"
	"errors"

	"github.com/rpgo/iul-planner/internal/domain"
)

// YearColumns is the year table column set shared by the CSV export and the console table.
var YearColumns = []string{
	"Age",
	"Year",
	"Premium",
	"COI",
	"Index Credit (%)",
	"Cash Value",
	"Cost Basis",
	"Death Benefit",
	"GPT Failed",
	"TEFRA Failed",
	"MEC Status",
	"Withdrawal",
	"Tax on Withdrawal",
	"Penalty (if <59.5)",
	"Death Benefit Tax-Free",
	"Policy Lapsed",
}

// errNoProjection is returned by formatters that need a year table when the report has none.
var errNoProjection = errors.New("report has no projection to export")

// CSVYearsFormatter exports the year-by-year projection, one row per policy year.
type CSVYearsFormatter struct{}

func (c CSVYearsFormatter) Name() string { return "csv" }

func (c CSVYearsFormatter) Format(report *Report) ([]byte, error) {
	if report == nil || report.Simulation == nil {
		return nil, errNoProjection
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(YearColumns); err != nil {
		return nil, err
	}
	for _, y := range report.Simulation.Years {
		if err := w.Write(yearRow(y)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func yearRow(y domain.YearRecord) []string {
	return []string{
		intToString(y.Age),
		intToString(y.Year),
		y.Premium.StringFixed(2),
		y.COI.StringFixed(2),
		y.IndexCredit.StringFixed(2),
		y.CashValue.StringFixed(2),
		y.CostBasis.StringFixed(2),
		y.DeathBenefit.StringFixed(2),
		boolToString(y.GPTFailed),
		boolToString(y.TEFRAFailed),
		boolToString(y.MECStatus),
		y.Withdrawal.StringFixed(2),
		y.WithdrawalTax.StringFixed(2),
		y.EarlyPenalty.StringFixed(2),
		boolToString(y.DeathBenefitTaxFree),
		boolToString(y.PolicyLapsed),
	}
}
