package domain

import (
	"github.com/shopspring/decimal"
)

// YearRecord represents the complete state of the policy at the end of one policy year
type YearRecord struct {
	Age  int `json:"age"`
	Year int `json:"year"`

	// Charges and crediting
	Premium     decimal.Decimal `json:"premium"`
	COI         decimal.Decimal `json:"coi"`
	IndexCredit decimal.Decimal `json:"index_credit_pct"`

	// Policy values
	CashValue    decimal.Decimal `json:"cash_value"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	DeathBenefit decimal.Decimal `json:"death_benefit"`

	// Compliance
	GPTFailed   bool `json:"gpt_failed"`
	TEFRAFailed bool `json:"tefra_failed"`
	MECStatus   bool `json:"mec_status"`

	// Withdrawals
	Withdrawal          decimal.Decimal `json:"withdrawal"`
	WithdrawalTax       decimal.Decimal `json:"tax_on_withdrawal"`
	EarlyPenalty        decimal.Decimal `json:"penalty"`
	DeathBenefitTaxFree bool            `json:"death_benefit_tax_free"`
	PolicyLapsed        bool            `json:"policy_lapsed"`
}

// SimulationResult is the chronological projection plus the scalars derived from it
type SimulationResult struct {
	Years                   []YearRecord    `json:"years"`
	MinRequiredDeathBenefit decimal.Decimal `json:"min_required_death_benefit"`
	FinalDeathBenefit       decimal.Decimal `json:"final_death_benefit"`
	Seed                    int64           `json:"seed"`
}

// Final returns the last simulated year. The engine never emits an empty result.
func (sr *SimulationResult) Final() YearRecord {
	if len(sr.Years) == 0 {
		return YearRecord{}
	}
	return sr.Years[len(sr.Years)-1]
}

// FinalCashValue is the cash value at the end of the last simulated year.
func (sr *SimulationResult) FinalCashValue() decimal.Decimal {
	return sr.Final().CashValue
}

// Lapsed reports whether any year ended with the policy lapsed.
func (sr *SimulationResult) Lapsed() bool {
	for _, y := range sr.Years {
		if y.PolicyLapsed {
			return true
		}
	}
	return false
}

// TotalPremiums sums premiums paid over the projection.
func (sr *SimulationResult) TotalPremiums() decimal.Decimal {
	total := decimal.Zero
	for _, y := range sr.Years {
		total = total.Add(y.Premium)
	}
	return total
}

// TotalWithdrawals sums withdrawals, taxes and penalties over the projection.
func (sr *SimulationResult) TotalWithdrawals() (withdrawn, tax, penalty decimal.Decimal) {
	withdrawn, tax, penalty = decimal.Zero, decimal.Zero, decimal.Zero
	for _, y := range sr.Years {
		withdrawn = withdrawn.Add(y.Withdrawal)
		tax = tax.Add(y.WithdrawalTax)
		penalty = penalty.Add(y.EarlyPenalty)
	}
	return withdrawn, tax, penalty
}

// FailedTest names a compliance test a year can fail.
type FailedTest string

const (
	FailedGPT       FailedTest = "GPT"
	FailedTEFRA     FailedTest = "TEFRA"
	FailedLapse     FailedTest = "LAPSE"
	FailedMinimumDB FailedTest = "MIN_DEATH_BENEFIT"
)

// FailureReason records one failed test at one age.
type FailureReason struct {
	Age  int        `json:"age"`
	Year int        `json:"year"`
	Test FailedTest `json:"test"`
}

// Verdict is the pass/fail outcome of the compliance evaluation
type Verdict struct {
	Compliant                bool            `json:"compliant"`
	Failures                 []FailureReason `json:"failures,omitempty"`
	BelowMinimumDeathBenefit bool            `json:"below_minimum_death_benefit"`
}

// FailedTests returns the distinct failed tests in first-seen order.
func (v Verdict) FailedTests() []FailedTest {
	seen := make(map[FailedTest]bool)
	var out []FailedTest
	for _, f := range v.Failures {
		if !seen[f.Test] {
			seen[f.Test] = true
			out = append(out, f.Test)
		}
	}
	if v.BelowMinimumDeathBenefit && !seen[FailedMinimumDB] {
		out = append(out, FailedMinimumDB)
	}
	return out
}

// FirstFailures returns the earliest failure of each test, in first-seen order.
func (v Verdict) FirstFailures() []FailureReason {
	seen := make(map[FailedTest]bool)
	var out []FailureReason
	for _, f := range v.Failures {
		if !seen[f.Test] {
			seen[f.Test] = true
			out = append(out, f)
		}
	}
	return out
}
