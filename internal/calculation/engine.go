package calculation

import (
	"fmt"

	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/rpgo/iul-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// SimulationEngine projects a policy year by year
type SimulationEngine struct {
	Debug  bool // Enable per-year debug output
	Logger Logger
}

// NewSimulationEngine creates a new simulation engine
func NewSimulationEngine() *SimulationEngine {
	return &SimulationEngine{
		Logger: NopLogger{},
	}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (se *SimulationEngine) SetLogger(l Logger) {
	if l == nil {
		se.Logger = NopLogger{}
		return
	}
	se.Logger = l
}

// policyState is the running, unrounded state carried between years.
type policyState struct {
	cashValue    decimal.Decimal
	costBasis    decimal.Decimal
	deathBenefit decimal.Decimal
}

// Simulate runs the projection. Compliance failures and lapses are reported on
// the year records; an error means the parameters cannot be iterated at all.
func (se *SimulationEngine) Simulate(params domain.PolicyParameters, rng RandomSource) (*domain.SimulationResult, error) {
	if err := checkIterable(params, rng); err != nil {
		return nil, err
	}
	logger := se.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	state := policyState{
		cashValue:    params.StartingCashValue(),
		costBasis:    params.StartingCostBasis(),
		deathBenefit: params.DeathBenefit,
	}

	years := params.Years()
	history := make([]domain.YearRecord, 0, years)
	lapsed := false

	for year := 1; year <= years; year++ {
		age := params.StartAge + year - 1
		premium := params.Premium.PremiumForYear(year)

		gptFailed := false
		switch params.TestType {
		case domain.GuidelinePremiumTest:
			gptFailed = premium.GreaterThan(state.deathBenefit.Mul(GuidelineFactor(age)))
		case domain.CashValueAccumulationTest:
			corridorDB := state.cashValue.Mul(CorridorFactor(age))
			if state.cashValue.IsPositive() && state.deathBenefit.LessThan(corridorDB) {
				if se.Debug {
					logger.Debugf("age %d: corridor raises death benefit %s -> %s", age, state.deathBenefit.StringFixed(2), corridorDB.StringFixed(2))
				}
				state.deathBenefit = corridorDB
			}
		}

		state.cashValue = state.cashValue.Add(premium)
		state.costBasis = state.costBasis.Add(premium)

		coi := state.deathBenefit.Mul(COIRate(age, params.StartAge))
		if state.cashValue.LessThan(coi) {
			if se.Debug {
				logger.Debugf("age %d: policy lapsed (cash value %s < COI %s)", age, state.cashValue.StringFixed(2), coi.StringFixed(2))
			}
			history = append(history, lapseRecord(age, year, premium, coi, state.costBasis))
			lapsed = true
			break
		}
		state.cashValue = state.cashValue.Sub(coi)

		credit := CreditedRate(params.AverageReturn, params.InterestFloor, params.InterestCap, rng)
		state.cashValue = state.cashValue.Add(state.cashValue.Mul(credit).Div(hundred))

		tefraFailed := state.cashValue.GreaterThan(state.deathBenefit.Mul(CorridorFactor(age)))
		isMEC := gptFailed && !params.AllowMEC

		wd := WithdrawalOutcome{Amount: decimal.Zero, Tax: decimal.Zero, Penalty: decimal.Zero}
		if params.WithdrawalsActive(age) {
			wd = ApplyWithdrawal(age, state.cashValue, state.costBasis, params.Withdrawal.Amount, isMEC)
			state.costBasis = wd.CostBasis
			state.cashValue = state.cashValue.Sub(wd.Amount)
		}

		record := domain.YearRecord{
			Age:                 age,
			Year:                year,
			Premium:             money.Cents(premium),
			COI:                 money.Cents(coi),
			IndexCredit:         credit.Round(2),
			CashValue:           money.Cents(state.cashValue),
			CostBasis:           money.Cents(state.costBasis),
			DeathBenefit:        money.Cents(state.deathBenefit),
			GPTFailed:           gptFailed,
			TEFRAFailed:         tefraFailed,
			MECStatus:           isMEC,
			Withdrawal:          money.Cents(wd.Amount),
			WithdrawalTax:       money.Cents(wd.Tax),
			EarlyPenalty:        money.Cents(wd.Penalty),
			DeathBenefitTaxFree: !isMEC && !tefraFailed,
			PolicyLapsed:        state.cashValue.IsZero() && year != 1,
		}
		history = append(history, record)

		if se.Debug {
			logger.Debugf("age %d year %d: premium=%s coi=%s credit=%s%% cv=%s basis=%s db=%s gpt=%t tefra=%t mec=%t",
				age, year, record.Premium, record.COI, record.IndexCredit, record.CashValue, record.CostBasis,
				record.DeathBenefit, gptFailed, tefraFailed, isMEC)
		}

		if state.cashValue.IsZero() {
			break
		}
	}

	finalDB := money.Cents(state.deathBenefit)
	if lapsed {
		finalDB = decimal.Zero
	}

	return &domain.SimulationResult{
		Years:                   history,
		MinRequiredDeathBenefit: money.Cents(MinRequiredDeathBenefit(params)),
		FinalDeathBenefit:       finalDB,
	}, nil
}

// lapseRecord is the terminal record written when the charge exceeds the cash value.
func lapseRecord(age, year int, premium, coi, costBasis decimal.Decimal) domain.YearRecord {
	return domain.YearRecord{
		Age:                 age,
		Year:                year,
		Premium:             money.Cents(premium),
		COI:                 money.Cents(coi),
		IndexCredit:         decimal.Zero,
		CashValue:           decimal.Zero,
		CostBasis:           money.Cents(costBasis),
		DeathBenefit:        decimal.Zero,
		GPTFailed:           true,
		TEFRAFailed:         true,
		MECStatus:           true,
		Withdrawal:          decimal.Zero,
		WithdrawalTax:       decimal.Zero,
		EarlyPenalty:        decimal.Zero,
		DeathBenefitTaxFree: false,
		PolicyLapsed:        true,
	}
}

// MinRequiredDeathBenefit is the smallest face amount the funding plan supports:
// total funding over the GPT divisor, or eight times the first-year premium,
// whichever is larger. Under CVAT the starting cash value's corridor also applies.
func MinRequiredDeathBenefit(params domain.PolicyParameters) decimal.Decimal {
	firstPremium := params.Premium.FirstYearPremium()
	minDB := money.Max(
		params.Premium.TotalFunding().Div(GPTDivisor),
		firstPremium.Mul(MECPremiumMultiple),
	)

	if params.TestType == domain.CashValueAccumulationTest {
		startingCV := firstPremium
		if params.Exchange != nil {
			startingCV = params.Exchange.CashValue
		}
		minDB = money.Max(minDB, startingCV.Mul(CorridorFactor(params.StartAge)))
	}
	return minDB
}

// checkIterable rejects parameters the year loop cannot run with.
func checkIterable(params domain.PolicyParameters, rng RandomSource) error {
	if rng == nil {
		return fmt.Errorf("random source is required")
	}
	if params.EndAge < params.StartAge {
		return fmt.Errorf("end age %d is before start age %d", params.EndAge, params.StartAge)
	}
	if !params.TestType.Valid() {
		return fmt.Errorf("unsupported test type %q", params.TestType)
	}
	return nil
}
