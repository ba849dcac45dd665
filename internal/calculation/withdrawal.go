package calculation

import (
	"github.com/rpgo/iul-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// WithdrawalOutcome is the tax treatment of one year's withdrawal.
type WithdrawalOutcome struct {
	Amount    decimal.Decimal
	Taxable   decimal.Decimal
	Tax       decimal.Decimal
	Penalty   decimal.Decimal
	CostBasis decimal.Decimal // basis remaining after the withdrawal
}

// ApplyWithdrawal computes the taxation of a withdrawal taken after crediting.
//
// A modified endowment contract distributes gain first: the taxable portion is the
// gain in the policy, capped at the withdrawal, and basis is untouched. Any other
// policy recovers basis first and only the excess over basis is taxable.
// The cash value reduction is always the full requested amount.
func ApplyWithdrawal(age int, cashValue, costBasis, amount decimal.Decimal, isMEC bool) WithdrawalOutcome {
	out := WithdrawalOutcome{
		Amount:    amount,
		CostBasis: costBasis,
	}

	if isMEC {
		gain := money.Max(cashValue.Sub(costBasis), decimal.Zero)
		out.Taxable = money.Min(gain, amount)
	} else {
		recovered := money.Min(costBasis, amount)
		out.Taxable = amount.Sub(recovered)
		out.CostBasis = costBasis.Sub(recovered)
	}

	out.Tax = out.Taxable.Mul(WithdrawalTaxRate)
	out.Penalty = decimal.Zero
	if PenaltyApplies(age) {
		out.Penalty = out.Taxable.Mul(EarlyWithdrawalPenaltyRate)
	}
	return out
}
