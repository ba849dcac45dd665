package output

import (
	"strconv"

	"github.com/rpgo/iul-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals and thousands separators.
func FormatCurrency(amount decimal.Decimal) string { return money.Format(amount) }

// FormatWholeCurrency formats a face amount in whole dollars.
func FormatWholeCurrency(amount decimal.Decimal) string { return money.FormatWhole(amount) }

// FormatPercentage formats a percentage value with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return money.Percent(amount) }

// FormatRate formats a fraction (0.25) as a percentage (25.00%).
func FormatRate(rate decimal.Decimal) string { return money.Percent(rate.Mul(decimalHundred)) }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }

// yesNo renders compliance flags for human-facing output.
func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
