package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cents rounds an amount to two decimal places, half away from zero.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromInt builds a whole-dollar amount.
func FromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// Min returns the smaller of two amounts
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two amounts
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Clamp bounds v to [lo, hi]. The floor is applied first, so when lo > hi the
// result is hi.
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return Min(Max(v, lo), hi)
}

// Format renders an amount as US currency with thousands separators, e.g. -$1,234.56.
func Format(d decimal.Decimal) string {
	return format(d, 2)
}

// FormatWhole renders an amount as whole dollars, e.g. $2,000,000.
func FormatWhole(d decimal.Decimal) string {
	return format(d, 0)
}

// Percent renders a percentage value (6 means 6%) with two decimals.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func format(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if d.Round(places).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}
