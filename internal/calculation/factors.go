package calculation

import (
	"github.com/shopspring/decimal"
)

// Factor tables are defined for issue ages 35 through 85; any other age uses the fallback.
const (
	FactorMinAge = 35
	FactorMaxAge = 85
)

var (
	guidelineBase     = decimal.RequireFromString("0.025")
	guidelineSlope    = decimal.RequireFromString("0.0003")
	guidelineFallback = decimal.RequireFromString("0.03")

	corridorBase     = decimal.RequireFromString("1.5")
	corridorSlope    = decimal.RequireFromString("0.01")
	corridorMinimum  = decimal.NewFromInt(1)
	corridorFallback = decimal.NewFromInt(1)
)

// GuidelineFactor returns the guideline premium limit per dollar of death benefit.
func GuidelineFactor(age int) decimal.Decimal {
	if age < FactorMinAge || age > FactorMaxAge {
		return guidelineFallback
	}
	return guidelineBase.Add(guidelineSlope.Mul(decimal.NewFromInt(int64(age - FactorMinAge))))
}

// CorridorFactor returns the minimum death-benefit-to-cash-value ratio at an age.
func CorridorFactor(age int) decimal.Decimal {
	if age < FactorMinAge || age > FactorMaxAge {
		return corridorFallback
	}
	f := corridorBase.Sub(corridorSlope.Mul(decimal.NewFromInt(int64(age - FactorMinAge))))
	if f.LessThan(corridorMinimum) {
		return corridorMinimum
	}
	return f
}

// FactorRow pairs both factors for a single age.
type FactorRow struct {
	Age       int             `json:"age"`
	Guideline decimal.Decimal `json:"guideline_factor"`
	Corridor  decimal.Decimal `json:"corridor_factor"`
}

// FactorTable lists both factors for every age in [from, to].
func FactorTable(from, to int) []FactorRow {
	if to < from {
		return nil
	}
	rows := make([]FactorRow, 0, to-from+1)
	for age := from; age <= to; age++ {
		rows = append(rows, FactorRow{
			Age:       age,
			Guideline: GuidelineFactor(age),
			Corridor:  CorridorFactor(age),
		})
	}
	return rows
}
