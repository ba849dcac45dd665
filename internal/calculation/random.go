package calculation

import (
	"math/rand"

	"github.com/rpgo/iul-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// RandomSource supplies standard normal draws for index crediting.
// *rand.Rand satisfies it.
type RandomSource interface {
	NormFloat64() float64
}

// ZeroVarianceSource always draws zero, so every year credits exactly the average return.
type ZeroVarianceSource struct{}

func (ZeroVarianceSource) NormFloat64() float64 { return 0 }

// NewSeededSource returns an independent generator for the given seed.
// A generator must not be shared between goroutines.
func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// CreditedRate draws the index credit for one year: average + volatility x z,
// bounded below by the floor and above by the cap. All values are percentages.
func CreditedRate(average, floor, capRate decimal.Decimal, rng RandomSource) decimal.Decimal {
	z := decimal.NewFromFloat(rng.NormFloat64())
	raw := average.Add(CreditingVolatility.Mul(z))
	return money.Clamp(raw, floor, capRate)
}
