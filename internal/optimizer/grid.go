package optimizer

import (
	"github.com/rpgo/iul-planner/internal/calculation"
	"github.com/rpgo/iul-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Death benefit sweep bounds. The upper bound is exclusive.
var (
	SweepDeathBenefitFrom = decimal.NewFromInt(250000)
	SweepDeathBenefitTo   = decimal.NewFromInt(5000000)
	SweepDeathBenefitStep = decimal.NewFromInt(25000)
)

// Three-axis grid bounds. All bounds are inclusive.
var (
	ThreeAxisPremiumFrom = decimal.NewFromInt(50000)
	ThreeAxisPremiumTo   = decimal.NewFromInt(150000)
	ThreeAxisPremiumStep = decimal.NewFromInt(25000)

	ThreeAxisDeathBenefitSpan = decimal.NewFromInt(2000000)
	ThreeAxisDeathBenefitStep = decimal.NewFromInt(250000)

	gridGuidelineBase  = decimal.RequireFromString("0.025")
	gridGuidelineSlope = decimal.RequireFromString("0.0003")
)

const (
	ThreeAxisYearsFrom = 4
	ThreeAxisYearsTo   = 10
)

// Grid is a finite candidate sequence. Points are computed on demand from their
// index, so a grid can be iterated any number of times.
type Grid struct {
	strategy domain.GridStrategy
	size     int
	at       func(i int) domain.CandidateParams
}

// Iterator walks a Grid in generation order
type Iterator struct {
	grid *Grid
	next int
}

// Next returns the next point, or false once the grid is exhausted.
func (it *Iterator) Next() (domain.CandidateParams, bool) {
	if it.next >= it.grid.size {
		return domain.CandidateParams{}, false
	}
	p := it.grid.at(it.next)
	it.next++
	return p, true
}

// Iterator starts a fresh pass over the grid.
func (g *Grid) Iterator() *Iterator { return &Iterator{grid: g} }

// Size is the number of points in the grid.
func (g *Grid) Size() int { return g.size }

// Strategy identifies how the grid was built.
func (g *Grid) Strategy() domain.GridStrategy { return g.strategy }

// Points materializes the grid in generation order.
func (g *Grid) Points() []domain.CandidateParams {
	points := make([]domain.CandidateParams, 0, g.size)
	it := g.Iterator()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		points = append(points, p)
	}
	return points
}

// NewGrid builds the grid a request asks for.
func NewGrid(req Request) (*Grid, error) {
	switch req.Strategy {
	case domain.DeathBenefitSweep:
		return NewSweepGrid(req.TotalInvestment, req.PayYears)
	case domain.ThreeAxisGrid:
		return NewThreeAxisGrid(req.Base.StartAge), nil
	default:
		return nil, &OptimizerError{
			Operation: "build_grid",
			Message:   "unsupported grid strategy: " + string(req.Strategy),
		}
	}
}

// NewSweepGrid spreads totalInvestment evenly over payYears and sweeps the
// death benefit over [250,000, 5,000,000) in 25,000 steps.
func NewSweepGrid(totalInvestment decimal.Decimal, payYears int) (*Grid, error) {
	if payYears <= 0 {
		return nil, &OptimizerError{Operation: "build_grid", Message: "pay years must be positive"}
	}
	premium := totalInvestment.Div(decimal.NewFromInt(int64(payYears)))
	size := stepCount(SweepDeathBenefitFrom, SweepDeathBenefitTo, SweepDeathBenefitStep)

	return &Grid{
		strategy: domain.DeathBenefitSweep,
		size:     size,
		at: func(i int) domain.CandidateParams {
			return domain.CandidateParams{
				Index:        i,
				Premium:      premium,
				Years:        payYears,
				DeathBenefit: SweepDeathBenefitFrom.Add(SweepDeathBenefitStep.Mul(decimal.NewFromInt(int64(i)))),
			}
		},
	}, nil
}

// NewThreeAxisGrid enumerates premium, then funding years, then death benefit.
// For each premium the death benefit starts at the smallest whole-dollar face
// amount whose guideline estimate at startAge covers the premium.
func NewThreeAxisGrid(startAge int) *Grid {
	premiums := stepCount(ThreeAxisPremiumFrom, ThreeAxisPremiumTo.Add(ThreeAxisPremiumStep), ThreeAxisPremiumStep)
	years := ThreeAxisYearsTo - ThreeAxisYearsFrom + 1
	dbs := stepCount(decimal.Zero, ThreeAxisDeathBenefitSpan.Add(ThreeAxisDeathBenefitStep), ThreeAxisDeathBenefitStep)
	factor := gridGuidelineEstimate(startAge)

	return &Grid{
		strategy: domain.ThreeAxisGrid,
		size:     premiums * years * dbs,
		at: func(i int) domain.CandidateParams {
			pi := i / (years * dbs)
			yi := (i / dbs) % years
			di := i % dbs

			premium := ThreeAxisPremiumFrom.Add(ThreeAxisPremiumStep.Mul(decimal.NewFromInt(int64(pi))))
			minDB := MinGuidelineDeathBenefit(premium, factor)
			return domain.CandidateParams{
				Index:        i,
				Premium:      premium,
				Years:        ThreeAxisYearsFrom + yi,
				DeathBenefit: minDB.Add(ThreeAxisDeathBenefitStep.Mul(decimal.NewFromInt(int64(di)))),
			}
		},
	}
}

// gridGuidelineEstimate is the linear guideline factor extended to every age,
// without the out-of-table fallback of calculation.GuidelineFactor.
func gridGuidelineEstimate(startAge int) decimal.Decimal {
	return gridGuidelineBase.Add(gridGuidelineSlope.Mul(decimal.NewFromInt(int64(startAge - calculation.FactorMinAge))))
}

// MinGuidelineDeathBenefit truncates premium / factor to whole dollars.
func MinGuidelineDeathBenefit(premium, factor decimal.Decimal) decimal.Decimal {
	return premium.Div(factor).Floor()
}

// stepCount is the number of values from, from+step, ... strictly below to.
func stepCount(from, to, step decimal.Decimal) int {
	if !step.IsPositive() || !to.GreaterThan(from) {
		return 0
	}
	return int(to.Sub(from).Div(step).Ceil().IntPart())
}
