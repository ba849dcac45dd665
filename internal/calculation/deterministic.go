package calculation

import (
	"time"

	"github.com/rpgo/iul-planner/internal/domain"
)

// seedFunc returns a pseudo-random seed (override for deterministic tests).
var seedFunc = func() int64 { return time.Now().UnixNano() }

// SetSeedFunc overrides the seed provider (use only in tests).
func SetSeedFunc(f func() int64) { seedFunc = f }

// ResolveSeed returns seed unchanged when set, otherwise a fresh one from the seed provider.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return seedFunc()
}

// SourceFor builds the crediting source described by the settings. Deterministic
// runs use the zero-variance source and report seed 0.
func SourceFor(settings domain.SimulationSettings) (RandomSource, int64) {
	if settings.Deterministic {
		return ZeroVarianceSource{}, 0
	}
	seed := ResolveSeed(settings.Seed)
	return NewSeededSource(seed), seed
}
