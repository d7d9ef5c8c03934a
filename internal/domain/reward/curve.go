package reward

import (
	"github.com/habitquest/backend/config"
	"github.com/habitquest/backend/internal/entity"

	mathUtil "github.com/pkg/math"
)

// oneMultiplier is a multiplier of 1.0 expressed in basis points.
const oneMultiplier = 10000

var baseByDifficulty = map[entity.Difficulty]int64{
	entity.DifficultyTrivial: 1,
	entity.DifficultyEasy:    2,
	entity.DifficultyMedium:  3,
	entity.DifficultyHard:    4,
}

// Base returns the number of base units a task of the given difficulty is
// worth. Unknown difficulties are worth nothing.
func Base(difficulty entity.Difficulty) int64 {
	return baseByDifficulty[difficulty]
}

// Curve scales the base of a difficulty by a streak multiplier. All arithmetic
// is done in integer basis points and the result is rounded down.
type Curve struct {
	StreakCap             int
	StreakStepBasisPoints int
}

func NewCurve(cfg config.RewardConfigs) Curve {
	return Curve{
		StreakCap:             cfg.StreakCap,
		StreakStepBasisPoints: cfg.StreakStepBasisPoints,
	}
}

// MultiplierBasisPoints returns 10000 * (1 + min(streak, cap) * step).
func (c Curve) MultiplierBasisPoints(streak int) int {
	effective := mathUtil.MinInt(mathUtil.MaxInt(streak, 0), mathUtil.MaxInt(c.StreakCap, 0))
	return oneMultiplier + effective*mathUtil.MaxInt(c.StreakStepBasisPoints, 0)
}

// Amount returns floor(base * multiplier(streak)).
func (c Curve) Amount(base int64, streak int) int64 {
	return base * int64(c.MultiplierBasisPoints(streak)) / oneMultiplier
}
