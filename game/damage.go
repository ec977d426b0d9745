package game

import (
	"math"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// Distance is the euclidean distance between a and b in normalized space,
// multiplied by scale.
func Distance(a, b dmn.Coord, scale float64) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon) * scale
}

// Damage is the scaled distance between a and b times mult.
func Damage(a, b dmn.Coord, scale, mult float64) float64 {
	return Distance(a, b, scale) * mult
}

// MultiplierSchedule maps a round index to a damage multiplier. Rounds past
// the explicit steps use Tail.
type MultiplierSchedule struct {
	Steps []float64
	Tail  float64
}

// At returns the multiplier of round.
func (m MultiplierSchedule) At(round int) float64 {
	if round >= 0 && round < len(m.Steps) {
		return m.Steps[round]
	}
	return m.Tail
}

// DefaultMultiplierSchedule charges 1x for the first half of the rounds,
// 2x for the next quarter and 4x afterwards.
func DefaultMultiplierSchedule(maxRounds int) MultiplierSchedule {
	half, quarter := maxRounds/2, maxRounds/4
	steps := make([]float64, 0, half+quarter)
	for i := 0; i < half; i++ {
		steps = append(steps, 1.0)
	}
	for i := 0; i < quarter; i++ {
		steps = append(steps, 2.0)
	}
	return MultiplierSchedule{Steps: steps, Tail: 4.0}
}
