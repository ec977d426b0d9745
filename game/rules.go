package game

import (
	"errors"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// Default rule values.
const (
	DefaultMaxRounds     = 16
	DefaultMaxHealth     = 100.0
	DefaultDistanceScale = 100.0
	DefaultGuessTimeout  = 30 * time.Second
	DefaultReadyTimeout  = 10 * time.Second
	DefaultDrawEpsilon   = 1e-6
)

var (
	ErrInvalidMaxRounds = errors.New("max rounds must be positive")
	ErrInvalidMaxHealth = errors.New("max health must be positive")
	ErrInvalidScale     = errors.New("distance scale must be positive")
)

// Catalogue is the read-only question and location store shared by rooms.
type Catalogue interface {
	// Question returns the record with the given id.
	Question(id int) (dmn.Question, bool)
	// QuestionIDs returns every id in ascending order. The caller owns the slice.
	QuestionIDs() []int
	// Location returns the coordinate of a named location.
	Location(name string) (dmn.Coord, bool)
}

// Rules are the match constants shared by every room.
type Rules struct {
	MaxRounds     int
	MaxHealth     float64
	DistanceScale float64
	GuessTimeout  time.Duration
	ReadyTimeout  time.Duration
	DrawEpsilon   float64
	Categories    []string // per-round category schedule, empty for direct-index mode
	Multipliers   MultiplierSchedule
	Debug         bool // exposes the answer before reveal
}

// DefaultRules returns the rules of the original game.
func DefaultRules() Rules {
	return Rules{
		MaxRounds:     DefaultMaxRounds,
		MaxHealth:     DefaultMaxHealth,
		DistanceScale: DefaultDistanceScale,
		GuessTimeout:  DefaultGuessTimeout,
		ReadyTimeout:  DefaultReadyTimeout,
		DrawEpsilon:   DefaultDrawEpsilon,
		Multipliers:   DefaultMultiplierSchedule(DefaultMaxRounds),
	}
}

// Validate checks the invariants the state machine depends on.
func (r Rules) Validate() error {
	if r.MaxRounds <= 0 {
		return ErrInvalidMaxRounds
	}
	if r.MaxHealth <= 0 {
		return ErrInvalidMaxHealth
	}
	if r.DistanceScale <= 0 {
		return ErrInvalidScale
	}
	return nil
}
