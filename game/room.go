package game

import (
	"fmt"
	"math"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// Phase is the sub-state of the current round.
type Phase string

// Room phases. ENDED is terminal.
const (
	PhaseGuessing     Phase = "GUESSING"
	PhaseAwaitingNext Phase = "AWAITING_NEXT"
	PhaseEnded        Phase = "ENDED"
)

// Draw is reported as the winner when neither team wins.
const Draw = "draw"

// Outcome is the damage dealt by one reveal. Teams without a guess are absent.
type Outcome struct {
	Round      int
	Multiplier float64
	Damage     map[dmn.Team]float64
	Distance   map[dmn.Team]float64
}

// RoomConfig holds the collaborators of a room.
type RoomConfig struct {
	Rules      Rules
	Catalogue  Catalogue
	Strategies StrategyFactory  // defaults to DefaultStrategies
	Clock      func() time.Time // defaults to time.Now
}

// Room is the authoritative state of one match. Every exported method
// holds the room lock for its whole critical section.
type Room struct {
	id         string
	rules      Rules
	catalogue  Catalogue
	sequencer  *Sequencer
	multiplier MultiplierSchedule
	now        func() time.Time

	roundIndex      int
	question        dmn.Question
	answer          dmn.Coord
	health          map[dmn.Team]float64
	guesses         map[dmn.Team]*dmn.Coord
	submitted       map[dmn.Team]bool
	ready           map[dmn.Team]bool
	lastDamageRound int
	outcome         *Outcome
	phaseStartedAt  time.Time
	winner          string
	ended           bool

	mu sync.Mutex
}

// NewRoom creates a room that has not started its first round yet.
func NewRoom(id string, cfg RoomConfig) (*Room, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Catalogue == nil {
		return nil, fmt.Errorf("room %s: nil catalogue", id)
	}

	factory := cfg.Strategies
	if factory == nil {
		factory = DefaultStrategies(cfg.Rules, cfg.Catalogue)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	st := factory(Seed(id))
	r := &Room{
		id:         id,
		rules:      cfg.Rules,
		catalogue:  cfg.Catalogue,
		sequencer:  NewSequencer(cfg.Catalogue, st, cfg.Rules.MaxRounds),
		multiplier: st.Multiplier,
		now:        clock,
		roundIndex: -1,
		health: map[dmn.Team]float64{
			dmn.Blue: cfg.Rules.MaxHealth,
			dmn.Red:  cfg.Rules.MaxHealth,
		},
	}
	r.resetRoundLocked()
	return r, nil
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// Init starts the first round if it has not started yet.
func (r *Room) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureStartedLocked()
}

// PlaceGuess records team's guess for the current round. Submitted guesses
// are immutable, so placing after submit is a no-op.
func (r *Room) PlaceGuess(team dmn.Team, c dmn.Coord) error {
	if !team.Valid() {
		return dmn.ErrInvalidTeam
	}
	if !c.Valid() {
		return dmn.ErrInvalidCoord
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.activeLocked(); err != nil {
		return err
	}
	if r.submitted[team] {
		return nil
	}
	r.guesses[team] = &c
	return nil
}

// Submit locks in team's guess. It reports whether this call revealed the
// answer, which happens exactly once per round: when the second team submits.
func (r *Room) Submit(team dmn.Team) (bool, error) {
	if !team.Valid() {
		return false, dmn.ErrInvalidTeam
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.activeLocked(); err != nil {
		return false, err
	}
	if r.submitted[team] {
		return false, nil
	}
	if r.guesses[team] == nil {
		return false, dmn.ErrNoGuess
	}

	r.submitted[team] = true
	if !r.revealedLocked() {
		return false, nil
	}
	r.revealLocked()
	return true, nil
}

// ForceReveal marks both teams as submitted regardless of their guesses.
func (r *Room) ForceReveal() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.activeLocked(); err != nil {
		return false, err
	}
	if r.revealedLocked() {
		return false, nil
	}

	for _, team := range dmn.Teams {
		r.submitted[team] = true
	}
	r.revealLocked()
	return true, nil
}

// AgreeNext marks team as ready for the next round. The round advances once
// the answer is revealed and both teams agree.
func (r *Room) AgreeNext(team dmn.Team) (bool, error) {
	if !team.Valid() {
		return false, dmn.ErrInvalidTeam
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.activeLocked(); err != nil {
		return false, err
	}
	if !r.revealedLocked() {
		return false, dmn.ErrAnswerNotRevealed
	}

	wasReady := r.ready[team]
	r.ready[team] = true
	if !r.ready[dmn.Blue] || !r.ready[dmn.Red] || !r.hasNextLocked() {
		return false, nil
	}
	if err := r.setRoundLocked(r.roundIndex + 1); err != nil {
		r.ready[team] = wasReady
		return false, err
	}
	return true, nil
}

// NextRound moves to the following round without waiting for the teams.
func (r *Room) NextRound() (bool, error) {
	return r.step(1)
}

// PrevRound moves back one round. The earlier question is never resampled.
// The round restarts fresh, so revealing it again applies its damage again.
func (r *Room) PrevRound() (bool, error) {
	return r.step(-1)
}

func (r *Room) step(delta int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.activeLocked(); err != nil {
		return false, err
	}

	target := r.roundIndex + delta
	if target < 0 || target >= r.rules.MaxRounds {
		return false, nil
	}
	if err := r.setRoundLocked(target); err != nil {
		return false, err
	}
	return true, nil
}

// Ended reports whether the match is over.
func (r *Room) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

// Winner returns "blue", "red" or Draw once the match has ended.
func (r *Room) Winner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winner
}

// activeLocked rejects actions on ended rooms and lazily starts round 0.
func (r *Room) activeLocked() error {
	if r.ended {
		return dmn.ErrMatchEnded
	}
	return r.ensureStartedLocked()
}

func (r *Room) ensureStartedLocked() error {
	if r.roundIndex >= 0 {
		return nil
	}
	return r.setRoundLocked(0)
}

// setRoundLocked resolves target and starts it. On error nothing changes.
func (r *Room) setRoundLocked(target int) error {
	q, err := r.sequencer.Resolve(target)
	if err != nil {
		return err
	}
	answer, ok := r.catalogue.Location(q.Location)
	if !ok {
		return fmt.Errorf("%w: %q", dmn.ErrLocationNotFound, q.Location)
	}

	r.roundIndex = target
	r.question = q
	r.answer = answer
	r.resetRoundLocked()
	return nil
}

// resetRoundLocked clears every per-round field.
func (r *Room) resetRoundLocked() {
	r.guesses = make(map[dmn.Team]*dmn.Coord, 2)
	r.submitted = make(map[dmn.Team]bool, 2)
	r.ready = make(map[dmn.Team]bool, 2)
	r.lastDamageRound = -1
	r.outcome = nil
	r.phaseStartedAt = r.now()
}

func (r *Room) revealedLocked() bool {
	return r.submitted[dmn.Blue] && r.submitted[dmn.Red]
}

func (r *Room) hasNextLocked() bool {
	return r.roundIndex+1 < r.rules.MaxRounds
}

func (r *Room) hasPrevLocked() bool {
	return r.roundIndex-1 >= 0
}

func (r *Room) revealLocked() {
	r.phaseStartedAt = r.now()
	r.computeRoundOutcomeLocked()
	r.endGameCheckLocked()
}

// computeRoundOutcomeLocked applies the damage of the current round at most
// once. Later calls return the stored outcome.
func (r *Room) computeRoundOutcomeLocked() *Outcome {
	if r.lastDamageRound == r.roundIndex && r.outcome != nil {
		return r.outcome
	}

	mult := r.multiplier.At(r.roundIndex)
	o := &Outcome{
		Round:      r.roundIndex,
		Multiplier: mult,
		Damage:     make(map[dmn.Team]float64, 2),
		Distance:   make(map[dmn.Team]float64, 2),
	}
	for _, team := range dmn.Teams {
		g := r.guesses[team]
		if g == nil {
			continue
		}
		damage := Damage(*g, r.answer, r.rules.DistanceScale, mult)
		o.Distance[team] = Distance(*g, r.answer, r.rules.DistanceScale)
		o.Damage[team] = damage
		r.health[team] -= damage
	}

	r.lastDamageRound = r.roundIndex
	r.outcome = o
	return o
}

func (r *Room) endGameCheckLocked() {
	blue, red := r.health[dmn.Blue], r.health[dmn.Red]
	exhausted := !r.hasNextLocked()
	if blue > 0 && red > 0 && !exhausted {
		return
	}
	r.ended = true
	r.winner = decideWinner(blue, red, exhausted, r.rules.DrawEpsilon)
}

func decideWinner(blue, red float64, exhausted bool, eps float64) string {
	if math.Abs(blue-red) < eps {
		bothDown := blue <= 0 && red <= 0
		bothUp := blue > 0 && red > 0
		if bothDown || (exhausted && bothUp) {
			return Draw
		}
	}
	switch {
	case blue > red:
		return dmn.Blue.String()
	case red > blue:
		return dmn.Red.String()
	}
	return Draw
}
