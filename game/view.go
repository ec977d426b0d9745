package game

import (
	"maps"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// State is the client view of a room.
type State struct {
	Room                  string                  `json:"room"`
	Round                 int                     `json:"round"` // 1-indexed
	TotalRounds           int                     `json:"total_rounds"`
	Phase                 Phase                   `json:"phase"`
	PhaseRemainingSeconds float64                 `json:"phase_remaining_seconds"`
	DamageMultiplier      float64                 `json:"dmg_mult"`
	Health                map[dmn.Team]float64    `json:"hp"`
	QuestionImage         string                  `json:"question_img"`
	QuestionComment       string                  `json:"question_comment,omitempty"`
	AnswerCoord           *dmn.Coord              `json:"answer_coord,omitempty"`
	AnswerLocation        string                  `json:"answer_loc,omitempty"`
	AnswerRevealed        bool                    `json:"answer_revealed"`
	Coords                map[dmn.Team]*dmn.Coord `json:"coords"`
	HasNext               bool                    `json:"has_next"`
	HasPrev               bool                    `json:"has_prev"`
	TeamSubmitted         map[dmn.Team]bool       `json:"team_submitted"`
	TeamReadyNext         map[dmn.Team]bool       `json:"team_ready_next"`
	Damage                map[dmn.Team]float64    `json:"damage,omitempty"`
	Distance              map[dmn.Team]float64    `json:"distance,omitempty"`
	Winner                string                  `json:"winner,omitempty"`
	Debug                 bool                    `json:"debug"`
}

// roomSnapshot is a consistent copy of the room fields a view needs.
type roomSnapshot struct {
	id             string
	round          int
	question       dmn.Question
	answer         dmn.Coord
	multiplier     float64
	health         map[dmn.Team]float64
	guesses        map[dmn.Team]dmn.Coord
	submitted      map[dmn.Team]bool
	ready          map[dmn.Team]bool
	outcome        *Outcome
	phaseStartedAt time.Time
	hasNext        bool
	hasPrev        bool
	winner         string
	ended          bool
}

// State returns the view of the room for viewer. An empty viewer is a
// spectator and sees neither guess before the reveal.
func (r *Room) State(viewer dmn.Team) (State, error) {
	snap, err := r.snapshot()
	if err != nil {
		return State{}, err
	}
	return r.compose(snap, viewer, r.now()), nil
}

func (r *Room) snapshot() (roomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureStartedLocked(); err != nil {
		return roomSnapshot{}, err
	}

	guesses := make(map[dmn.Team]dmn.Coord, 2)
	for team, g := range r.guesses {
		if g != nil {
			guesses[team] = *g
		}
	}
	return roomSnapshot{
		id:             r.id,
		round:          r.roundIndex,
		question:       r.question,
		answer:         r.answer,
		multiplier:     r.multiplier.At(r.roundIndex),
		health:         maps.Clone(r.health),
		guesses:        guesses,
		submitted:      maps.Clone(r.submitted),
		ready:          maps.Clone(r.ready),
		outcome:        r.outcome,
		phaseStartedAt: r.phaseStartedAt,
		hasNext:        r.hasNextLocked(),
		hasPrev:        r.hasPrevLocked(),
		winner:         r.winner,
		ended:          r.ended,
	}, nil
}

// compose builds the view without holding the room lock. The outcome is
// never mutated after it is stored, so sharing the pointer is safe.
func (r *Room) compose(s roomSnapshot, viewer dmn.Team, now time.Time) State {
	revealed := s.submitted[dmn.Blue] && s.submitted[dmn.Red]
	st := State{
		Room:             s.id,
		Round:            s.round + 1,
		TotalRounds:      r.rules.MaxRounds,
		DamageMultiplier: s.multiplier,
		Health:           s.health,
		QuestionImage:    s.question.ImageRef,
		QuestionComment:  s.question.Comment,
		AnswerRevealed:   revealed,
		Coords:           map[dmn.Team]*dmn.Coord{dmn.Blue: nil, dmn.Red: nil},
		HasNext:          s.hasNext,
		HasPrev:          s.hasPrev,
		TeamSubmitted:    map[dmn.Team]bool{dmn.Blue: s.submitted[dmn.Blue], dmn.Red: s.submitted[dmn.Red]},
		TeamReadyNext:    map[dmn.Team]bool{dmn.Blue: s.ready[dmn.Blue], dmn.Red: s.ready[dmn.Red]},
		Winner:           s.winner,
		Debug:            r.rules.Debug,
	}

	for team, g := range s.guesses {
		if revealed || team == viewer {
			st.Coords[team] = &g
		}
	}

	if revealed || r.rules.Debug {
		answer := s.answer
		st.AnswerCoord = &answer
		st.AnswerLocation = s.question.Location
	}
	if revealed && s.outcome != nil {
		st.Damage = s.outcome.Damage
		st.Distance = s.outcome.Distance
	}

	switch {
	case s.ended:
		st.Phase = PhaseEnded
	case revealed:
		st.Phase = PhaseAwaitingNext
		st.PhaseRemainingSeconds = remaining(r.rules.ReadyTimeout, s.phaseStartedAt, now)
	default:
		st.Phase = PhaseGuessing
		st.PhaseRemainingSeconds = remaining(r.rules.GuessTimeout, s.phaseStartedAt, now)
	}
	return st
}

// remaining is advisory: nothing is enforced when it reaches zero.
func remaining(timeout time.Duration, startedAt, now time.Time) float64 {
	left := timeout - now.Sub(startedAt)
	if left < 0 {
		return 0
	}
	return left.Seconds()
}
