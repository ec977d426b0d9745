package i

import (
	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/game"
)

// GameSessionManager exposes the room operations called by the transport
// layer. Every method returns the state seen by the acting team afterwards.
type GameSessionManager interface {
	// State returns the view of room for viewer; an empty viewer is a spectator.
	State(room string, viewer dmn.Team) (game.State, error)

	// InitRoom creates room if needed and starts its first round. Idempotent.
	InitRoom(room string) (game.State, error)

	PlaceGuess(room string, team dmn.Team, c dmn.Coord) (game.State, error)
	SubmitGuess(room string, team dmn.Team) (game.State, error)

	// AdvanceRound records that team agrees to move on.
	AdvanceRound(room string, team dmn.Team) (game.State, error)

	// RevealNow forces the reveal of the current round.
	RevealNow(room string) (game.State, error)

	NextRound(room string) (game.State, error)
	PrevRound(room string) (game.State, error)
}
