package service

import (
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/game"
	"github.com/beka-birhanu/geoduel-api/service/i"
)

// GameSessionManager routes transport calls to the room they target and
// broadcasts the transitions other participants must react to.
type GameSessionManager struct {
	registry *RoomRegistry
	notifier i.Notifier
	logger   i.Logger
}

// Config holds the collaborators of a GameSessionManager.
type Config struct {
	Registry *RoomRegistry
	Notifier i.Notifier
	Logger   i.Logger
}

// NewGameSessionManager returns a manager over c.Registry.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c == nil || c.Registry == nil || c.Notifier == nil || c.Logger == nil {
		return nil, errors.New("game session manager: missing dependency")
	}
	return &GameSessionManager{
		registry: c.Registry,
		notifier: c.Notifier,
		logger:   c.Logger,
	}, nil
}

// State implements i.GameSessionManager.
func (g *GameSessionManager) State(room string, viewer dmn.Team) (game.State, error) {
	r, err := g.registry.Get(room)
	if err != nil {
		return game.State{}, err
	}
	st, err := r.State(viewer)
	return st, g.check(room, "state", err)
}

// InitRoom implements i.GameSessionManager.
func (g *GameSessionManager) InitRoom(room string) (game.State, error) {
	if !ValidRoomID(room) {
		return game.State{}, dmn.ErrInvalidRoom
	}
	r, err := g.registry.Open(room)
	if err != nil {
		return game.State{}, g.check(room, "init", err)
	}
	if err := r.Init(); err != nil {
		return game.State{}, g.check(room, "init", err)
	}
	return g.view(room, r, "")
}

// PlaceGuess implements i.GameSessionManager.
func (g *GameSessionManager) PlaceGuess(room string, team dmn.Team, c dmn.Coord) (game.State, error) {
	r, err := g.registry.Get(room)
	if err != nil {
		return game.State{}, err
	}
	if err := r.PlaceGuess(team, c); err != nil {
		return game.State{}, g.check(room, "guess", err)
	}
	return g.view(room, r, team)
}

// SubmitGuess implements i.GameSessionManager.
func (g *GameSessionManager) SubmitGuess(room string, team dmn.Team) (game.State, error) {
	r, err := g.registry.Get(room)
	if err != nil {
		return game.State{}, err
	}
	revealed, err := r.Submit(team)
	if err != nil {
		return game.State{}, g.check(room, "submit", err)
	}
	if revealed {
		g.revealed(room, r)
	}
	return g.view(room, r, team)
}

// AdvanceRound implements i.GameSessionManager.
func (g *GameSessionManager) AdvanceRound(room string, team dmn.Team) (game.State, error) {
	r, err := g.registry.Get(room)
	if err != nil {
		return game.State{}, err
	}
	advanced, err := r.AgreeNext(team)
	if err != nil {
		return game.State{}, g.check(room, "advance", err)
	}
	if advanced {
		g.notifier.Publish(RoomTopic(room), EventNextRound)
	}
	return g.view(room, r, team)
}

// RevealNow implements i.GameSessionManager.
func (g *GameSessionManager) RevealNow(room string) (game.State, error) {
	r, err := g.registry.Get(room)
	if err != nil {
		return game.State{}, err
	}
	revealed, err := r.ForceReveal()
	if err != nil {
		return game.State{}, g.check(room, "reveal", err)
	}
	if revealed {
		g.revealed(room, r)
	}
	return g.view(room, r, "")
}

// NextRound implements i.GameSessionManager.
func (g *GameSessionManager) NextRound(room string) (game.State, error) {
	return g.step(room, "next", (*game.Room).NextRound)
}

// PrevRound implements i.GameSessionManager.
func (g *GameSessionManager) PrevRound(room string) (game.State, error) {
	return g.step(room, "prev", (*game.Room).PrevRound)
}

func (g *GameSessionManager) step(room, op string, move func(*game.Room) (bool, error)) (game.State, error) {
	r, err := g.registry.Get(room)
	if err != nil {
		return game.State{}, err
	}
	moved, err := move(r)
	if err != nil {
		return game.State{}, g.check(room, op, err)
	}
	if moved {
		g.notifier.Publish(RoomTopic(room), EventNextRound)
	}
	return g.view(room, r, "")
}

// revealed broadcasts a reveal and retires the room once the match is over.
// It runs after the room lock is released.
func (g *GameSessionManager) revealed(room string, r *game.Room) {
	g.notifier.Publish(RoomTopic(room), EventReveal)
	if r.Ended() {
		g.registry.MarkEnded(room)
		g.logger.Info(fmt.Sprintf("room %s finished, winner: %s", room, r.Winner()))
	}
}

func (g *GameSessionManager) view(room string, r *game.Room, viewer dmn.Team) (game.State, error) {
	st, err := r.State(viewer)
	return st, g.check(room, "state", err)
}

// check logs broken catalogue or configuration failures loudly and routine
// rejections quietly, then hands err back.
func (g *GameSessionManager) check(room, op string, err error) error {
	if err == nil {
		return nil
	}
	switch dmn.KindOf(err) {
	case dmn.ConfigurationError, dmn.IntegrityError:
		g.logger.Error(fmt.Sprintf("room %s: %s failed: %s", room, op, err))
	default:
		g.logger.Info(fmt.Sprintf("room %s: %s rejected: %s", room, op, err))
	}
	return err
}
