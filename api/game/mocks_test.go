package gameapi

import (
	"context"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/game"
	"github.com/stretchr/testify/mock"
)

// --- GameSessionManager ---

type MockGameSessionManager struct {
	mock.Mock
}

func (m *MockGameSessionManager) State(room string, viewer dmn.Team) (game.State, error) {
	args := m.Called(room, viewer)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) InitRoom(room string) (game.State, error) {
	args := m.Called(room)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) PlaceGuess(room string, team dmn.Team, c dmn.Coord) (game.State, error) {
	args := m.Called(room, team, c)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) SubmitGuess(room string, team dmn.Team) (game.State, error) {
	args := m.Called(room, team)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) AdvanceRound(room string, team dmn.Team) (game.State, error) {
	args := m.Called(room, team)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) RevealNow(room string) (game.State, error) {
	args := m.Called(room)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) NextRound(room string) (game.State, error) {
	args := m.Called(room)
	return args.Get(0).(game.State), args.Error(1)
}

func (m *MockGameSessionManager) PrevRound(room string) (game.State, error) {
	args := m.Called(room)
	return args.Get(0).(game.State), args.Error(1)
}

// --- Matchmaker ---

type MockMatchmaker struct {
	mock.Mock
}

func (m *MockMatchmaker) Join(ctx context.Context, room string) (dmn.MatchResult, error) {
	args := m.Called(ctx, room)
	return args.Get(0).(dmn.MatchResult), args.Error(1)
}

func (m *MockMatchmaker) Ping(channel string) error {
	args := m.Called(channel)
	return args.Error(0)
}

func (m *MockMatchmaker) Poll(channel string) (dmn.MatchResult, error) {
	args := m.Called(channel)
	return args.Get(0).(dmn.MatchResult), args.Error(1)
}
