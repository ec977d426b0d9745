package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{name: "validation", err: ErrNoGuess, kind: ValidationError},
		{name: "state", err: ErrRoomBusy, kind: StateError},
		{name: "wrapped configuration", err: fmt.Errorf("%w: E", ErrExhaustedCategory), kind: ConfigurationError},
		{name: "integrity", err: ErrLocationNotFound, kind: IntegrityError},
		{name: "foreign", err: errors.New("boom"), kind: UnknownError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, KindOf(tc.err))
		})
	}
}

func TestParseTeam(t *testing.T) {
	team, err := ParseTeam(" Blue ")
	assert.NoError(t, err)
	assert.Equal(t, Blue, team)
	assert.Equal(t, Red, team.Opponent())

	team, err = ParseTeam("RED")
	assert.NoError(t, err)
	assert.Equal(t, Red, team)

	_, err = ParseTeam("green")
	assert.ErrorIs(t, err, ErrInvalidTeam)
}

func TestCoordValid(t *testing.T) {
	assert.True(t, Coord{Lat: 0, Lon: 1}.Valid())
	assert.False(t, Coord{Lat: -0.1, Lon: 0.5}.Valid())
	assert.False(t, Coord{Lat: 0.5, Lon: 1.01}.Valid())
}
