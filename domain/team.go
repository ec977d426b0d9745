package domain

import (
	"strings"
)

// Team identifies one side of a match.
type Team string

// The two teams of a match.
const (
	Blue Team = "blue"
	Red  Team = "red"
)

// Teams lists both teams in a fixed order.
var Teams = [2]Team{Blue, Red}

// ParseTeam accepts "blue" or "red" in any letter case.
func ParseTeam(s string) (Team, error) {
	switch Team(strings.ToLower(strings.TrimSpace(s))) {
	case Blue:
		return Blue, nil
	case Red:
		return Red, nil
	}
	return "", ErrInvalidTeam
}

// Valid reports whether t is one of the two teams.
func (t Team) Valid() bool {
	return t == Blue || t == Red
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Blue {
		return Red
	}
	return Blue
}

func (t Team) String() string {
	return string(t)
}
