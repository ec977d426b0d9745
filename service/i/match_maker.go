package i

import (
	"context"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// Matchmaker pairs waiting players into rooms.
type Matchmaker interface {
	// Join enqueues the caller for room, or for any room when room is empty.
	Join(ctx context.Context, room string) (dmn.MatchResult, error)

	// Ping keeps a waiting channel alive.
	Ping(channel string) error

	// Poll returns the match recorded for a waiting channel, consuming it.
	Poll(channel string) (dmn.MatchResult, error)
}
