package domain

// RoomStatus is the lifecycle stage of a room id.
type RoomStatus string

// Room statuses. An id without an entry is EMPTY.
const (
	RoomEmpty    RoomStatus = "empty"
	RoomMatching RoomStatus = "matching"
	RoomInGame   RoomStatus = "in_game"
	RoomEnded    RoomStatus = "ended"
)

// MatchResult answers a join request. Unmatched callers wait on Channel
// with the provisional team Blue.
type MatchResult struct {
	Matched bool   `json:"matched"`
	Room    string `json:"room,omitempty"`
	Team    Team   `json:"team"`
	Channel string `json:"channel"`
}
