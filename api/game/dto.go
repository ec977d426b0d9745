// Package gameapi exposes rooms and matchmaking over HTTP.
package gameapi

// TeamRequest names the acting team.
type TeamRequest struct {
	Team string `json:"team" binding:"required"`
}

// GuessRequest places a team's pin on the unit square.
type GuessRequest struct {
	Team string   `json:"team" binding:"required"`
	Lat  *float64 `json:"lat" binding:"required"`
	Lon  *float64 `json:"lon" binding:"required"`
}

// JoinRequest asks for a match, in a named room when Room is set.
type JoinRequest struct {
	Room string `json:"room"`
}

// EventFrame is pushed to websocket subscribers.
type EventFrame struct {
	Room  string `json:"room"`
	Event string `json:"event"`
}
