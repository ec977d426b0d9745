package domain

import "math"

// Coord is a point in the normalized [0,1] map space.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite and inside [0,1].
func (c Coord) Valid() bool {
	return inUnit(c.Lat) && inUnit(c.Lon)
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Question is one immutable catalogue record.
type Question struct {
	ID       int
	ImageRef string
	Location string
	Category string
	Comment  string // empty when the record carries none
}
