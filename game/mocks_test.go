package game

import (
	"fmt"
	"sort"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

type stubCatalogue struct {
	questions map[int]dmn.Question
	locations map[string]dmn.Coord
}

func (c *stubCatalogue) Question(id int) (dmn.Question, bool) {
	q, ok := c.questions[id]
	return q, ok
}

func (c *stubCatalogue) QuestionIDs() []int {
	ids := make([]int, 0, len(c.questions))
	for id := range c.questions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (c *stubCatalogue) Location(name string) (dmn.Coord, bool) {
	loc, ok := c.locations[name]
	return loc, ok
}

// newStubCatalogue returns n questions, all answered at (0.5, 0.5) and
// split evenly between categories "E" and "W".
func newStubCatalogue(n int) *stubCatalogue {
	c := &stubCatalogue{
		questions: make(map[int]dmn.Question, n),
		locations: map[string]dmn.Coord{"center": {Lat: 0.5, Lon: 0.5}},
	}
	for i := 0; i < n; i++ {
		category := "E"
		if i%2 == 1 {
			category = "W"
		}
		c.questions[i] = dmn.Question{
			ID:       i,
			ImageRef: fmt.Sprintf("images/%d.jpg", i),
			Location: "center",
			Category: category,
		}
	}
	return c
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// orderedStrategies walks the catalogue ids in ascending order with a
// constant multiplier.
func orderedStrategies(c Catalogue, mult float64) StrategyFactory {
	return func(uint64) Strategies {
		return Strategies{
			Indices:    NewSliceSampler(c.QuestionIDs()),
			Multiplier: MultiplierSchedule{Tail: mult},
		}
	}
}
