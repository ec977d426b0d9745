package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/game"
	"github.com/beka-birhanu/geoduel-api/infrastruture/catalogue"
	logger "github.com/beka-birhanu/geoduel-api/infrastruture/log"
	"github.com/beka-birhanu/geoduel-api/infrastruture/sortedstorage"
	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/stretchr/testify/require"
)

var center = dmn.Coord{Lat: 0.5, Lon: 0.5}

type fakeClock struct {
	now time.Time
	sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.Lock()
	defer f.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.Lock()
	defer f.Unlock()
	f.now = f.now.Add(d)
}

// newTestRegistry returns a registry whose rooms play maxRounds rounds over
// a catalogue where every answer sits at center.
func newTestRegistry(t *testing.T, clock *fakeClock, maxRounds int) *RoomRegistry {
	t.Helper()
	questions := make([]dmn.Question, 0, 8)
	for id := 0; id < 8; id++ {
		questions = append(questions, dmn.Question{
			ID:       id,
			ImageRef: fmt.Sprintf("images/%d.jpg", id),
			Location: "center",
			Category: "E",
		})
	}
	cat, err := catalogue.New(map[string]dmn.Coord{"center": center}, questions)
	require.NoError(t, err)

	rules := game.DefaultRules()
	rules.MaxRounds = maxRounds
	rules.Multipliers = game.DefaultMultiplierSchedule(maxRounds)
	strategies := game.DefaultStrategies(rules, cat)

	return NewRoomRegistry(&RegistryConfig{
		Factory: func(id string) (*game.Room, error) {
			return game.NewRoom(id, game.RoomConfig{
				Rules:      rules,
				Catalogue:  cat,
				Strategies: strategies,
				Clock:      clock.Now,
			})
		},
		Clock:  clock.Now,
		Logger: logger.Nop(),
	})
}

type matchFixture struct {
	clock      *fakeClock
	queue      i.SortedQueue
	registry   *RoomRegistry
	notifier   *Notifier
	matchmaker *Matchmaker
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	return newMatchFixtureWithQueue(t, sortedstorage.NewMemorySortedQueue())
}

func newMatchFixtureWithQueue(t *testing.T, queue i.SortedQueue) *matchFixture {
	t.Helper()
	clock := newFakeClock()
	registry := newTestRegistry(t, clock, 4)
	notifier := NewNotifier(logger.Nop(), 4)
	mm, err := NewMatchmaker(queue, registry, notifier, logger.Nop(), &Options{
		WaiterTimeout: 2 * time.Second,
		ResultTTL:     30 * time.Second,
		EndedRoomTTL:  10 * time.Second,
		Clock:         clock.Now,
	})
	require.NoError(t, err)
	return &matchFixture{clock: clock, queue: queue, registry: registry, notifier: notifier, matchmaker: mm}
}
