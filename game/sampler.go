package game

import (
	"fmt"
	"hash/fnv"
	"maps"
	"math/rand/v2"
	"slices"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// Sampler yields values until it is exhausted. Exhaustion is reported by
// ok == false and is terminal.
type Sampler[T any] interface {
	Next() (value T, ok bool)
}

// SliceSampler yields the values of a fixed slice in order.
type SliceSampler[T any] struct {
	values []T
	pos    int
}

// NewSliceSampler returns a finite sampler over a copy of values.
func NewSliceSampler[T any](values []T) *SliceSampler[T] {
	return &SliceSampler[T]{values: slices.Clone(values)}
}

// Next implements Sampler.
func (s *SliceSampler[T]) Next() (T, bool) {
	var zero T
	if s.pos >= len(s.values) {
		return zero, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

// RandomIndexSampler yields pseudo random ints in [0, max] forever.
type RandomIndexSampler struct {
	rng *rand.Rand
	max int
}

// NewRandomIndexSampler seeds a PCG source with seed.
func NewRandomIndexSampler(seed uint64, max int) *RandomIndexSampler {
	return &RandomIndexSampler{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		max: max,
	}
}

// Next implements Sampler.
func (s *RandomIndexSampler) Next() (int, bool) {
	return s.rng.IntN(s.max + 1), true
}

// Seed derives the deterministic per-room seed from a room id.
func Seed(roomID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(roomID))
	return h.Sum64()
}

// Strategies bundles the per-room sampling and scoring strategies.
type Strategies struct {
	// Categories selects category-filtered mode when set; nil selects
	// direct-index mode.
	Categories Sampler[string]
	Indices    Sampler[int]
	Multiplier MultiplierSchedule
}

// StrategyFactory builds the strategies of a room from its seed.
type StrategyFactory func(seed uint64) Strategies

const maxRandomIndex = 1_000_000

// DefaultStrategies returns the factory used when nothing else is
// configured. With a category schedule, each round draws its category from
// the schedule (padded with its last entry up to the round count) and a
// random index picks among the candidates. Without one, the rounds walk a
// seeded permutation of the catalogue ids.
func DefaultStrategies(rules Rules, catalogue Catalogue) StrategyFactory {
	return func(seed uint64) Strategies {
		st := Strategies{Multiplier: rules.Multipliers}
		if len(rules.Categories) > 0 {
			st.Categories = NewSliceSampler(padSchedule(rules.Categories, rules.MaxRounds))
			st.Indices = NewRandomIndexSampler(seed, maxRandomIndex)
			return st
		}

		ids := catalogue.QuestionIDs()
		rng := rand.New(rand.NewPCG(seed, seed>>1|1))
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		st.Indices = NewSliceSampler(ids)
		return st
	}
}

func padSchedule(schedule []string, n int) []string {
	out := make([]string, 0, max(n, len(schedule)))
	out = append(out, schedule...)
	for len(out) < n {
		out = append(out, schedule[len(schedule)-1])
	}
	return out[:max(n, 0)]
}

// ValidateStrategies reports whether the default strategies can produce
// MaxRounds distinct questions from catalogue.
func ValidateStrategies(rules Rules, catalogue Catalogue) error {
	ids := catalogue.QuestionIDs()
	if len(rules.Categories) == 0 {
		if len(ids) < rules.MaxRounds {
			return fmt.Errorf("%w: %d questions for %d rounds", dmn.ErrSequencerExhausted, len(ids), rules.MaxRounds)
		}
		return nil
	}

	available := make(map[string]int)
	for _, id := range ids {
		if q, ok := catalogue.Question(id); ok {
			available[q.Category]++
		}
	}
	needed := make(map[string]int)
	for _, category := range padSchedule(rules.Categories, rules.MaxRounds) {
		needed[category]++
	}
	for _, category := range slices.Sorted(maps.Keys(needed)) {
		if available[category] < needed[category] {
			return fmt.Errorf("%w: %s has %d questions, schedule needs %d",
				dmn.ErrExhaustedCategory, category, available[category], needed[category])
		}
	}
	return nil
}
