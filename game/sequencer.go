package game

import (
	"fmt"
	"slices"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
)

// Sequencer resolves round indexes to catalogue questions for one room.
// Resolved rounds are memoized: a round always maps to the same question.
type Sequencer struct {
	catalogue  Catalogue
	categories Sampler[string]
	indices    Sampler[int]
	maxRounds  int
	history    []int
}

// NewSequencer returns a sequencer drawing from st. It is not safe for
// concurrent use; the owning room serializes access.
func NewSequencer(c Catalogue, st Strategies, maxRounds int) *Sequencer {
	return &Sequencer{
		catalogue:  c,
		categories: st.Categories,
		indices:    st.Indices,
		maxRounds:  maxRounds,
	}
}

// Resolve returns the question of round target, sampling forward one
// question at a time until the history covers it.
func (s *Sequencer) Resolve(target int) (dmn.Question, error) {
	if target < 0 || target >= s.maxRounds {
		return dmn.Question{}, fmt.Errorf("%w: %d", dmn.ErrRoundOutOfRange, target)
	}

	before := len(s.history)
	for len(s.history) <= target {
		if err := s.sample(); err != nil {
			s.history = s.history[:before]
			return dmn.Question{}, err
		}
	}

	q, ok := s.catalogue.Question(s.history[target])
	if !ok {
		return dmn.Question{}, fmt.Errorf("%w: %d", dmn.ErrQuestionOutOfRange, s.history[target])
	}
	return q, nil
}

// History returns a copy of the resolved question ids in round order.
func (s *Sequencer) History() []int {
	return slices.Clone(s.history)
}

func (s *Sequencer) sample() error {
	if s.categories != nil {
		return s.sampleByCategory()
	}
	return s.sampleDirect()
}

func (s *Sequencer) sampleByCategory() error {
	category, ok := s.categories.Next()
	if !ok {
		return dmn.ErrSequencerExhausted
	}

	var candidates []int
	for _, id := range s.catalogue.QuestionIDs() {
		q, _ := s.catalogue.Question(id)
		if q.Category == category && !slices.Contains(s.history, id) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %q", dmn.ErrExhaustedCategory, category)
	}

	n, ok := s.indices.Next()
	if !ok {
		return dmn.ErrSequencerExhausted
	}
	s.history = append(s.history, candidates[mod(n, len(candidates))])
	return nil
}

func (s *Sequencer) sampleDirect() error {
	id, ok := s.indices.Next()
	if !ok {
		return dmn.ErrSequencerExhausted
	}
	if slices.Contains(s.history, id) {
		return fmt.Errorf("%w: %d", dmn.ErrDuplicateQuestion, id)
	}
	if _, ok := s.catalogue.Question(id); !ok {
		return fmt.Errorf("%w: %d", dmn.ErrQuestionOutOfRange, id)
	}
	s.history = append(s.history, id)
	return nil
}

func mod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}
