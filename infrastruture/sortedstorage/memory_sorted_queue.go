// Package sortedstorage implements the score ordered queues backing the
// matchmaking pools.
package sortedstorage

import (
	"context"
	"slices"
	"sync"

	"github.com/beka-birhanu/geoduel-api/service/i"
)

type entry struct {
	score  float64
	member string
}

// MemorySortedQueue keeps sorted queues in process memory.
type MemorySortedQueue struct {
	queues map[string][]entry
	sync.Mutex
}

// NewMemorySortedQueue returns an empty in-memory queue store.
func NewMemorySortedQueue() i.SortedQueue {
	return &MemorySortedQueue{queues: make(map[string][]entry)}
}

// Enqueue inserts member keeping the queue ordered by score. Re-adding a
// member updates its score.
func (q *MemorySortedQueue) Enqueue(_ context.Context, queueKey string, score float64, member string) error {
	q.Lock()
	defer q.Unlock()

	entries := slices.DeleteFunc(q.queues[queueKey], func(e entry) bool { return e.member == member })
	pos, _ := slices.BinarySearchFunc(entries, score, func(e entry, s float64) int {
		switch {
		case e.score < s:
			return -1
		case e.score > s:
			return 1
		}
		return 0
	})
	for pos < len(entries) && entries[pos].score == score {
		pos++
	}
	q.queues[queueKey] = slices.Insert(entries, pos, entry{score: score, member: member})
	return nil
}

// DequeTops removes and returns the amount lowest scored members.
func (q *MemorySortedQueue) DequeTops(_ context.Context, queueKey string, amount int64) ([]string, error) {
	q.Lock()
	defer q.Unlock()

	entries := q.queues[queueKey]
	if amount <= 0 || int64(len(entries)) < amount {
		return nil, nil
	}

	members := make([]string, 0, amount)
	for _, e := range entries[:amount] {
		members = append(members, e.member)
	}
	q.setLocked(queueKey, entries[amount:])
	return members, nil
}

// Count returns the number of members under queueKey.
func (q *MemorySortedQueue) Count(_ context.Context, queueKey string) int64 {
	q.Lock()
	defer q.Unlock()
	return int64(len(q.queues[queueKey]))
}

// Members returns the members under queueKey in score order.
func (q *MemorySortedQueue) Members(_ context.Context, queueKey string) ([]string, error) {
	q.Lock()
	defer q.Unlock()

	entries := q.queues[queueKey]
	members := make([]string, 0, len(entries))
	for _, e := range entries {
		members = append(members, e.member)
	}
	return members, nil
}

// Remove deletes members from queueKey.
func (q *MemorySortedQueue) Remove(_ context.Context, queueKey string, members ...string) error {
	q.Lock()
	defer q.Unlock()

	remaining := slices.DeleteFunc(q.queues[queueKey], func(e entry) bool {
		return slices.Contains(members, e.member)
	})
	q.setLocked(queueKey, remaining)
	return nil
}

func (q *MemorySortedQueue) setLocked(queueKey string, entries []entry) {
	if len(entries) == 0 {
		delete(q.queues, queueKey)
		return
	}
	q.queues[queueKey] = slices.Clone(entries)
}
