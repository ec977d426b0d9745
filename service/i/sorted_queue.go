package i

import "context"

// SortedQueue stores members ordered by ascending score under a key.
type SortedQueue interface {
	// Enqueue adds member with score.
	Enqueue(ctx context.Context, queueKey string, score float64, member string) error

	// DequeTops removes and returns up to amount lowest scored members, only
	// when at least amount members are queued.
	DequeTops(ctx context.Context, queueKey string, amount int64) ([]string, error)

	// Count returns the number of queued members.
	Count(ctx context.Context, queueKey string) int64

	// Members returns every member in score order.
	Members(ctx context.Context, queueKey string) ([]string, error)

	// Remove deletes members from the queue.
	Remove(ctx context.Context, queueKey string, members ...string) error
}
