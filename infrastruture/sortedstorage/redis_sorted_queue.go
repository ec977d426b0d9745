package sortedstorage

import (
	"context"

	"github.com/beka-birhanu/geoduel-api/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisSortedQueue manages sorted queues in Redis. Pool keys never expire;
// the matchmaker removes members whose owners went away.
type RedisSortedQueue struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisSortedQueue initializes a RedisSortedQueue with the provided Redis client.
func NewRedisSortedQueue(client *redis.Client) (i.SortedQueue, error) {
	queue := &RedisSortedQueue{client: client}
	pool := goredis.NewPool(client)
	queue.locker = redsync.New(pool)
	return queue, nil
}

// Enqueue adds a member to the sorted queue with a given score.
func (rsq *RedisSortedQueue) Enqueue(ctx context.Context, queueKey string, score float64, member string) error {
	return rsq.client.ZAdd(ctx, queueKey, redis.Z{Score: score, Member: member}).Err()
}

// DequeTops removes and retrieves up to `amount` members with the lowest scores.
func (rsq *RedisSortedQueue) DequeTops(ctx context.Context, queueKey string, amount int64) ([]string, error) {
	mutex := rsq.locker.NewMutex(queueKey + ":match_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	count, err := rsq.client.ZCard(ctx, queueKey).Result()
	if err != nil {
		return nil, err
	}

	var members []string
	if count >= amount {
		popped, err := rsq.client.ZPopMin(ctx, queueKey, amount).Result()
		if err != nil {
			return nil, err
		}
		for _, p := range popped {
			if m, ok := p.Member.(string); ok {
				members = append(members, m)
			}
		}
	}

	return members, nil
}

// Count returns the number of members in the sorted queue.
func (rsq *RedisSortedQueue) Count(ctx context.Context, queueKey string) int64 {
	return rsq.client.ZCard(ctx, queueKey).Val()
}

// Members returns every member ordered by score.
func (rsq *RedisSortedQueue) Members(ctx context.Context, queueKey string) ([]string, error) {
	return rsq.client.ZRange(ctx, queueKey, 0, -1).Result()
}

// Remove deletes members from the sorted queue.
func (rsq *RedisSortedQueue) Remove(ctx context.Context, queueKey string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for k, m := range members {
		args[k] = m
	}
	return rsq.client.ZRem(ctx, queueKey, args...).Err()
}
