package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/infrastruture/sortedstorage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchmakerGlobalPool(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	first, err := f.matchmaker.Join(ctx, "")
	require.NoError(t, err)
	assert.False(t, first.Matched)
	assert.True(t, strings.HasPrefix(first.Channel, "globalwait:"))

	events, cancel := f.notifier.Subscribe(ChannelTopic(first.Channel))
	defer cancel()

	second, err := f.matchmaker.Join(ctx, "")
	require.NoError(t, err)
	require.True(t, second.Matched)
	assert.Equal(t, dmn.Red, second.Team)
	assert.True(t, strings.HasPrefix(second.Room, "room_"))

	assert.Equal(t, fmt.Sprintf("matched:%s:blue", second.Room), <-events)

	polled, err := f.matchmaker.Poll(first.Channel)
	require.NoError(t, err)
	assert.True(t, polled.Matched)
	assert.Equal(t, dmn.Blue, polled.Team)
	assert.Equal(t, second.Room, polled.Room)

	_, err = f.matchmaker.Poll(first.Channel)
	assert.ErrorIs(t, err, dmn.ErrUnknownChannel)

	assert.Equal(t, dmn.RoomInGame, f.registry.Status(second.Room))
	room, err := f.registry.Get(second.Room)
	require.NoError(t, err)
	st, err := room.State(dmn.Blue)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Round)
	assert.Zero(t, f.matchmaker.Waiting())
}

func TestMatchmakerConcurrentJoins(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]dmn.MatchResult, 2)
	for k := range results {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			res, err := f.matchmaker.Join(ctx, "")
			assert.NoError(t, err)
			results[k] = res
		}(k)
	}
	wg.Wait()

	waited := -1
	for k, res := range results {
		if !res.Matched {
			require.Equal(t, -1, waited, "exactly one join waits")
			waited = k
			polled, err := f.matchmaker.Poll(res.Channel)
			require.NoError(t, err)
			results[k] = polled
		}
	}
	require.NotEqual(t, -1, waited, "exactly one join waits")
	assert.Equal(t, dmn.Blue, results[waited].Team, "the waiting join arrived first")
	assert.Equal(t, dmn.Red, results[1-waited].Team)

	require.True(t, results[0].Matched)
	require.True(t, results[1].Matched)
	assert.Equal(t, results[0].Room, results[1].Room)
	assert.NotEqual(t, results[0].Team, results[1].Team)
	assert.Equal(t, 1, f.registry.Len())
}

func TestMatchmakerNamedRoom(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	first, err := f.matchmaker.Join(ctx, "roomX")
	require.NoError(t, err)
	assert.False(t, first.Matched)
	assert.True(t, strings.HasPrefix(first.Channel, "roomwait:roomX:"))
	assert.Equal(t, dmn.RoomMatching, f.registry.Status("roomX"))

	other, err := f.matchmaker.Join(ctx, "")
	require.NoError(t, err)
	assert.False(t, other.Matched, "global waiters never pair with room waiters")

	second, err := f.matchmaker.Join(ctx, "roomX")
	require.NoError(t, err)
	assert.True(t, second.Matched)
	assert.Equal(t, "roomX", second.Room)
	assert.Equal(t, dmn.Red, second.Team)
	assert.Equal(t, dmn.RoomInGame, f.registry.Status("roomX"))

	_, err = f.matchmaker.Join(ctx, "roomX")
	assert.ErrorIs(t, err, dmn.ErrRoomBusy)

	t.Run("invalid room id", func(t *testing.T) {
		for _, id := range []string{"bad room", "a/b", strings.Repeat("x", 65)} {
			_, err := f.matchmaker.Join(ctx, id)
			assert.ErrorIs(t, err, dmn.ErrInvalidRoom, id)
		}
	})

	t.Run("room is joinable again once its match ended", func(t *testing.T) {
		f.registry.MarkEnded("roomX")
		f.clock.Advance(11 * time.Second)

		res, err := f.matchmaker.Join(ctx, "roomX")
		require.NoError(t, err)
		assert.False(t, res.Matched)
		assert.Equal(t, dmn.RoomMatching, f.registry.Status("roomX"))
	})
}

func TestMatchmakerPruning(t *testing.T) {
	ctx := context.Background()

	t.Run("silent waiter is pruned and the room reverts to empty", func(t *testing.T) {
		f := newMatchFixture(t)
		res, err := f.matchmaker.Join(ctx, "roomY")
		require.NoError(t, err)

		f.clock.Advance(3 * time.Second)
		assert.Equal(t, 1, f.matchmaker.PruneStaleWaiters(ctx))
		assert.Equal(t, dmn.RoomEmpty, f.registry.Status("roomY"))
		assert.ErrorIs(t, f.matchmaker.Ping(res.Channel), dmn.ErrUnknownChannel)

		next, err := f.matchmaker.Join(ctx, "roomY")
		require.NoError(t, err)
		assert.False(t, next.Matched, "pruned waiter must not be paired")
	})

	t.Run("pinging keeps a waiter alive", func(t *testing.T) {
		f := newMatchFixture(t)
		res, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)

		f.clock.Advance(1500 * time.Millisecond)
		require.NoError(t, f.matchmaker.Ping(res.Channel))
		f.clock.Advance(1500 * time.Millisecond)
		assert.Zero(t, f.matchmaker.PruneStaleWaiters(ctx))

		polled, err := f.matchmaker.Poll(res.Channel)
		require.NoError(t, err)
		assert.False(t, polled.Matched)
	})

	t.Run("unclaimed results expire", func(t *testing.T) {
		f := newMatchFixture(t)
		first, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)
		_, err = f.matchmaker.Join(ctx, "")
		require.NoError(t, err)

		require.NoError(t, f.matchmaker.Ping(first.Channel))
		f.clock.Advance(31 * time.Second)
		f.matchmaker.PruneStaleWaiters(ctx)
		_, err = f.matchmaker.Poll(first.Channel)
		assert.ErrorIs(t, err, dmn.ErrUnknownChannel)
	})

	t.Run("reset", func(t *testing.T) {
		f := newMatchFixture(t)
		_, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)
		f.matchmaker.Reset(ctx)
		assert.Zero(t, f.matchmaker.Waiting())

		res, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)
		assert.False(t, res.Matched)
	})
}

func TestMatchmakerRedisPool(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	queue, err := sortedstorage.NewRedisSortedQueue(client)
	require.NoError(t, err)
	f := newMatchFixtureWithQueue(t, queue)

	first, err := f.matchmaker.Join(ctx, "roomX")
	require.NoError(t, err)
	require.False(t, first.Matched)

	// A waiter that keeps pinging stays in the pool for as long as it likes.
	for k := 0; k < 31; k++ {
		f.clock.Advance(time.Second)
		mr.FastForward(time.Second)
		require.NoError(t, f.matchmaker.Ping(first.Channel))
	}
	assert.Equal(t, int64(1), queue.Count(ctx, "matchmaker:queue:room:roomX"))

	second, err := f.matchmaker.Join(ctx, "roomX")
	require.NoError(t, err)
	assert.True(t, second.Matched)
	assert.Equal(t, dmn.Red, second.Team)
	assert.Zero(t, f.matchmaker.Waiting())

	polled, err := f.matchmaker.Poll(first.Channel)
	require.NoError(t, err)
	assert.True(t, polled.Matched)
	assert.Equal(t, dmn.Blue, polled.Team)
}

func TestMatchmakerReconcilesPool(t *testing.T) {
	ctx := context.Background()
	globalKey := "matchmaker:queue:global"

	t.Run("untracked members are never paired", func(t *testing.T) {
		f := newMatchFixture(t)
		require.NoError(t, f.queue.Enqueue(ctx, globalKey, 0, "globalwait:left-behind"))

		res, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)
		assert.False(t, res.Matched)

		members, err := f.queue.Members(ctx, globalKey)
		require.NoError(t, err)
		assert.Equal(t, []string{res.Channel}, members)
	})

	t.Run("tracked waiter missing from the store is restored", func(t *testing.T) {
		f := newMatchFixture(t)
		first, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)
		require.NoError(t, f.queue.Remove(ctx, globalKey, first.Channel))

		second, err := f.matchmaker.Join(ctx, "")
		require.NoError(t, err)
		require.True(t, second.Matched)
		assert.Equal(t, dmn.Red, second.Team)

		polled, err := f.matchmaker.Poll(first.Channel)
		require.NoError(t, err)
		assert.True(t, polled.Matched)
		assert.Equal(t, dmn.Blue, polled.Team)
		assert.Zero(t, f.queue.Count(ctx, globalKey))
	})
}
