package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	logger "github.com/beka-birhanu/geoduel-api/infrastruture/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct{ calls atomic.Int32 }

func (p *countingPruner) PruneStaleWaiters(context.Context) int {
	p.calls.Add(1)
	return 0
}

type countingSweeper struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (s *countingSweeper) Sweep(ttl time.Duration) []string {
	s.calls.Add(1)
	s.ttl.Store(int64(ttl))
	return nil
}

func TestJanitor(t *testing.T) {
	t.Run("runs both jobs until stopped", func(t *testing.T) {
		pruner, sweeper := &countingPruner{}, &countingSweeper{}
		j, err := NewJanitor(&JanitorConfig{
			Matchmaker:          pruner,
			Registry:            sweeper,
			WaiterPruneInterval: 10 * time.Millisecond,
			RoomSweepInterval:   10 * time.Millisecond,
			EndedRoomTTL:        7 * time.Second,
			Logger:              logger.Nop(),
		})
		require.NoError(t, err)

		j.Start()
		require.Eventually(t, func() bool {
			return pruner.calls.Load() >= 2 && sweeper.calls.Load() >= 2
		}, 2*time.Second, 5*time.Millisecond)
		require.NoError(t, j.Stop())

		assert.Equal(t, int64(7*time.Second), sweeper.ttl.Load())
	})

	t.Run("rejects bad config", func(t *testing.T) {
		_, err := NewJanitor(&JanitorConfig{Logger: logger.Nop()})
		assert.Error(t, err)

		_, err = NewJanitor(&JanitorConfig{
			Matchmaker: &countingPruner{},
			Registry:   &countingSweeper{},
			Logger:     logger.Nop(),
		})
		assert.Error(t, err)
	})
}
