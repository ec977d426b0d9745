package service

import (
	"testing"
	"time"

	logger "github.com/beka-birhanu/geoduel-api/infrastruture/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	n := NewNotifier(logger.Nop(), 1)

	t.Run("fan out to every subscriber of the topic", func(t *testing.T) {
		a, cancelA := n.Subscribe(RoomTopic("r1"))
		defer cancelA()
		b, cancelB := n.Subscribe(RoomTopic("r1"))
		defer cancelB()
		other, cancelOther := n.Subscribe(RoomTopic("r2"))
		defer cancelOther()

		n.Publish(RoomTopic("r1"), EventReveal)

		assert.Equal(t, EventReveal, <-a)
		assert.Equal(t, EventReveal, <-b)
		select {
		case ev := <-other:
			t.Fatalf("unexpected event %q on another topic", ev)
		default:
		}
	})

	t.Run("full subscriber never blocks the publisher", func(t *testing.T) {
		slow, cancelSlow := n.Subscribe(RoomTopic("r3"))
		defer cancelSlow()
		fast, cancelFast := n.Subscribe(RoomTopic("r3"))
		defer cancelFast()

		done := make(chan struct{})
		go func() {
			n.Publish(RoomTopic("r3"), EventReveal)
			<-fast
			n.Publish(RoomTopic("r3"), EventNextRound)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked on a full subscriber")
		}
		assert.Equal(t, EventNextRound, <-fast)
		assert.Equal(t, EventReveal, <-slow)
	})

	t.Run("late subscriber misses earlier events", func(t *testing.T) {
		n.Publish(ChannelTopic("c1"), "matched:room_1:blue")
		ch, cancel := n.Subscribe(ChannelTopic("c1"))
		defer cancel()
		select {
		case ev := <-ch:
			t.Fatalf("unexpected replay of %q", ev)
		default:
		}
	})

	t.Run("cancel closes and unregisters", func(t *testing.T) {
		ch, cancel := n.Subscribe(RoomTopic("r4"))
		require.Equal(t, 1, n.Subscribers(RoomTopic("r4")))
		cancel()
		cancel()
		_, open := <-ch
		assert.False(t, open)
		assert.Zero(t, n.Subscribers(RoomTopic("r4")))
		assert.NotPanics(t, func() { n.Publish(RoomTopic("r4"), EventReveal) })
	})
}
