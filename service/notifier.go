package service

import (
	"fmt"
	"sync"

	dmn "github.com/beka-birhanu/geoduel-api/domain"
	"github.com/beka-birhanu/geoduel-api/service/i"
)

const defaultSubscriberBuffer = 16

// Event tags published to subscribers. Subscribers re-fetch state on receipt.
const (
	EventReveal    = "reveal"
	EventNextRound = "next_round"
	MatchedPrefix  = "matched:"
	matchedFmt     = MatchedPrefix + "%s:%s"
)

// MatchedEvent is the tag sent to a waiter once it is paired.
func MatchedEvent(room string, team dmn.Team) string {
	return fmt.Sprintf(matchedFmt, room, team)
}

// RoomTopic is the topic carrying events of a room.
func RoomTopic(room string) string {
	return "room:" + room
}

// ChannelTopic is the topic carrying events of a matchmaking wait channel.
func ChannelTopic(channel string) string {
	return "channel:" + channel
}

// Notifier is an in-process publish/subscribe hub. Subscriptions are not
// durable: events published before Subscribe are never seen.
type Notifier struct {
	topics map[string]map[uint64]chan string
	nextID uint64
	buffer int
	logger i.Logger
	sync.RWMutex
}

// NewNotifier returns a notifier giving each subscriber buffer slots.
func NewNotifier(logger i.Logger, buffer int) *Notifier {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Notifier{
		topics: make(map[string]map[uint64]chan string),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe implements i.Notifier.
func (n *Notifier) Subscribe(topic string) (<-chan string, func()) {
	ch := make(chan string, n.buffer)

	n.Lock()
	id := n.nextID
	n.nextID++
	if n.topics[topic] == nil {
		n.topics[topic] = make(map[uint64]chan string)
	}
	n.topics[topic][id] = ch
	n.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { n.unsubscribe(topic, id) })
	}
}

func (n *Notifier) unsubscribe(topic string, id uint64) {
	n.Lock()
	defer n.Unlock()

	subs := n.topics[topic]
	if ch, ok := subs[id]; ok {
		delete(subs, id)
		close(ch)
	}
	if len(subs) == 0 {
		delete(n.topics, topic)
	}
}

// Publish implements i.Notifier. A subscriber with a full buffer misses the
// event; the others are unaffected.
func (n *Notifier) Publish(topic, event string) {
	n.RLock()
	defer n.RUnlock()

	for id, ch := range n.topics[topic] {
		select {
		case ch <- event:
		default:
			n.logger.Warning(fmt.Sprintf("dropped %q for subscriber %d of %s: buffer full", event, id, topic))
		}
	}
}

// Subscribers returns the number of receivers registered on topic.
func (n *Notifier) Subscribers(topic string) int {
	n.RLock()
	defer n.RUnlock()
	return len(n.topics[topic])
}
