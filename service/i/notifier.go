package i

// Notifier fans short event tags out to subscribers of a topic.
type Notifier interface {
	// Subscribe registers a receiver on topic. The returned func
	// unsubscribes and closes the channel.
	Subscribe(topic string) (<-chan string, func())

	// Publish delivers event to every current subscriber without blocking.
	Publish(topic, event string)
}
