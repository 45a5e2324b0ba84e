package store

import "sync"

// Subscription is one registered change listener. Notifications are
// delivered on C; a listener that is not draining its channel misses
// notifications rather than blocking writers.
type Subscription struct {
	// C receives the topic of each change.
	C <-chan Topic

	id       int
	notifier *Notifier
}

// Close unregisters the subscription and releases its channel.
func (s *Subscription) Close() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type subscriber struct {
	ch     chan Topic
	topics map[Topic]bool // empty = all topics
}

// Notifier implements the store change-notification contract as an
// explicit observer registry, shared by all Store implementations.
// The zero value is not usable; embed via NewNotifier.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]subscriber)}
}

// Subscribe registers a listener for the given topics. With no topics,
// the listener receives every change.
func (n *Notifier) Subscribe(topics ...Topic) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	filter := make(map[Topic]bool, len(topics))
	for _, t := range topics {
		filter[t] = true
	}

	id := n.nextID
	n.nextID++

	ch := make(chan Topic, 8)
	n.subs[id] = subscriber{ch: ch, topics: filter}

	return &Subscription{C: ch, id: id, notifier: n}
}

// Publish delivers a change notification to every matching subscriber.
// Delivery is non-blocking: a full subscriber channel drops the event.
func (n *Notifier) Publish(topic Topic) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sub := range n.subs {
		if len(sub.topics) > 0 && !sub.topics[topic] {
			continue
		}
		select {
		case sub.ch <- topic:
		default:
		}
	}
}

func (n *Notifier) unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if sub, ok := n.subs[id]; ok {
		delete(n.subs, id)
		close(sub.ch)
	}
}
