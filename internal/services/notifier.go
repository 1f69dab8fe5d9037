package services

import "sync"

// ChangeKind says what happened to a home.
type ChangeKind string

const (
	HomeCreated ChangeKind = "created"
	HomeUpdated ChangeKind = "updated"
	HomeDeleted ChangeKind = "deleted"
)

// HomesChanged tells subscribers that a user's home list is stale.
type HomesChanged struct {
	UserID uint       `json:"user_id"`
	HomeID uint       `json:"home_id"`
	Kind   ChangeKind `json:"kind"`
}

// HomesNotifier fans HomesChanged events out to subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the event.
type HomesNotifier struct {
	mu     sync.Mutex
	subs   map[int]chan HomesChanged
	nextID int
	buffer int
}

// NewHomesNotifier returns a notifier giving each subscriber a channel of
// the given capacity.
func NewHomesNotifier(buffer int) *HomesNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &HomesNotifier{subs: make(map[int]chan HomesChanged), buffer: buffer}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (n *HomesNotifier) Subscribe() (<-chan HomesChanged, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	ch := make(chan HomesChanged, n.buffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber that has room for it and reports
// how many received it.
func (n *HomesNotifier) Publish(ev HomesChanged) int {
	if n == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	delivered := 0
	for _, ch := range n.subs {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}
