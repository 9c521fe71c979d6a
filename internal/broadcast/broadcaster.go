package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

// DefaultBuffer is the per-subscriber snapshot buffer.
const DefaultBuffer = 8

// Broadcaster fans feed snapshots out to any number of subscribers.
// Snapshots supersede each other, so a subscriber that falls behind loses its
// oldest buffered snapshot rather than the newest one.
type Broadcaster struct {
	subscribers map[uint64]chan models.Snapshot
	nextID      atomic.Uint64
	buffer      int
	closed      bool
	mu          sync.Mutex
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broadcaster{
		subscribers: make(map[uint64]chan models.Snapshot),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber. After Close the returned channel is
// already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan models.Snapshot) {
	id := b.nextID.Add(1)
	ch := make(chan models.Snapshot, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast never blocks.
func (b *Broadcaster) Broadcast(s models.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- s:
			continue
		default:
		}
		// Full: drop the oldest and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
