// Package offline stores actions a client queued while it had no connection,
// so they can be replayed once it is back online.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var ErrEmptyKey = errors.New("offline queue key must not be empty")

// Queue is a set of string-keyed lists of raw JSON actions. Each list keeps
// append order and drops its oldest entries past the configured cap.
type Queue interface {
	// Append adds action to the end of key's list and returns the new length.
	Append(ctx context.Context, key string, action json.RawMessage) (int, error)
	Read(ctx context.Context, key string) ([]json.RawMessage, error)
	Clear(ctx context.Context, key string) error
}

type MemoryQueue struct {
	mu    sync.Mutex
	lists map[string][]json.RawMessage
	max   int
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(max int) *MemoryQueue {
	return &MemoryQueue{
		lists: make(map[string][]json.RawMessage),
		max:   max,
	}
}

func (q *MemoryQueue) Append(_ context.Context, key string, action json.RawMessage) (int, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	list := append(q.lists[key], cloneRaw(action))
	if q.max > 0 && len(list) > q.max {
		list = append([]json.RawMessage(nil), list[len(list)-q.max:]...)
	}
	q.lists[key] = list
	return len(list), nil
}

func (q *MemoryQueue) Read(_ context.Context, key string) ([]json.RawMessage, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	list := q.lists[key]
	out := make([]json.RawMessage, len(list))
	for i, a := range list {
		out[i] = cloneRaw(a)
	}
	return out, nil
}

func (q *MemoryQueue) Clear(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	q.mu.Lock()
	delete(q.lists, key)
	q.mu.Unlock()
	return nil
}

func cloneRaw(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}
