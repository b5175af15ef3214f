// Package queue provides gorkrepair.QueueLayer implementations.
//
// Both implementations deduplicate by (queue, id): pushing an id that is
// already queued leaves the existing message and its visibility untouched.
//   - RedisQueue: sorted set per queue, scored by visibility time
//   - MemoryQueue: in-memory backend for tests and local tooling
package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sicko7947/gorkrepair"
)

// Message is one queued id
type Message struct {
	ID        string
	VisibleAt time.Time
}

// MemoryQueue implements gorkrepair.QueueLayer in memory
type MemoryQueue struct {
	queues map[string]map[string]time.Time // queue -> id -> visible at
	now    func() time.Time
	mu     sync.RWMutex
}

var _ gorkrepair.QueueLayer = (*MemoryQueue)(nil)

// MemoryOption configures a MemoryQueue
type MemoryOption func(*MemoryQueue)

// WithMemoryClock sets the time source used for visibility
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(q *MemoryQueue) { q.now = now }
}

// NewMemoryQueue creates an empty in-memory queue layer
func NewMemoryQueue(opts ...MemoryOption) *MemoryQueue {
	q := &MemoryQueue{
		queues: make(map[string]map[string]time.Time),
		now:    time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Contains reports whether id is queued on queueName, visible or not
func (q *MemoryQueue) Contains(ctx context.Context, queueName, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	_, ok := q.queues[queueName][id]
	return ok, nil
}

// Push enqueues id unless already present
func (q *MemoryQueue) Push(ctx context.Context, queueName, id string, delaySeconds int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	msgs, ok := q.queues[queueName]
	if !ok {
		msgs = make(map[string]time.Time)
		q.queues[queueName] = msgs
	}
	if _, exists := msgs[id]; exists {
		return nil
	}
	msgs[id] = q.now().Add(time.Duration(delaySeconds) * time.Second)
	return nil
}

// Remove deletes id from queueName, as a consumer would on pickup
func (q *MemoryQueue) Remove(queueName, id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queues[queueName][id]; !ok {
		return false
	}
	delete(q.queues[queueName], id)
	return true
}

// Messages returns the messages of queueName ordered by visibility then id
func (q *MemoryQueue) Messages(queueName string) []Message {
	q.mu.RLock()
	defer q.mu.RUnlock()

	msgs := make([]Message, 0, len(q.queues[queueName]))
	for id, at := range q.queues[queueName] {
		msgs = append(msgs, Message{ID: id, VisibleAt: at})
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].VisibleAt.Equal(msgs[j].VisibleAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].VisibleAt.Before(msgs[j].VisibleAt)
	})
	return msgs
}

// Len returns the number of messages on queueName
func (q *MemoryQueue) Len(queueName string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.queues[queueName])
}
