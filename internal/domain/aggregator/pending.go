package aggregator

import (
	"sync"

	"github.com/glasspane/dashboard/internal/domain/tabdata"
)

// PendingQueue holds render waiters registered before the first complete
// snapshot exists. Waiters drain exactly once, in FIFO registration order,
// the instant readiness is reached; registrations after that point never
// touch the queue (Aggregator.Wait resolves them directly).
type PendingQueue struct {
	mu      sync.Mutex
	waiters []chan *tabdata.Snapshot
}

// Enqueue registers a waiter and returns its resolution channel. The
// channel is buffered so draining never blocks on a slow consumer.
func (q *PendingQueue) Enqueue() <-chan *tabdata.Snapshot {
	ch := make(chan *tabdata.Snapshot, 1)
	q.mu.Lock()
	q.waiters = append(q.waiters, ch)
	q.mu.Unlock()
	return ch
}

// Drain resolves every queued waiter with snap and empties the queue.
func (q *PendingQueue) Drain(snap *tabdata.Snapshot) {
	q.mu.Lock()
	waiters := q.waiters
	q.waiters = nil
	q.mu.Unlock()

	for _, ch := range waiters {
		ch <- snap
	}
}

// Len reports the number of queued waiters.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}
