package bridge

import (
	"sync"

	"github.com/google/uuid"

	"github.com/glasspane/dashboard/internal/domain/intent"
)

// ReplyTracker correlates request/reply intents with their single reply.
// Each registration is consumed by at most one reply; later replies with
// the same id are ignored. The tracker enforces at-most-one consumption,
// not delivery: a host that never replies leaves the caller suspended
// until its context expires.
type ReplyTracker struct {
	mu      sync.Mutex
	pending map[string]chan *intent.ToggleReportOptions
}

// NewReplyTracker creates an empty tracker.
func NewReplyTracker() *ReplyTracker {
	return &ReplyTracker{
		pending: make(map[string]chan *intent.ToggleReportOptions),
	}
}

// Register allocates a correlation id and its resolution channel.
func (t *ReplyTracker) Register() (string, <-chan *intent.ToggleReportOptions) {
	id := uuid.New().String()
	ch := make(chan *intent.ToggleReportOptions, 1)
	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()
	return id, ch
}

// Resolve delivers the reply for id and removes the registration.
// Returns false when id is unknown or already consumed.
func (t *ReplyTracker) Resolve(id string, opts *intent.ToggleReportOptions) bool {
	t.mu.Lock()
	ch, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- opts
	return true
}

// Cancel removes a registration whose caller gave up waiting.
func (t *ReplyTracker) Cancel(id string) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// Outstanding reports the number of unconsumed registrations.
func (t *ReplyTracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
