package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasspane/dashboard/internal/domain/intent"
)

func TestReplyTrackerResolveConsumesOnce(t *testing.T) {
	tracker := NewReplyTracker()

	id, ch := tracker.Register()
	require.Equal(t, 1, tracker.Outstanding())

	opts := &intent.ToggleReportOptions{Data: []intent.ToggleReportParam{{ID: "siteUrl"}}}
	assert.True(t, tracker.Resolve(id, opts))
	assert.Equal(t, opts, <-ch)
	assert.Zero(t, tracker.Outstanding())

	// A duplicate reply with the same id is ignored.
	assert.False(t, tracker.Resolve(id, opts))
}

func TestReplyTrackerUnknownID(t *testing.T) {
	tracker := NewReplyTracker()
	assert.False(t, tracker.Resolve("never-registered", nil))
}

func TestReplyTrackerCancel(t *testing.T) {
	tracker := NewReplyTracker()

	id, _ := tracker.Register()
	tracker.Cancel(id)
	assert.Zero(t, tracker.Outstanding())
	assert.False(t, tracker.Resolve(id, nil), "canceled registration must not resolve")
}

func TestReplyTrackerIndependentRegistrations(t *testing.T) {
	tracker := NewReplyTracker()

	id1, ch1 := tracker.Register()
	id2, ch2 := tracker.Register()
	require.NotEqual(t, id1, id2)

	require.True(t, tracker.Resolve(id2, &intent.ToggleReportOptions{}))
	select {
	case <-ch1:
		t.Fatal("unrelated waiter resolved")
	default:
	}
	assert.NotNil(t, <-ch2)
}
