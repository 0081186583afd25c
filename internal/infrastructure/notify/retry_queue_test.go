package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingNotifier struct {
	mu       sync.Mutex
	calls    int
	failures int
	done     chan struct{}
}

// Notify fails the first `failures` calls, then succeeds. done is closed on
// the first successful call.
func (n *countingNotifier) Notify(ctx context.Context, payload map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.calls <= n.failures {
		return assert.AnError
	}
	if n.done != nil {
		close(n.done)
		n.done = nil
	}
	return nil
}

func (n *countingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func newTestQueue(notifier Notifier) *RetryQueue {
	q := NewRetryQueue(notifier, 3, time.Second, zap.NewNop())
	q.delays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return q
}

func TestDispatchDeliversOnFirstAttempt(t *testing.T) {
	notifier := &countingNotifier{done: make(chan struct{})}
	done := notifier.done
	q := newTestQueue(notifier)

	q.Dispatch("k1", map[string]interface{}{"x": 1})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notification never delivered")
	}

	assert.Equal(t, 1, notifier.callCount())
	assert.Zero(t, q.Status().Depth)
}

func TestDispatchRetriesUntilSuccess(t *testing.T) {
	notifier := &countingNotifier{failures: 2, done: make(chan struct{})}
	done := notifier.done
	q := newTestQueue(notifier)

	q.Dispatch("k1", map[string]interface{}{"x": 1})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notification never delivered")
	}

	assert.Equal(t, 3, notifier.callCount())

	// Queue drains once delivery succeeds
	assert.Eventually(t, func() bool {
		return q.Status().Depth == 0
	}, time.Second, 5*time.Millisecond)
}

func TestAttemptsAreBounded(t *testing.T) {
	notifier := &countingNotifier{failures: 1000}
	q := newTestQueue(notifier)

	q.Dispatch("k1", map[string]interface{}{"x": 1})

	// Attempts stop at the bound and the item is dropped
	require.Eventually(t, func() bool {
		return notifier.callCount() == 3 && q.Status().Depth == 0
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, notifier.callCount())
}

func TestStatusReportsPendingItems(t *testing.T) {
	notifier := &countingNotifier{failures: 1000}
	q := NewRetryQueue(notifier, 3, time.Second, zap.NewNop())
	q.delays = []time.Duration{time.Hour, time.Hour, time.Hour}

	require.NoError(t, q.Enqueue("k1", map[string]interface{}{"x": 1}))
	require.NoError(t, q.Enqueue("k2", map[string]interface{}{"x": 2}))

	status := q.Status()
	assert.Equal(t, 2, status.Depth)
	require.Len(t, status.Items, 2)
	for _, item := range status.Items {
		assert.False(t, item.NextRetryAt.IsZero())
	}
}

func TestClearDiscardsPendingItems(t *testing.T) {
	notifier := &countingNotifier{failures: 1000}
	q := NewRetryQueue(notifier, 3, time.Second, zap.NewNop())
	q.delays = []time.Duration{time.Hour, time.Hour, time.Hour}

	require.NoError(t, q.Enqueue("k1", map[string]interface{}{"x": 1}))
	require.NoError(t, q.Enqueue("k2", map[string]interface{}{"x": 2}))

	assert.Equal(t, 2, q.Clear())
	assert.Zero(t, q.Status().Depth)

	// Stopped timers never fire
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, notifier.callCount())
}
