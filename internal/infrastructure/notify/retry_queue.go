package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultMaxAttempts = 3

var defaultDelays = []time.Duration{1 * time.Second, 5 * time.Second, 15 * time.Second}

// RetryQueue redelivers failed downstream notifications with bounded attempts
// and increasing delay. State is process-local and in-memory: queued retries
// do not survive a restart, which operators must account for.
type RetryQueue struct {
	notifier    Notifier
	logger      *zap.Logger
	maxAttempts int
	delays      []time.Duration
	timeout     time.Duration

	mu    sync.Mutex
	items map[string]*retryItem
}

type retryItem struct {
	key         string
	payload     map[string]interface{}
	attempt     int
	nextRetryAt time.Time
	createdAt   time.Time
	timer       *time.Timer
}

// ItemStatus describes one pending retry for operational visibility
type ItemStatus struct {
	Key         string    `json:"key"`
	Attempt     int       `json:"attempt"`
	NextRetryAt time.Time `json:"next_retry_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueueStatus is a point-in-time snapshot of the queue
type QueueStatus struct {
	Depth int          `json:"depth"`
	Items []ItemStatus `json:"items"`
}

// NewRetryQueue creates a retry queue delivering through the given notifier
func NewRetryQueue(notifier Notifier, maxAttempts int, timeout time.Duration, logger *zap.Logger) *RetryQueue {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &RetryQueue{
		notifier:    notifier,
		logger:      logger,
		maxAttempts: maxAttempts,
		delays:      defaultDelays,
		timeout:     timeout,
		items:       make(map[string]*retryItem),
	}
}

// Dispatch attempts delivery asynchronously. The caller never blocks on the
// delivery or its retries; failures feed the retry schedule.
func (q *RetryQueue) Dispatch(key string, payload map[string]interface{}) {
	go q.attempt(key, payload, 1)
}

// Enqueue schedules a delivery attempt for key. When the attempt counter has
// already reached the bound the notification is dropped and reported as a
// permanent failure.
func (q *RetryQueue) Enqueue(key string, payload map[string]interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	attempts := 0
	if existing, ok := q.items[key]; ok {
		attempts = existing.attempt
	}

	return q.scheduleLocked(key, payload, attempts)
}

// scheduleLocked plans attempt number failedAttempts+1. Callers hold q.mu.
func (q *RetryQueue) scheduleLocked(key string, payload map[string]interface{}, failedAttempts int) error {
	if failedAttempts >= q.maxAttempts {
		if existing, ok := q.items[key]; ok {
			existing.stop()
			delete(q.items, key)
		}
		q.logger.Error("Notification permanently failed, dropping",
			zap.String("key", key),
			zap.Int("attempts", failedAttempts))
		return fmt.Errorf("notification %q dropped after %d attempts", key, failedAttempts)
	}

	delayIdx := failedAttempts
	if delayIdx >= len(q.delays) {
		delayIdx = len(q.delays) - 1
	}
	delay := q.delays[delayIdx]

	if existing, ok := q.items[key]; ok {
		existing.stop()
	}

	next := failedAttempts + 1
	item := &retryItem{
		key:         key,
		payload:     payload,
		attempt:     failedAttempts,
		nextRetryAt: time.Now().Add(delay),
		createdAt:   time.Now(),
	}
	item.timer = time.AfterFunc(delay, func() {
		q.attempt(key, payload, next)
	})
	q.items[key] = item

	q.logger.Info("Notification retry scheduled",
		zap.String("key", key),
		zap.Int("attempt", next),
		zap.Duration("delay", delay))

	return nil
}

// attempt performs delivery attempt number n for key
func (q *RetryQueue) attempt(key string, payload map[string]interface{}, n int) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeoutOrDefault())
	defer cancel()

	err := q.notifier.Notify(ctx, payload)
	if err == nil {
		q.mu.Lock()
		if item, ok := q.items[key]; ok {
			item.stop()
			delete(q.items, key)
		}
		q.mu.Unlock()

		q.logger.Info("Notification delivered",
			zap.String("key", key),
			zap.Int("attempt", n))
		return
	}

	q.logger.Warn("Notification delivery failed",
		zap.String("key", key),
		zap.Int("attempt", n),
		zap.Error(err))

	q.mu.Lock()
	defer q.mu.Unlock()
	q.scheduleLocked(key, payload, n)
}

// Status returns the current queue depth and per-item retry metadata
func (q *RetryQueue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	status := QueueStatus{
		Depth: len(q.items),
		Items: make([]ItemStatus, 0, len(q.items)),
	}
	for _, item := range q.items {
		status.Items = append(status.Items, ItemStatus{
			Key:         item.key,
			Attempt:     item.attempt,
			NextRetryAt: item.nextRetryAt,
			CreatedAt:   item.createdAt,
		})
	}
	return status
}

// Clear discards all pending items. Every cleared item is a notification that
// never reached its consumer, so each one is surfaced to operators.
func (q *RetryQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cleared := 0
	for key, item := range q.items {
		item.stop()
		delete(q.items, key)
		cleared++
		q.logger.Warn("Discarding undelivered notification",
			zap.String("key", key),
			zap.Int("attempts", item.attempt))
	}
	return cleared
}

func (q *RetryQueue) timeoutOrDefault() time.Duration {
	if q.timeout > 0 {
		return q.timeout
	}
	return defaultTimeout
}

func (i *retryItem) stop() {
	if i.timer != nil {
		i.timer.Stop()
	}
}
