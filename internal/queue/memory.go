package queue

import (
	"context"
	"sync"
	"time"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
)

// MemoryQueue is an in-process queue with native delayed redelivery. Its
// contents are lost on restart; the stale-attempt recovery job republishes
// whatever was pending.
type MemoryQueue struct {
	ready chan Message

	mu       sync.Mutex
	closed   bool
	done     chan struct{}
	timers   map[*time.Timer]struct{}
	inflight int
}

// NewMemoryQueue creates a queue buffering up to size ready messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{
		ready:  make(chan Message, size),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Publish implements Queue. It blocks while the buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, msg Message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.mu.Unlock()

	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now()
	}

	select {
	case q.ready <- msg:
		metrics.QueuePublishedTotal.Inc()
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		metrics.QueuePublishErrorsTotal.Inc()
		return ctx.Err()
	}
}

// Consume implements Queue. Every caller shares the same stream, so several
// workers may range over the returned channel.
func (q *MemoryQueue) Consume(ctx context.Context) (<-chan Message, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrClosed
	}
	q.mu.Unlock()

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.done:
				return
			case msg := <-q.ready:
				q.track(1)
				select {
				case out <- msg:
				case <-ctx.Done():
					q.track(-1)
					q.requeue(msg)
					return
				case <-q.done:
					return
				}
			}
		}
	}()
	return out, nil
}

// Ack implements Queue.
func (q *MemoryQueue) Ack(_ context.Context, _ Message) error {
	q.track(-1)
	return nil
}

// Nack implements Queue. The message is republished after delay unless the
// queue is closed first.
func (q *MemoryQueue) Nack(_ context.Context, msg Message, delay time.Duration) error {
	q.track(-1)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}

	var t *time.Timer
	t = time.AfterFunc(max(delay, 0), func() {
		q.mu.Lock()
		delete(q.timers, t)
		q.mu.Unlock()
		q.requeue(msg)
	})
	q.timers[t] = struct{}{}
	return nil
}

// Len returns the number of messages ready for delivery.
func (q *MemoryQueue) Len() int {
	return len(q.ready)
}

// Delayed returns the number of messages waiting on a redelivery timer.
func (q *MemoryQueue) Delayed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}

// InFlight returns the number of consumed but unacknowledged messages.
func (q *MemoryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inflight
}

// Close stops pending redelivery timers and ends every Consume stream.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	for t := range q.timers {
		t.Stop()
	}
	clear(q.timers)
	close(q.done)
	return nil
}

func (q *MemoryQueue) requeue(msg Message) {
	msg.EnqueuedAt = time.Now()
	select {
	case q.ready <- msg:
		metrics.QueuePublishedTotal.Inc()
	case <-q.done:
	}
}

func (q *MemoryQueue) track(delta int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inflight = max(q.inflight+delta, 0)
}
