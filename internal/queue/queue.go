// Package queue carries delivery attempt IDs from the notification factory
// to the dispatcher with at-least-once semantics. Consumers must tolerate
// redelivery of a message they have already processed.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrClosed is returned by operations on a closed queue.
var ErrClosed = errors.New("queue closed")

// Message references one delivery attempt. Only AttemptID is required; the
// other fields are carried for logging and partitioning.
type Message struct {
	AttemptID      string
	NotificationID string
	Channel        domain.Channel
	EnqueuedAt     time.Time

	// raw is the broker record this message was read from, if any.
	raw *kafka.Message
}

// Queue is the delivery transport consumed by the dispatcher.
type Queue interface {
	// Publish enqueues msg for immediate delivery.
	Publish(ctx context.Context, msg Message) error
	// Consume returns the stream of deliverable messages. The channel is
	// closed when ctx is done or the queue is closed.
	Consume(ctx context.Context) (<-chan Message, error)
	// Ack marks msg as processed.
	Ack(ctx context.Context, msg Message) error
	// Nack marks msg as processed for now and asks for it again after delay.
	Nack(ctx context.Context, msg Message, delay time.Duration) error
	Close() error
}

// Redeliverer is implemented by queues that simulate delayed redelivery and
// need a scheduler to move due messages back onto the broker.
type Redeliverer interface {
	RedeliverDue(ctx context.Context) (int, error)
}
