package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
)

const (
	defaultWriteTimeout = 10 * time.Second
	redeliverBatch      = 500
)

// messageWriter is the subset of *kafka.Writer the queue uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the subset of *kafka.Reader the queue uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures a KafkaQueue.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string
	WriteTimeout time.Duration
}

// KafkaQueue delivers messages over a Kafka topic. Offsets are committed on
// Ack and on Nack, in partition order; a nacked message is parked in the delay
// table until RedeliverDue publishes it again.
type KafkaQueue struct {
	writer  messageWriter
	reader  messageReader
	offsets *offsetTracker
	delays  DelayTable
	now    func() time.Time
	log    *slog.Logger
}

// KafkaOption configures a KafkaQueue.
type KafkaOption func(*KafkaQueue)

// WithKafkaLogger sets the logger.
func WithKafkaLogger(l *slog.Logger) KafkaOption {
	return func(q *KafkaQueue) {
		q.log = l
	}
}

// WithKafkaClock overrides the time source used for delay scheduling.
func WithKafkaClock(now func() time.Time) KafkaOption {
	return func(q *KafkaQueue) {
		q.now = now
	}
}

// NewKafkaQueue creates a queue with a synchronous hash-balanced writer and
// a consumer-group reader on cfg.Topic.
func NewKafkaQueue(cfg KafkaConfig, delays DelayTable, opts ...KafkaOption) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka queue: brokers cannot be empty")
	}
	if cfg.Topic == "" || cfg.GroupID == "" {
		return nil, errors.New("kafka queue: topic and group id are required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})

	return newKafkaQueue(writer, reader, delays, opts...), nil
}

func newKafkaQueue(w messageWriter, r messageReader, delays DelayTable, opts ...KafkaOption) *KafkaQueue {
	q := &KafkaQueue{
		writer:  w,
		reader:  r,
		offsets: newOffsetTracker(),
		delays:  delays,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Publish implements Queue. Messages are keyed by attempt ID so every
// redelivery of an attempt lands on the same partition.
func (q *KafkaQueue) Publish(ctx context.Context, msg Message) error {
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = q.now()
	}
	value, err := Encode(msg)
	if err != nil {
		return err
	}

	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.AttemptID),
		Value: value,
	})
	if err != nil {
		metrics.QueuePublishErrorsTotal.Inc()
		return fmt.Errorf("publishing attempt %s: %w", msg.AttemptID, err)
	}
	metrics.QueuePublishedTotal.Inc()
	return nil
}

// Consume implements Queue. Undecodable records are logged and committed so
// they cannot block the partition.
func (q *KafkaQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			rec, err := q.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					q.log.Error("kafka fetch failed, stopping consumer", "error", err)
				}
				return
			}
			q.offsets.fetched(rec.Partition, rec.Offset)

			msg, err := Decode(rec.Value)
			if err != nil {
				q.log.Warn("dropping undecodable delivery message",
					"partition", rec.Partition,
					"offset", rec.Offset,
					"error", err,
				)
				if cerr := q.commit(ctx, rec); cerr != nil {
					q.log.Error("committing undecodable message", "error", cerr)
				}
				continue
			}
			msg.raw = &rec

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Ack implements Queue. The commit waits until every earlier record on the
// partition has been acked or nacked. A crash before then redelivers the
// finished records too, and the dispatcher's attempt status check discards
// them.
func (q *KafkaQueue) Ack(ctx context.Context, msg Message) error {
	if msg.raw == nil {
		return nil
	}
	if err := q.commit(ctx, *msg.raw); err != nil {
		return fmt.Errorf("committing attempt %s: %w", msg.AttemptID, err)
	}
	return nil
}

func (q *KafkaQueue) commit(ctx context.Context, rec kafka.Message) error {
	offset, ok := q.offsets.finished(rec.Partition, rec.Offset)
	if !ok {
		return nil
	}
	rec.Offset = offset
	return q.reader.CommitMessages(ctx, rec)
}

// Nack implements Queue. The message is scheduled before its offset is
// committed so a crash in between causes a duplicate, never a loss.
func (q *KafkaQueue) Nack(ctx context.Context, msg Message, delay time.Duration) error {
	if err := q.delays.Schedule(ctx, msg, q.now().Add(delay)); err != nil {
		return err
	}
	return q.Ack(ctx, msg)
}

// RedeliverDue publishes every delay table entry whose time has come and
// returns how many were moved.
func (q *KafkaQueue) RedeliverDue(ctx context.Context) (int, error) {
	due, err := q.delays.Due(ctx, q.now(), redeliverBatch)
	if err != nil {
		return 0, err
	}

	var moved int
	for _, msg := range due {
		msg.EnqueuedAt = time.Time{}
		if err := q.Publish(ctx, msg); err != nil {
			return moved, err
		}
		if err := q.delays.Remove(ctx, msg); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// Close closes the reader and writer.
func (q *KafkaQueue) Close() error {
	return errors.Join(q.reader.Close(), q.writer.Close())
}
