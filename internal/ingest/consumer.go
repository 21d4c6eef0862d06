// Package ingest consumes market ticks from Kafka and feeds them to the
// evaluation engine.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/condition"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

const (
	sourceKafka   = "kafka"
	fetchBackoff  = time.Second
	commitTimeout = 5 * time.Second
)

// Submitter accepts observations for evaluation.
type Submitter interface {
	Submit(ctx context.Context, obs domain.Observation) error
}

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config configures a Consumer.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Tick is the JSON wire form of a market observation. Feeds that publish
// symbol and price instead of entity_id and value are accepted too.
type Tick struct {
	EntityID  string    `json:"entity_id"`
	Symbol    string    `json:"symbol"`
	Metric    string    `json:"metric"`
	Value     *float64  `json:"value"`
	Price     *float64  `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Observation converts t, falling back to fallbackTime when the tick carries
// no timestamp.
func (t Tick) Observation(fallbackTime time.Time) (domain.Observation, error) {
	obs := domain.Observation{
		EntityID:  strings.ToUpper(strings.TrimSpace(t.EntityID)),
		Metric:    domain.Metric(strings.ToLower(t.Metric)),
		Timestamp: t.Timestamp,
	}
	if obs.EntityID == "" {
		obs.EntityID = strings.ToUpper(strings.TrimSpace(t.Symbol))
	}
	if obs.Metric == "" {
		obs.Metric = domain.MetricPrice
	}

	switch {
	case t.Value != nil:
		obs.Value = *t.Value
	case t.Price != nil:
		obs.Value = *t.Price
	default:
		return obs, fmt.Errorf("%w: tick has no value", condition.ErrMalformedObservation)
	}

	if obs.Timestamp.IsZero() {
		obs.Timestamp = fallbackTime
	}
	return obs, nil
}

// Consumer reads ticks from a Kafka topic. Offsets are committed once the
// observation has been handed to the engine, so a crash replays at most the
// uncommitted tail.
type Consumer struct {
	reader messageReader
	submit Submitter
	log    *slog.Logger
}

// NewConsumer creates a consumer-group reader on cfg.Topic.
func NewConsumer(cfg Config, s Submitter, log *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("ingest: brokers cannot be empty")
	}
	if cfg.Topic == "" || cfg.GroupID == "" {
		return nil, errors.New("ingest: topic and group id are required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     250 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})

	log.Info("tick consumer configured",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"group_id", cfg.GroupID,
	)
	return newConsumer(reader, s, log), nil
}

func newConsumer(r messageReader, s Submitter, log *slog.Logger) *Consumer {
	return &Consumer{reader: r, submit: s, log: log}
}

// Run consumes until ctx is cancelled or the engine stops accepting work.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("fetching tick", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchBackoff):
			}
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handle submits one message. Malformed ticks are committed and dropped.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	metrics.ObservationsTotal.WithLabelValues(sourceKafka).Inc()

	var tick Tick
	if err := json.Unmarshal(msg.Value, &tick); err != nil {
		metrics.ObservationsDroppedTotal.WithLabelValues("decode").Inc()
		c.log.Warn("dropping undecodable tick",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return c.commit(msg)
	}

	obs, err := tick.Observation(msg.Time)
	if err != nil {
		metrics.ObservationsDroppedTotal.WithLabelValues("malformed").Inc()
	} else {
		err = c.submit.Submit(ctx, obs)
	}
	switch {
	case errors.Is(err, condition.ErrMalformedObservation):
		c.log.Warn("dropping malformed tick", "offset", msg.Offset, "error", err)
	case err != nil:
		return fmt.Errorf("submitting tick at offset %d: %w", msg.Offset, err)
	}

	return c.commit(msg)
}

func (c *Consumer) commit(msg kafka.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("committing offset %d: %w", msg.Offset, err)
	}
	return nil
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
