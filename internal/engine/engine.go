// Package engine evaluates observations against active alert rules and hands
// crossings to the notification factory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/price-alert-dispatcher/internal/factory"
	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/condition"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrNotRunning is returned by Submit before Start or after Stop.
var ErrNotRunning = errors.New("engine not running")

const (
	defaultPartitions  = 8
	defaultBufferSize  = 256
	defaultPctLookback = 15 * time.Minute
	maxStateRetries    = 5
)

// Creator turns a rule crossing into a notification.
type Creator interface {
	CreateFromTrigger(ctx context.Context, t factory.Trigger) (*factory.Result, error)
}

// Summary reports what evaluating one observation did.
type Summary struct {
	Rules         int `json:"rules"`
	Crossings     int `json:"crossings"`
	Notifications int `json:"notifications"`
	Suppressed    int `json:"suppressed"`
}

// Engine evaluates observations. Observations are partitioned by entity so
// all rules on one entity are evaluated by one goroutine, in arrival order.
type Engine struct {
	store   store.Store
	creator Creator
	window  *condition.Window
	log     *slog.Logger
	tracer  trace.Tracer

	partitions  int
	bufferSize  int
	pctLookback time.Duration

	mu      sync.RWMutex
	inputs  []chan domain.Observation
	running bool
	wg      sync.WaitGroup
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(s store.Store, c Creator, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:       s,
		creator:     c,
		log:         slog.Default(),
		tracer:      otel.Tracer("github.com/donaldgifford/price-alert-dispatcher/internal/engine"),
		partitions:  defaultPartitions,
		bufferSize:  defaultBufferSize,
		pctLookback: defaultPctLookback,
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.window = condition.NewWindow(eng.pctLookback)
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithPartitions sets the number of evaluation goroutines.
func WithPartitions(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.partitions = n
		}
	}
}

// WithBufferSize sets the per-partition observation buffer.
func WithBufferSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.bufferSize = n
		}
	}
}

// WithPctLookback sets the lookback used to find the pct_change baseline.
func WithPctLookback(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.pctLookback = d
		}
	}
}

// WithTracer sets the tracer used for evaluation spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// Start launches the partition goroutines. They run until Stop is called.
func (eng *Engine) Start(ctx context.Context) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.running {
		return
	}

	eng.inputs = make([]chan domain.Observation, eng.partitions)
	for i := range eng.inputs {
		ch := make(chan domain.Observation, eng.bufferSize)
		eng.inputs[i] = ch
		eng.wg.Add(1)
		go func() {
			defer eng.wg.Done()
			for obs := range ch {
				if _, err := eng.Evaluate(ctx, obs); err != nil {
					eng.log.Error("evaluating observation",
						"entity_id", obs.EntityID,
						"metric", obs.Metric,
						"error", err,
					)
				}
			}
		}()
	}
	eng.running = true
	eng.log.Info("evaluation engine started", "partitions", eng.partitions)
}

// Stop closes the partitions and waits for queued observations to drain.
func (eng *Engine) Stop() {
	eng.mu.Lock()
	if !eng.running {
		eng.mu.Unlock()
		return
	}
	eng.running = false
	for _, ch := range eng.inputs {
		close(ch)
	}
	eng.mu.Unlock()

	eng.wg.Wait()
	eng.log.Info("evaluation engine stopped")
}

// Submit validates obs and queues it on its entity's partition. It blocks
// while the partition buffer is full.
func (eng *Engine) Submit(ctx context.Context, obs domain.Observation) error {
	if err := Validate(obs); err != nil {
		metrics.ObservationsDroppedTotal.WithLabelValues("malformed").Inc()
		return err
	}

	eng.mu.RLock()
	defer eng.mu.RUnlock()
	if !eng.running {
		return ErrNotRunning
	}

	select {
	case eng.inputs[partition(obs.EntityID, len(eng.inputs))] <- obs:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Validate rejects observations that cannot be evaluated.
func Validate(obs domain.Observation) error {
	switch {
	case obs.EntityID == "":
		return fmt.Errorf("%w: entity id is required", condition.ErrMalformedObservation)
	case obs.Metric != domain.MetricPrice && obs.Metric != domain.MetricVolume:
		return fmt.Errorf("%w: unknown metric %q", condition.ErrMalformedObservation, obs.Metric)
	case math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0):
		return fmt.Errorf("%w: value %v for %s", condition.ErrMalformedObservation, obs.Value, obs.EntityID)
	case obs.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is required", condition.ErrMalformedObservation)
	}
	return nil
}

func partition(entityID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(n))
}

// Evaluate runs obs against every active rule on its entity and metric.
// Callers that evaluate concurrently must not share an entity; Submit
// guarantees that.
func (eng *Engine) Evaluate(ctx context.Context, obs domain.Observation) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := eng.tracer.Start(ctx, "engine.evaluate", trace.WithAttributes(
		attribute.String("entity.id", obs.EntityID),
		attribute.String("metric", string(obs.Metric)),
	))
	defer span.End()

	var sum Summary
	if err := Validate(obs); err != nil {
		metrics.ObservationsDroppedTotal.WithLabelValues("malformed").Inc()
		eng.log.Warn("dropping malformed observation", "error", err)
		return sum, nil
	}

	baseline := eng.window.Observe(obs)

	rules, err := eng.store.ListActiveRulesForEntity(ctx, obs.EntityID, obs.Metric)
	if err != nil {
		span.RecordError(err)
		return sum, fmt.Errorf("listing rules for %s: %w", obs.EntityID, err)
	}
	sum.Rules = len(rules)

	for i := range rules {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		eng.evaluateRule(ctx, &rules[i], obs, baseline, &sum)
	}

	span.SetAttributes(
		attribute.Int("rules", sum.Rules),
		attribute.Int("crossings", sum.Crossings),
	)
	return sum, nil
}

// evaluateRule persists the rule's new side with a version check and fires
// the factory on an upward crossing. A lost race reloads the rule and
// evaluates again, so only one evaluator ever acts on a given crossing.
func (eng *Engine) evaluateRule(
	ctx context.Context,
	rule *domain.AlertRule,
	obs domain.Observation,
	baseline *float64,
	sum *Summary,
) {
	log := eng.log.With("rule_id", rule.ID, "entity_id", obs.EntityID)

	for range maxStateRetries {
		res, err := condition.Evaluate(rule, obs, baseline)
		if err != nil {
			if errors.Is(err, condition.ErrMalformedObservation) {
				metrics.ObservationsDroppedTotal.WithLabelValues("malformed").Inc()
			}
			log.Warn("rule evaluation failed", "error", err)
			return
		}

		if res.Side != rule.LastState {
			err := eng.store.UpdateRuleState(ctx, rule, res.Side)
			if errors.Is(err, store.ErrVersionConflict) {
				metrics.RuleStateConflictsTotal.Inc()
				fresh, getErr := eng.store.GetRule(ctx, rule.ID)
				if getErr != nil || !fresh.Active {
					return
				}
				*rule = *fresh
				continue
			}
			if err != nil {
				log.Error("persisting rule state", "error", err)
				return
			}
		}

		if res.Crossing == condition.Unchanged {
			return
		}
		sum.Crossings++
		metrics.CrossingsTotal.WithLabelValues(string(res.Crossing)).Inc()

		if !res.Fires() {
			log.Debug("rule crossed down", "value", res.Value)
			return
		}

		log.Info("rule crossed up", "value", res.Value, "threshold", rule.Condition.Threshold)
		out, err := eng.creator.CreateFromTrigger(ctx, factory.Trigger{
			Rule:        rule,
			Observation: obs,
			Compared:    res.Value,
		})
		if err != nil {
			log.Error("creating notification", "error", err)
			return
		}
		if out.Notification != nil {
			sum.Notifications++
		} else {
			sum.Suppressed++
		}
		return
	}

	log.Warn("rule state kept conflicting, giving up on observation")
}
