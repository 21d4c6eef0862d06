// Package dispatch consumes delivery messages, sends each attempt through its
// channel, and keeps attempt and notification status current.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/internal/notify"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrStoreUnavailable is returned by Run when the store stops answering
// pings.
var ErrStoreUnavailable = errors.New("store unavailable")

const (
	defaultWorkers      = 10
	defaultPingInterval = 5 * time.Second
	defaultLateGrace    = 2 * time.Minute
	maxStatusRetries    = 5
	storeErrorDelay     = 5 * time.Second
)

// ChannelLimits bounds delivery on one channel.
type ChannelLimits struct {
	MaxAttempts int
	Timeout     time.Duration
}

var defaultLimits = ChannelLimits{MaxAttempts: 3, Timeout: 10 * time.Second}

// Dispatcher is the delivery worker pool.
type Dispatcher struct {
	store   store.Store
	queue   queue.Queue
	senders *notify.Registry

	limits       map[domain.Channel]ChannelLimits
	backoff      Backoff
	workers      int
	pingInterval time.Duration
	lateGrace    time.Duration

	locks   *stripedLock
	log     *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	running atomic.Bool
	late    sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithClock overrides the clock used for retry scheduling.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithBackoff sets the retry backoff.
func WithBackoff(b Backoff) Option {
	return func(d *Dispatcher) {
		d.backoff = b
	}
}

// WithChannelLimits sets max attempts and send timeout for one channel.
func WithChannelLimits(ch domain.Channel, l ChannelLimits) Option {
	return func(d *Dispatcher) {
		d.limits[ch] = l
	}
}

// WithPingInterval sets how often Run checks store connectivity.
func WithPingInterval(iv time.Duration) Option {
	return func(d *Dispatcher) {
		d.pingInterval = iv
	}
}

// WithLateResultGrace sets how long a send may keep running after its
// timeout so a late result can still be recorded.
func WithLateResultGrace(g time.Duration) Option {
	return func(d *Dispatcher) {
		d.lateGrace = g
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// New creates a Dispatcher.
func New(s store.Store, q queue.Queue, senders *notify.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:        s,
		queue:        q,
		senders:      senders,
		limits:       make(map[domain.Channel]ChannelLimits),
		backoff:      NewBackoff(2*time.Second, 5*time.Minute, 0.25),
		workers:      defaultWorkers,
		pingInterval: defaultPingInterval,
		lateGrace:    defaultLateGrace,
		locks:        newStripedLock(defaultStripes),
		log:          slog.Default(),
		tracer:       otel.Tracer("github.com/donaldgifford/price-alert-dispatcher/internal/dispatch"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Healthy reports whether the worker pool is consuming.
func (d *Dispatcher) Healthy() bool {
	return d.running.Load()
}

// Run consumes the queue until ctx is canceled or the store stops answering
// pings, in which case it returns ErrStoreUnavailable.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs, err := d.queue.Consume(ctx)
	if err != nil {
		return fmt.Errorf("consuming delivery queue: %w", err)
	}

	d.running.Store(true)
	metrics.DispatcherUp.Set(1)
	defer func() {
		d.running.Store(false)
		metrics.DispatcherUp.Set(0)
	}()

	d.log.Info("dispatcher started", "workers", d.workers)

	var pingErr error
	var pingDone sync.WaitGroup
	pingDone.Add(1)
	go func() {
		defer pingDone.Done()
		pingErr = d.watchStore(ctx)
		if pingErr != nil {
			cancel()
		}
	}()

	var wg sync.WaitGroup
	for range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx, msgs)
		}()
	}
	wg.Wait()
	cancel()
	pingDone.Wait()

	d.log.Info("dispatcher stopped")
	return pingErr
}

// Wait blocks until every late-result watcher has finished.
func (d *Dispatcher) Wait() {
	d.late.Wait()
}

func (d *Dispatcher) work(ctx context.Context, msgs <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			d.Handle(ctx, msg)
		}
	}
}

func (d *Dispatcher) watchStore(ctx context.Context) error {
	if d.pingInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(d.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.store.Ping(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.log.Error("store ping failed, stopping dispatcher", "error", err)
				return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
			}
		}
	}
}

func (d *Dispatcher) limitsFor(ch domain.Channel) ChannelLimits {
	l, ok := d.limits[ch]
	if !ok {
		return defaultLimits
	}
	if l.MaxAttempts <= 0 {
		l.MaxAttempts = defaultLimits.MaxAttempts
	}
	if l.Timeout <= 0 {
		l.Timeout = defaultLimits.Timeout
	}
	return l
}

// Handle processes one delivery message. Every path ends in exactly one Ack
// or Nack of msg.
func (d *Dispatcher) Handle(ctx context.Context, msg queue.Message) {
	ctx, span := d.tracer.Start(ctx, "dispatch.handle", trace.WithAttributes(
		attribute.String("attempt.id", msg.AttemptID),
		attribute.String("notification.id", msg.NotificationID),
		attribute.String("channel", string(msg.Channel)),
	))
	defer span.End()

	log := d.log.With("attempt_id", msg.AttemptID, "notification_id", msg.NotificationID)

	a, err := d.store.GetAttempt(ctx, msg.AttemptID)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug("attempt no longer exists, dropping message")
		d.ack(ctx, msg)
		return
	}
	if err != nil {
		span.RecordError(err)
		log.Error("loading attempt", "error", err)
		d.nack(ctx, msg, storeErrorDelay)
		return
	}

	if skip, reason := d.skip(a); skip {
		metrics.DuplicateDeliveriesTotal.Inc()
		log.Debug("skipping delivery", "reason", reason, "status", a.Status)
		span.SetAttributes(attribute.String("dispatch.skipped", reason))
		d.ack(ctx, msg)
		return
	}

	n, err := d.store.GetNotification(ctx, a.NotificationID)
	if errors.Is(err, store.ErrNotFound) {
		d.ack(ctx, msg)
		return
	}
	if err != nil {
		span.RecordError(err)
		log.Error("loading notification", "error", err)
		d.nack(ctx, msg, storeErrorDelay)
		return
	}

	sender, ok := d.senders.Get(a.Channel)
	if !ok {
		a.AttemptNumber++
		d.finish(ctx, msg, a, notify.Permanent("no sender registered for channel %s", a.Channel))
		return
	}

	// Claim the attempt. Losing the race means another worker owns it.
	a.Status = domain.AttemptInFlight
	a.AttemptNumber++
	a.NextRetryAt = nil
	if err := d.store.UpdateAttempt(ctx, a); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			metrics.DuplicateDeliveriesTotal.Inc()
			d.ack(ctx, msg)
			return
		}
		span.RecordError(err)
		log.Error("claiming attempt", "error", err)
		d.nack(ctx, msg, storeErrorDelay)
		return
	}
	if a.AttemptNumber == 1 {
		d.recompute(ctx, a.NotificationID)
	}

	span.SetAttributes(attribute.Int("attempt.number", a.AttemptNumber))

	out := d.send(ctx, sender, a, n)
	if out.Kind != notify.Succeeded {
		span.SetStatus(codes.Error, out.Reason)
	}
	d.finish(ctx, msg, a, out)
}

func (d *Dispatcher) skip(a *domain.DeliveryAttempt) (bool, string) {
	switch a.Status {
	case domain.AttemptSucceeded, domain.AttemptAbandoned:
		return true, "terminal"
	case domain.AttemptInFlight:
		return true, "in flight"
	case domain.AttemptPending, domain.AttemptFailed:
		if a.NextRetryAt != nil && a.NextRetryAt.After(d.now()) {
			return true, "early"
		}
	}
	return false, ""
}

func (d *Dispatcher) delivery(a *domain.DeliveryAttempt, n *domain.Notification) *notify.Delivery {
	return &notify.Delivery{
		AttemptID:      a.ID,
		NotificationID: n.ID,
		Channel:        a.Channel,
		Recipient:      a.Recipient,
		Title:          n.Title,
		Body:           n.Body,
		Category:       n.Category,
		Priority:       n.Priority,
		Data:           n.Data,
	}
}

// send runs the channel send bounded by the channel timeout. A send that
// outlives the timeout keeps running for the late-result grace period and its
// result is handed to watchLate.
func (d *Dispatcher) send(
	ctx context.Context,
	sender notify.Sender,
	a *domain.DeliveryAttempt,
	n *domain.Notification,
) notify.Outcome {
	limits := d.limitsFor(a.Channel)
	del := d.delivery(a, n)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), limits.Timeout+d.lateGrace)
	results := make(chan notify.Outcome, 1)

	start := time.Now()
	go func() {
		results <- sender.Send(sendCtx, del)
	}()

	timer := time.NewTimer(limits.Timeout)
	defer timer.Stop()

	select {
	case out := <-results:
		cancel()
		metrics.DeliveryDuration.WithLabelValues(string(a.Channel)).Observe(time.Since(start).Seconds())
		return out
	case <-timer.C:
		d.late.Add(1)
		go func() {
			defer d.late.Done()
			defer cancel()
			d.watchLate(a.ID, a.Channel, results)
		}()
		return notify.Transient("send timed out after %s", limits.Timeout)
	case <-ctx.Done():
		// Shutdown: the send goes on in the background and the message is
		// redelivered, so record nothing but the late result.
		d.late.Add(1)
		go func() {
			defer d.late.Done()
			defer cancel()
			d.watchLate(a.ID, a.Channel, results)
		}()
		return notify.Transient("dispatcher stopping: %v", ctx.Err())
	}
}

// watchLate applies a success that arrives after the send timed out, as long
// as the attempt has not reached a terminal state in the meantime.
func (d *Dispatcher) watchLate(attemptID string, ch domain.Channel, results <-chan notify.Outcome) {
	out := <-results
	if out.Kind != notify.Succeeded {
		metrics.LateResultsTotal.WithLabelValues("ignored").Inc()
		return
	}

	ctx := context.Background()
	for range maxStatusRetries {
		a, err := d.store.GetAttempt(ctx, attemptID)
		if err != nil {
			d.log.Warn("loading attempt for late result", "attempt_id", attemptID, "error", err)
			metrics.LateResultsTotal.WithLabelValues("discarded").Inc()
			return
		}
		if a.Status.Terminal() {
			metrics.LateResultsTotal.WithLabelValues("discarded").Inc()
			return
		}

		a.Status = domain.AttemptSucceeded
		a.LastError = ""
		a.NextRetryAt = nil
		err = d.store.UpdateAttempt(ctx, a)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			d.log.Warn("applying late result", "attempt_id", attemptID, "error", err)
			metrics.LateResultsTotal.WithLabelValues("discarded").Inc()
			return
		}

		metrics.LateResultsTotal.WithLabelValues("applied").Inc()
		metrics.DeliveryAttemptsTotal.WithLabelValues(string(ch), "late_success").Inc()
		d.log.Info("late delivery result applied", "attempt_id", attemptID, "channel", ch)
		d.recompute(ctx, a.NotificationID)
		return
	}
	metrics.LateResultsTotal.WithLabelValues("discarded").Inc()
}

// finish records the outcome of a send on a claimed attempt and settles the
// message.
func (d *Dispatcher) finish(ctx context.Context, msg queue.Message, a *domain.DeliveryAttempt, out notify.Outcome) {
	// The send already happened; record it even if shutdown has begun.
	ctx = context.WithoutCancel(ctx)
	limits := d.limitsFor(a.Channel)
	metrics.DeliveryAttemptsTotal.WithLabelValues(string(a.Channel), out.Kind.String()).Inc()

	log := d.log.With(
		"attempt_id", a.ID,
		"notification_id", a.NotificationID,
		"channel", a.Channel,
		"attempt", a.AttemptNumber,
	)

	var retryIn time.Duration
	switch {
	case out.Kind == notify.Succeeded:
		a.Status = domain.AttemptSucceeded
		a.LastError = ""
		a.NextRetryAt = nil
		log.Info("delivery succeeded")
	case out.Kind == notify.TransientFailure && a.AttemptNumber < limits.MaxAttempts:
		retryIn = d.backoff.Delay(a.AttemptNumber)
		next := d.now().Add(retryIn)
		a.Status = domain.AttemptPending
		a.LastError = out.Reason
		a.NextRetryAt = &next
		log.Warn("delivery failed, retrying", "reason", out.Reason, "retry_in", retryIn)
	default:
		a.Status = domain.AttemptAbandoned
		a.LastError = out.Reason
		a.NextRetryAt = nil
		log.Warn("delivery abandoned", "reason", out.Reason, "outcome", out.Kind.String())
	}

	if err := d.saveOutcome(ctx, a); err != nil {
		log.Error("recording delivery outcome", "error", err)
		d.nack(ctx, msg, storeErrorDelay)
		return
	}

	if a.Status == domain.AttemptPending {
		d.nack(ctx, msg, retryIn)
		return
	}
	d.ack(ctx, msg)
	d.recompute(ctx, a.NotificationID)
}

// saveOutcome writes a's new state. On a version conflict the row is
// reloaded; a terminal row wins over the outcome being recorded.
func (d *Dispatcher) saveOutcome(ctx context.Context, a *domain.DeliveryAttempt) error {
	want := *a
	for range maxStatusRetries {
		err := d.store.UpdateAttempt(ctx, a)
		if !errors.Is(err, store.ErrVersionConflict) {
			return err
		}

		cur, err := d.store.GetAttempt(ctx, a.ID)
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			*a = *cur
			return nil
		}
		want.Version = cur.Version
		*a = want
	}
	return fmt.Errorf("attempt %s: %w", a.ID, store.ErrVersionConflict)
}

// recompute derives the notification's status from its attempts and writes
// it under the notification's stripe lock with a version check.
func (d *Dispatcher) recompute(ctx context.Context, notificationID string) {
	mu := d.locks.get(notificationID)
	mu.Lock()
	defer mu.Unlock()

	for range maxStatusRetries {
		n, err := d.store.GetNotification(ctx, notificationID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				d.log.Error("loading notification for status", "notification_id", notificationID, "error", err)
			}
			return
		}
		if n.Status == domain.NotificationRead {
			return
		}

		attempts, err := d.store.ListAttempts(ctx, notificationID)
		if err != nil {
			d.log.Error("listing attempts for status", "notification_id", notificationID, "error", err)
			return
		}

		status := domain.AggregateStatus(attempts)
		if status == n.Status {
			return
		}

		n.Status = status
		n.FailureReason = failureReason(status, attempts)
		err = d.store.UpdateNotification(ctx, n)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			d.log.Error("updating notification status", "notification_id", notificationID, "error", err)
			return
		}

		if finalStatus(status) {
			metrics.NotificationStatusTotal.WithLabelValues(string(status)).Inc()
			d.log.Info("notification settled", "notification_id", notificationID, "status", status)
		}
		return
	}
	d.log.Warn("notification status update kept conflicting", "notification_id", notificationID)
}

func finalStatus(s domain.NotificationStatus) bool {
	switch s {
	case domain.NotificationDelivered, domain.NotificationPartiallyDelivered, domain.NotificationFailed:
		return true
	}
	return false
}

func failureReason(s domain.NotificationStatus, attempts []domain.DeliveryAttempt) string {
	if s != domain.NotificationFailed && s != domain.NotificationPartiallyDelivered {
		return ""
	}
	var parts []string
	for i := range attempts {
		if attempts[i].Status == domain.AttemptAbandoned {
			parts = append(parts, fmt.Sprintf("%s: %s", attempts[i].Channel, attempts[i].LastError))
		}
	}
	return strings.Join(parts, "; ")
}

func (d *Dispatcher) ack(ctx context.Context, msg queue.Message) {
	if err := d.queue.Ack(ctx, msg); err != nil {
		d.log.Warn("acking delivery message", "attempt_id", msg.AttemptID, "error", err)
	}
}

func (d *Dispatcher) nack(ctx context.Context, msg queue.Message, delay time.Duration) {
	if err := d.queue.Nack(ctx, msg, delay); err != nil {
		d.log.Warn("nacking delivery message", "attempt_id", msg.AttemptID, "error", err)
	}
}
