// Package factory turns rule triggers and system events into persisted
// notifications with one delivery attempt per eligible channel.
package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/donaldgifford/price-alert-dispatcher/internal/dedup"
	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrInvalidPayload is returned when a system notification payload is
// rejected before anything is stored.
var ErrInvalidPayload = errors.New("invalid notification payload")

// Publisher is the subset of queue.Queue the factory needs.
type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// Trigger is a rule crossing handed over by the evaluation engine.
type Trigger struct {
	Rule        *domain.AlertRule
	Observation domain.Observation
	// Compared is the value the condition was evaluated against: the
	// observed value for threshold rules, the percent change for
	// pct_change rules.
	Compared float64
}

// Result describes what a create call produced. Notification is nil when
// every eligible channel was suppressed.
type Result struct {
	Notification *domain.Notification
	Attempts     []domain.DeliveryAttempt
	Suppressed   []domain.Channel
	// Unpublished counts attempts whose queue message could not be sent.
	// They stay pending until stale recovery republishes them.
	Unpublished int
}

// Factory builds notifications.
type Factory struct {
	store     store.Store
	publisher Publisher
	guard     dedup.Guard
	templates *Templates
	enabled   []domain.Channel
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		f.log = l
	}
}

// WithClock overrides the clock used for observation timestamps and
// suppression records.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

// New creates a Factory delivering only over the enabled channels.
func New(
	s store.Store,
	p Publisher,
	g dedup.Guard,
	enabled []domain.Channel,
	opts ...Option,
) (*Factory, error) {
	tmpl, err := NewTemplates()
	if err != nil {
		return nil, err
	}

	f := &Factory{
		store:     s,
		publisher: p,
		guard:     g,
		templates: tmpl,
		enabled:   slices.Clone(enabled),
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CreateFromTrigger creates the notification for a rule crossing.
func (f *Factory) CreateFromTrigger(ctx context.Context, t Trigger) (*Result, error) {
	if t.Rule == nil {
		return nil, errors.New("trigger has no rule")
	}
	rule := t.Rule
	obs := t.Observation

	category := rule.Category
	if category == "" {
		category = domain.CategoryPriceAlert
	}

	title, body, err := f.templates.Render(category, TemplateData{
		EntityID:   rule.EntityID,
		Metric:     rule.Metric,
		Operator:   rule.Condition.Operator,
		Threshold:  rule.Condition.Threshold,
		Value:      obs.Value,
		Compared:   t.Compared,
		ObservedAt: obs.Timestamp,
	})
	if err != nil {
		return nil, err
	}

	ruleID := rule.ID
	n := &domain.Notification{
		OwnerID:  rule.OwnerID,
		RuleID:   &ruleID,
		Title:    title,
		Body:     body,
		Category: category,
		Priority: domain.PriorityHigh,
		Data: map[string]any{
			"entity_id":   rule.EntityID,
			"metric":      string(rule.Metric),
			"operator":    string(rule.Condition.Operator),
			"threshold":   rule.Condition.Threshold,
			"value":       obs.Value,
			"compared":    t.Compared,
			"observed_at": obs.Timestamp.UTC().Format(time.RFC3339Nano),
		},
		Status: domain.NotificationCreated,
	}

	return f.create(ctx, n, nil)
}

// CreateSystemNotification creates a notification that is not tied to a
// rule. A non-empty payload.Channels narrows the owner's eligible channels.
func (f *Factory) CreateSystemNotification(
	ctx context.Context,
	ownerID string,
	payload domain.SystemPayload,
) (*Result, error) {
	if err := validatePayload(ownerID, &payload); err != nil {
		return nil, err
	}

	title, body, err := f.templates.Render(payload.Category, TemplateData{
		Title: payload.Title,
		Body:  payload.Body,
	})
	if err != nil {
		return nil, err
	}

	n := &domain.Notification{
		OwnerID:  ownerID,
		Title:    title,
		Body:     body,
		Category: payload.Category,
		Priority: payload.Priority,
		Data:     payload.Data,
		Status:   domain.NotificationCreated,
	}

	return f.create(ctx, n, payload.Channels)
}

func validatePayload(ownerID string, p *domain.SystemPayload) error {
	var errs []error
	if ownerID == "" {
		errs = append(errs, errors.New("owner id is required"))
	}
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}

	if p.Category == "" {
		p.Category = domain.CategorySystem
	}
	switch p.Category {
	case domain.CategorySystem, domain.CategoryTask, domain.CategoryError,
		domain.CategoryInfo, domain.CategoryWarning:
	default:
		errs = append(errs, fmt.Errorf("category %q is not a system category", p.Category))
	}

	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
		if p.Category == domain.CategoryError {
			p.Priority = domain.PriorityHigh
		}
	}
	switch p.Priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
	default:
		errs = append(errs, fmt.Errorf("priority %q is not valid", p.Priority))
	}

	for _, ch := range p.Channels {
		if !ch.Valid() {
			errs = append(errs, fmt.Errorf("channel %q is not supported", ch))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, errors.Join(errs...))
	}
	return nil
}

// create resolves channels, applies the dedup guard, stores the
// notification with its attempts, and publishes one message per attempt.
func (f *Factory) create(
	ctx context.Context,
	n *domain.Notification,
	requested []domain.Channel,
) (*Result, error) {
	prefs, err := f.store.GetChannelPreferences(ctx, n.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("loading channel preferences for %s: %w", n.OwnerID, err)
	}

	channels := f.eligible(prefs, requested)
	if len(channels) == 0 {
		return f.createFailed(ctx, n, prefs, requested)
	}

	allowed, suppressed := f.applyGuard(ctx, n, channels)
	if len(allowed) == 0 {
		f.log.Info("notification suppressed on every channel",
			"owner_id", n.OwnerID,
			"category", n.Category,
			"channels", suppressed,
		)
		return &Result{Suppressed: suppressed}, nil
	}

	n.Channels = allowed
	attempts := make([]domain.DeliveryAttempt, 0, len(allowed))
	for _, ch := range allowed {
		addr, _ := prefs.Address(ch)
		attempts = append(attempts, domain.DeliveryAttempt{
			Channel:   ch,
			Recipient: addr,
			Status:    domain.AttemptPending,
		})
	}

	if err := f.store.CreateNotification(ctx, n, attempts); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(n.Category)).Inc()

	res := &Result{Notification: n, Attempts: attempts, Suppressed: suppressed}
	res.Unpublished = f.publish(ctx, n, attempts)
	if res.Unpublished > 0 {
		return res, nil
	}

	n.Status = domain.NotificationQueued
	if err := f.store.UpdateNotification(ctx, n); err != nil {
		// A dispatcher worker may already have moved the status on.
		if !errors.Is(err, store.ErrVersionConflict) {
			f.log.Warn("marking notification queued",
				"notification_id", n.ID,
				"error", err,
			)
		}
		n.Status = domain.NotificationCreated
	}

	f.log.Info("notification created",
		"notification_id", n.ID,
		"owner_id", n.OwnerID,
		"category", n.Category,
		"channels", n.Channels,
	)
	return res, nil
}

// eligible intersects the owner's enabled channels with the globally
// enabled ones, and with requested when it is not empty.
func (f *Factory) eligible(prefs *domain.ChannelPreferences, requested []domain.Channel) []domain.Channel {
	var out []domain.Channel
	for _, ch := range domain.AllChannels {
		if !slices.Contains(f.enabled, ch) {
			continue
		}
		if _, ok := prefs.Address(ch); !ok {
			continue
		}
		if len(requested) > 0 && !slices.Contains(requested, ch) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (f *Factory) createFailed(
	ctx context.Context,
	n *domain.Notification,
	prefs *domain.ChannelPreferences,
	requested []domain.Channel,
) (*Result, error) {
	n.Status = domain.NotificationFailed
	n.Channels = nil
	n.FailureReason = fmt.Sprintf(
		"no eligible delivery channel: owner enabled %v, service enabled %v",
		prefs.Enabled(), f.enabled,
	)
	if len(requested) > 0 {
		n.FailureReason += fmt.Sprintf(", requested %v", requested)
	}

	if err := f.store.CreateNotification(ctx, n, nil); err != nil {
		return nil, fmt.Errorf("creating failed notification: %w", err)
	}
	metrics.NotificationsFailedConfigTotal.Inc()

	f.log.Warn("notification failed: no eligible channel",
		"notification_id", n.ID,
		"owner_id", n.OwnerID,
		"reason", n.FailureReason,
	)
	return &Result{Notification: n}, nil
}

// applyGuard splits channels into those the dedup guard allows and those it
// suppresses. A guard error lets the channel through.
func (f *Factory) applyGuard(
	ctx context.Context,
	n *domain.Notification,
	channels []domain.Channel,
) (allowed, suppressed []domain.Channel) {
	for _, ch := range channels {
		key := dedup.KeyFor(n.OwnerID, n.RuleID, n.Category, ch)
		ok, err := f.guard.Allow(ctx, key)
		if err != nil {
			f.log.Warn("dedup guard unavailable, allowing",
				"key", key.String(),
				"error", err,
			)
			ok = true
		}
		if ok {
			allowed = append(allowed, ch)
			continue
		}

		suppressed = append(suppressed, ch)
		metrics.SuppressedTotal.WithLabelValues(string(ch)).Inc()

		rec := &domain.SuppressedTrigger{
			OwnerID:   n.OwnerID,
			RuleID:    n.RuleID,
			Category:  n.Category,
			Channel:   ch,
			Reason:    "dedup window",
			CreatedAt: f.now(),
		}
		if err := f.store.RecordSuppression(ctx, rec); err != nil {
			f.log.Warn("recording suppression",
				"key", key.String(),
				"error", err,
			)
		}
	}
	return allowed, suppressed
}

// publish enqueues one message per attempt and returns how many failed.
func (f *Factory) publish(
	ctx context.Context,
	n *domain.Notification,
	attempts []domain.DeliveryAttempt,
) int {
	var failed int
	for i := range attempts {
		a := &attempts[i]
		msg := queue.Message{
			AttemptID:      a.ID,
			NotificationID: n.ID,
			Channel:        a.Channel,
			EnqueuedAt:     f.now(),
		}
		if err := f.publisher.Publish(ctx, msg); err != nil {
			failed++
			f.log.Error("publishing delivery attempt",
				"attempt_id", a.ID,
				"notification_id", n.ID,
				"channel", a.Channel,
				"error", err,
			)
		}
	}
	return failed
}
