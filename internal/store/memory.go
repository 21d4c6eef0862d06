package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// MemoryStore implements Store in process memory. Rows are copied on the way
// in and out so callers never share state with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	rules         map[string]domain.AlertRule
	prefs         map[string]domain.ChannelPreferences
	notifications map[string]domain.Notification
	attempts      map[string]domain.DeliveryAttempt
	suppressions  []domain.SuppressedTrigger

	nowFunc func() time.Time
	pingErr error
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = now
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		rules:         make(map[string]domain.AlertRule),
		prefs:         make(map[string]domain.ChannelPreferences),
		notifications: make(map[string]domain.Notification),
		attempts:      make(map[string]domain.DeliveryAttempt),
		nowFunc:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPingError makes Ping return err. Used to simulate lost connectivity.
func (s *MemoryStore) SetPingError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Ping reports the simulated connection state.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pingErr
}

// Migrate is a no-op for the memory store.
func (*MemoryStore) Migrate(_ context.Context) error { return nil }

// CreateRule stores a new rule with version 1.
func (s *MemoryStore) CreateRule(_ context.Context, r *domain.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	r.ID = uuid.NewString()
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rules[r.ID] = *r
	return nil
}

// GetRule returns a rule by ID.
func (s *MemoryStore) GetRule(_ context.Context, id string) (*domain.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

// ListRules returns rules ordered by creation time, newest first.
func (s *MemoryStore) ListRules(_ context.Context, q RuleQuery) ([]domain.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AlertRule
	for _, r := range s.rules {
		if q.OwnerID != "" && r.OwnerID != q.OwnerID {
			continue
		}
		if q.ActiveOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, q.Limit, q.Offset), nil
}

// ListActiveRulesForEntity returns active rules watching entityID's metric.
func (s *MemoryStore) ListActiveRulesForEntity(
	_ context.Context,
	entityID string,
	metric domain.Metric,
) ([]domain.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AlertRule
	for _, r := range s.rules {
		if r.Active && r.EntityID == entityID && r.Metric == metric {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateRule replaces a rule's mutable fields.
func (s *MemoryStore) UpdateRule(_ context.Context, r *domain.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rules[r.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != r.Version {
		return ErrVersionConflict
	}

	r.Version++
	r.UpdatedAt = s.nowFunc()
	r.CreatedAt = cur.CreatedAt
	s.rules[r.ID] = *r
	return nil
}

// UpdateRuleState persists the evaluator's side for a rule.
func (s *MemoryStore) UpdateRuleState(_ context.Context, r *domain.AlertRule, state domain.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rules[r.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != r.Version {
		return ErrVersionConflict
	}

	cur.LastState = state
	cur.Version++
	cur.UpdatedAt = s.nowFunc()
	s.rules[r.ID] = cur

	r.LastState = state
	r.Version = cur.Version
	r.UpdatedAt = cur.UpdatedAt
	return nil
}

// DeleteRule removes a rule.
func (s *MemoryStore) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return ErrNotFound
	}
	delete(s.rules, id)
	return nil
}

// GetChannelPreferences returns an owner's contacts. Owners without stored
// preferences get an empty set.
func (s *MemoryStore) GetChannelPreferences(_ context.Context, ownerID string) (*domain.ChannelPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[ownerID]
	if !ok {
		return &domain.ChannelPreferences{OwnerID: ownerID}, nil
	}
	p.Contacts = slices.Clone(p.Contacts)
	return &p, nil
}

// SetChannelPreferences replaces an owner's contacts.
func (s *MemoryStore) SetChannelPreferences(_ context.Context, prefs *domain.ChannelPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *prefs
	p.Contacts = slices.Clone(prefs.Contacts)
	s.prefs[prefs.OwnerID] = p
	return nil
}

// CreateNotification stores a notification and its attempts together.
func (s *MemoryStore) CreateNotification(
	_ context.Context,
	n *domain.Notification,
	attempts []domain.DeliveryAttempt,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	n.ID = uuid.NewString()
	n.Version = 1
	n.CreatedAt = now
	n.UpdatedAt = now
	s.notifications[n.ID] = cloneNotification(*n)

	for i := range attempts {
		a := &attempts[i]
		a.ID = uuid.NewString()
		a.NotificationID = n.ID
		a.Version = 1
		a.CreatedAt = now
		a.UpdatedAt = now
		s.attempts[a.ID] = *a
	}
	return nil
}

// GetNotification returns a notification by ID.
func (s *MemoryStore) GetNotification(_ context.Context, id string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	n = cloneNotification(n)
	return &n, nil
}

// ListNotifications returns an owner's notifications, newest first, and the
// total count before paging.
func (s *MemoryStore) ListNotifications(
	_ context.Context,
	ownerID string,
	f domain.NotificationFilter,
) ([]domain.Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Notification
	for _, n := range s.notifications {
		if n.OwnerID != ownerID {
			continue
		}
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.UnreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

// UpdateNotification persists status, failure reason, and read time.
func (s *MemoryStore) UpdateNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.notifications[n.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != n.Version {
		return ErrVersionConflict
	}

	cur.Status = n.Status
	cur.FailureReason = n.FailureReason
	cur.ReadAt = n.ReadAt
	cur.Version++
	cur.UpdatedAt = s.nowFunc()
	s.notifications[n.ID] = cur

	n.Version = cur.Version
	n.UpdatedAt = cur.UpdatedAt
	return nil
}

// DeleteNotification removes a notification and its attempts.
func (s *MemoryStore) DeleteNotification(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok {
		return ErrNotFound
	}
	delete(s.notifications, id)
	maps.DeleteFunc(s.attempts, func(_ string, a domain.DeliveryAttempt) bool {
		return a.NotificationID == id
	})
	return nil
}

// GetAttempt returns a delivery attempt by ID.
func (s *MemoryStore) GetAttempt(_ context.Context, id string) (*domain.DeliveryAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// ListAttempts returns a notification's attempts ordered by channel.
func (s *MemoryStore) ListAttempts(_ context.Context, notificationID string) ([]domain.DeliveryAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DeliveryAttempt
	for _, a := range s.attempts {
		if a.NotificationID == notificationID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

// UpdateAttempt persists an attempt's status, counters, and retry schedule.
func (s *MemoryStore) UpdateAttempt(_ context.Context, a *domain.DeliveryAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.attempts[a.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != a.Version {
		return ErrVersionConflict
	}

	a.Version++
	a.UpdatedAt = s.nowFunc()
	a.CreatedAt = cur.CreatedAt
	s.attempts[a.ID] = *a
	return nil
}

// ListStaleAttempts returns non-terminal attempts that have made no progress
// since cutoff: pending attempts whose retry time (or last update) is before
// cutoff and in-flight attempts last updated before cutoff.
func (s *MemoryStore) ListStaleAttempts(
	_ context.Context,
	cutoff time.Time,
	limit int,
) ([]domain.DeliveryAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DeliveryAttempt
	for _, a := range s.attempts {
		if isStale(a, cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func isStale(a domain.DeliveryAttempt, cutoff time.Time) bool {
	switch a.Status {
	case domain.AttemptPending:
		ref := a.UpdatedAt
		if a.NextRetryAt != nil {
			ref = *a.NextRetryAt
		}
		return ref.Before(cutoff)
	case domain.AttemptInFlight:
		return a.UpdatedAt.Before(cutoff)
	default:
		return false
	}
}

// RecordSuppression appends to the suppression log.
func (s *MemoryStore) RecordSuppression(_ context.Context, st *domain.SuppressedTrigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.ID = uuid.NewString()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = s.nowFunc()
	}
	s.suppressions = append(s.suppressions, *st)
	return nil
}

// ListSuppressions returns an owner's most recent suppressions.
func (s *MemoryStore) ListSuppressions(
	_ context.Context,
	ownerID string,
	limit int,
) ([]domain.SuppressedTrigger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SuppressedTrigger
	for i := len(s.suppressions) - 1; i >= 0; i-- {
		if s.suppressions[i].OwnerID == ownerID {
			out = append(out, s.suppressions[i])
		}
	}
	return page(out, limit, 0), nil
}

func cloneNotification(n domain.Notification) domain.Notification {
	n.Channels = slices.Clone(n.Channels)
	n.Data = maps.Clone(n.Data)
	return n
}

func page[T any](rows []T, limit, offset int) []T {
	limit = clampLimit(limit)
	offset = max(offset, 0)
	if offset >= len(rows) {
		return nil
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end]
}
