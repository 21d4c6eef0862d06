// Package store defines the datastore abstraction for price-alert-dispatcher.
// All business logic depends on the Store interface, never on concrete
// implementations. MemoryStore backs unit tests and single-node runs;
// PostgresStore backs production.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when an optimistic update loses a race.
	ErrVersionConflict = errors.New("version conflict")
)

// RuleQuery defines optional filters for listing rules.
type RuleQuery struct {
	OwnerID    string
	ActiveOnly bool
	Limit      int // default 50
	Offset     int
}

// Store defines all data access operations for price-alert-dispatcher.
//
// Update methods that take a versioned row compare-and-set on its Version
// field and return ErrVersionConflict when it no longer matches. On success
// the row's Version and UpdatedAt are advanced in place.
type Store interface {
	// Rules
	CreateRule(ctx context.Context, r *domain.AlertRule) error
	GetRule(ctx context.Context, id string) (*domain.AlertRule, error)
	ListRules(ctx context.Context, q RuleQuery) ([]domain.AlertRule, error)
	ListActiveRulesForEntity(ctx context.Context, entityID string, metric domain.Metric) ([]domain.AlertRule, error)
	UpdateRule(ctx context.Context, r *domain.AlertRule) error
	UpdateRuleState(ctx context.Context, r *domain.AlertRule, state domain.Side) error
	DeleteRule(ctx context.Context, id string) error

	// Channel preferences
	GetChannelPreferences(ctx context.Context, ownerID string) (*domain.ChannelPreferences, error)
	SetChannelPreferences(ctx context.Context, prefs *domain.ChannelPreferences) error

	// Notifications
	CreateNotification(ctx context.Context, n *domain.Notification, attempts []domain.DeliveryAttempt) error
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, ownerID string, f domain.NotificationFilter) ([]domain.Notification, int, error)
	UpdateNotification(ctx context.Context, n *domain.Notification) error
	DeleteNotification(ctx context.Context, id string) error

	// Delivery attempts
	GetAttempt(ctx context.Context, id string) (*domain.DeliveryAttempt, error)
	ListAttempts(ctx context.Context, notificationID string) ([]domain.DeliveryAttempt, error)
	UpdateAttempt(ctx context.Context, a *domain.DeliveryAttempt) error
	ListStaleAttempts(ctx context.Context, cutoff time.Time, limit int) ([]domain.DeliveryAttempt, error)

	// Suppressions
	RecordSuppression(ctx context.Context, s *domain.SuppressedTrigger) error
	ListSuppressions(ctx context.Context, ownerID string, limit int) ([]domain.SuppressedTrigger, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
