// Package tracker exposes notification status to owners, including the
// per-channel attempts behind each notification and read receipts.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/logger"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrNotYetDelivered is returned by MarkRead while no channel has delivered.
var ErrNotYetDelivered = errors.New("notification not yet delivered")

const markReadRetries = 5

// Reader serves the read side of notification tracking. store.Store and
// store.ReplicaReader both satisfy it.
type Reader interface {
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, ownerID string, f domain.NotificationFilter) ([]domain.Notification, int, error)
	ListAttempts(ctx context.Context, notificationID string) ([]domain.DeliveryAttempt, error)
}

// View is a notification together with its delivery attempts.
type View struct {
	domain.Notification
	Attempts []domain.DeliveryAttempt `json:"attempts"`
}

// Page is one page of an owner's notifications.
type Page struct {
	Notifications []domain.Notification
	Total         int
	Limit         int
	Offset        int
}

// Tracker reads and updates notification status.
type Tracker struct {
	store  store.Store
	reader Reader
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithReader routes lookups and listings to r, typically a read replica.
// MarkRead and Delete always use the primary store.
func WithReader(r Reader) Option {
	return func(t *Tracker) {
		if r != nil {
			t.reader = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithClock overrides the time source for read receipts.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker backed by s.
func New(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		reader: s,
		log:    logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns a notification and its attempts.
func (t *Tracker) Get(ctx context.Context, id string) (*View, error) {
	n, err := t.reader.GetNotification(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting notification %s: %w", id, err)
	}

	attempts, err := t.reader.ListAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing attempts for %s: %w", id, err)
	}

	return &View{Notification: *n, Attempts: attempts}, nil
}

// ListForOwner returns an owner's notifications, newest first.
func (t *Tracker) ListForOwner(ctx context.Context, ownerID string, f domain.NotificationFilter) (*Page, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	f.Limit = normalizeLimit(f.Limit)
	f.Offset = max(f.Offset, 0)

	list, total, err := t.reader.ListNotifications(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for %s: %w", ownerID, err)
	}
	if list == nil {
		list = []domain.Notification{}
	}

	return &Page{Notifications: list, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// MarkRead records that the owner has seen a delivered notification.
// Marking an already read notification returns it unchanged.
func (t *Tracker) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	for range markReadRetries {
		n, err := t.store.GetNotification(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("getting notification %s: %w", id, err)
		}

		if n.Status == domain.NotificationRead {
			return n, nil
		}
		if !domain.Readable(n.Status) {
			return nil, fmt.Errorf("%w: status is %s", ErrNotYetDelivered, n.Status)
		}

		readAt := t.now().UTC()
		n.Status = domain.NotificationRead
		n.ReadAt = &readAt

		err = t.store.UpdateNotification(ctx, n)
		if errors.Is(err, store.ErrVersionConflict) {
			t.log.Debug("read receipt raced a status update, retrying", "notification_id", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("marking notification %s read: %w", id, err)
		}
		return n, nil
	}
	return nil, fmt.Errorf("marking notification %s read: %w", id, store.ErrVersionConflict)
}

// Delete removes a notification and its attempts.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.store.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	t.log.Info("notification deleted", "notification_id", id)
	return nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 500:
		return 500
	default:
		return limit
	}
}
