package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ReplicaReader serves notification reads from a PostgreSQL read replica.
// Rows may lag the primary; writes always go through Store.
type ReplicaReader struct {
	db *sql.DB
}

// OpenReplica connects to the replica at dsn with the lib/pq driver.
func OpenReplica(ctx context.Context, dsn string) (*ReplicaReader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening replica: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging replica: %w", err)
	}
	return NewReplicaReader(db), nil
}

// NewReplicaReader wraps an existing connection pool.
func NewReplicaReader(db *sql.DB) *ReplicaReader {
	return &ReplicaReader{db: db}
}

// Close closes the underlying pool.
func (r *ReplicaReader) Close() error {
	return r.db.Close()
}

// Ping checks replica connectivity.
func (r *ReplicaReader) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetNotification returns a notification by ID.
func (r *ReplicaReader) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := scanReplicaNotification(r.db.QueryRowContext(ctx, queryGetNotification, id), n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification from replica: %w", err)
	}
	return n, nil
}

// ListNotifications returns an owner's notifications and the total count.
func (r *ReplicaReader) ListNotifications(
	ctx context.Context,
	ownerID string,
	f domain.NotificationFilter,
) ([]domain.Notification, int, error) {
	dataSQL, countSQL, args := notificationsSQL(ownerID, f)

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting notifications on replica: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying notifications on replica: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := scanReplicaNotification(rows, &n); err != nil {
			return nil, 0, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// ListAttempts returns a notification's attempts ordered by channel.
func (r *ReplicaReader) ListAttempts(ctx context.Context, notificationID string) ([]domain.DeliveryAttempt, error) {
	rows, err := r.db.QueryContext(ctx, queryListAttempts, notificationID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts on replica: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryAttempt
	for rows.Next() {
		var a domain.DeliveryAttempt
		if err := scanAttempt(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// scanReplicaNotification mirrors scanNotification for database/sql, which
// needs pq.Array for the channels column.
func scanReplicaNotification(row scannable, n *domain.Notification) error {
	var (
		data     []byte
		channels pq.StringArray
	)
	if err := row.Scan(
		&n.ID, &n.OwnerID, &n.RuleID, &n.Title, &n.Body, &n.Category, &n.Priority,
		&data, &channels, &n.Status, &n.FailureReason,
		&n.Version, &n.CreatedAt, &n.UpdatedAt, &n.ReadAt,
	); err != nil {
		return err
	}

	n.Channels = make([]domain.Channel, len(channels))
	for i, c := range channels {
		n.Channels[i] = domain.Channel(c)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return fmt.Errorf("unmarshaling notification data: %w", err)
		}
	}
	return nil
}
