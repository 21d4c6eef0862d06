package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, poolSize int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	cfg.MaxConns = int32(poolSize) //nolint:gosec // bounded by config validation

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// CreateRule inserts a new alert rule.
func (s *PostgresStore) CreateRule(ctx context.Context, r *domain.AlertRule) error {
	r.ID = uuid.NewString()
	args := pgx.NamedArgs{
		"id":        r.ID,
		"owner_id":  r.OwnerID,
		"entity_id": r.EntityID,
		"metric":    string(r.Metric),
		"operator":  string(r.Condition.Operator),
		"threshold": r.Condition.Threshold,
		"category":  string(r.Category),
		"active":    r.Active,
	}

	if err := s.pool.QueryRow(ctx, queryCreateRule, args).Scan(
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}
	r.LastState = domain.SideUnset
	return nil
}

// GetRule retrieves a rule by its ID.
func (s *PostgresStore) GetRule(ctx context.Context, id string) (*domain.AlertRule, error) {
	r := &domain.AlertRule{}
	if err := scanRule(s.pool.QueryRow(ctx, queryGetRule, id), r); err != nil {
		return nil, notFound(err, "getting rule")
	}
	return r, nil
}

// ListRules returns rules matching q, newest first.
func (s *PostgresStore) ListRules(ctx context.Context, q RuleQuery) ([]domain.AlertRule, error) {
	return s.queryRules(ctx, queryListRules, q.OwnerID, q.ActiveOnly, clampLimit(q.Limit), max(q.Offset, 0))
}

// ListActiveRulesForEntity returns the active rules for an entity's metric.
func (s *PostgresStore) ListActiveRulesForEntity(
	ctx context.Context,
	entityID string,
	metric domain.Metric,
) ([]domain.AlertRule, error) {
	return s.queryRules(ctx, queryListActiveRulesForEntity, entityID, string(metric))
}

// UpdateRule updates a rule's definition, compare-and-set on its version.
func (s *PostgresStore) UpdateRule(ctx context.Context, r *domain.AlertRule) error {
	args := pgx.NamedArgs{
		"id":         r.ID,
		"entity_id":  r.EntityID,
		"metric":     string(r.Metric),
		"operator":   string(r.Condition.Operator),
		"threshold":  r.Condition.Threshold,
		"category":   string(r.Category),
		"active":     r.Active,
		"last_state": string(r.LastState),
		"version":    r.Version,
	}

	err := s.pool.QueryRow(ctx, queryUpdateRule, args).Scan(&r.Version, &r.UpdatedAt)
	return s.casResult(ctx, err, queryRuleExists, r.ID, "updating rule")
}

// UpdateRuleState persists the evaluator's side for a rule.
func (s *PostgresStore) UpdateRuleState(ctx context.Context, r *domain.AlertRule, state domain.Side) error {
	err := s.pool.QueryRow(ctx, queryUpdateRuleState, r.ID, string(state), r.Version).
		Scan(&r.Version, &r.UpdatedAt)
	if err := s.casResult(ctx, err, queryRuleExists, r.ID, "updating rule state"); err != nil {
		return err
	}
	r.LastState = state
	return nil
}

// DeleteRule removes a rule by its ID.
func (s *PostgresStore) DeleteRule(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteRule, id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetChannelPreferences returns an owner's channel contacts.
func (s *PostgresStore) GetChannelPreferences(ctx context.Context, ownerID string) (*domain.ChannelPreferences, error) {
	rows, err := s.pool.Query(ctx, queryGetChannelContacts, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying channel contacts: %w", err)
	}
	defer rows.Close()

	prefs := &domain.ChannelPreferences{OwnerID: ownerID}
	for rows.Next() {
		var c domain.ChannelContact
		if err := rows.Scan(&c.Channel, &c.Address, &c.Enabled); err != nil {
			return nil, fmt.Errorf("scanning channel contact: %w", err)
		}
		prefs.Contacts = append(prefs.Contacts, c)
	}
	return prefs, rows.Err()
}

// SetChannelPreferences replaces an owner's channel contacts in one
// transaction.
func (s *PostgresStore) SetChannelPreferences(ctx context.Context, prefs *domain.ChannelPreferences) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryDeleteChannelContacts, prefs.OwnerID); err != nil {
			return fmt.Errorf("clearing channel contacts: %w", err)
		}
		for _, c := range prefs.Contacts {
			if _, err := tx.Exec(ctx, queryInsertChannelContact,
				prefs.OwnerID, string(c.Channel), c.Address, c.Enabled,
			); err != nil {
				return fmt.Errorf("inserting %s contact: %w", c.Channel, err)
			}
		}
		return nil
	})
}

// CreateNotification inserts a notification and all of its delivery
// attempts in a single transaction.
func (s *PostgresStore) CreateNotification(
	ctx context.Context,
	n *domain.Notification,
	attempts []domain.DeliveryAttempt,
) error {
	data, err := marshalData(n.Data)
	if err != nil {
		return err
	}

	n.ID = uuid.NewString()
	args := pgx.NamedArgs{
		"id":             n.ID,
		"owner_id":       n.OwnerID,
		"rule_id":        n.RuleID,
		"title":          n.Title,
		"body":           n.Body,
		"category":       string(n.Category),
		"priority":       string(n.Priority),
		"data":           data,
		"channels":       channelStrings(n.Channels),
		"status":         string(n.Status),
		"failure_reason": n.FailureReason,
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, queryCreateNotification, args).Scan(
			&n.Version, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return fmt.Errorf("inserting notification: %w", err)
		}

		for i := range attempts {
			a := &attempts[i]
			a.ID = uuid.NewString()
			a.NotificationID = n.ID
			if err := tx.QueryRow(ctx, queryCreateAttempt,
				a.ID, a.NotificationID, string(a.Channel), a.Recipient, a.AttemptNumber, string(a.Status),
			).Scan(&a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
				return fmt.Errorf("inserting %s attempt: %w", a.Channel, err)
			}
		}
		return nil
	})
}

// GetNotification retrieves a notification by its ID.
func (s *PostgresStore) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	n := &domain.Notification{}
	if err := scanNotification(s.pool.QueryRow(ctx, queryGetNotification, id), n); err != nil {
		return nil, notFound(err, "getting notification")
	}
	return n, nil
}

// ListNotifications returns an owner's notifications and the total count.
func (s *PostgresStore) ListNotifications(
	ctx context.Context,
	ownerID string,
	f domain.NotificationFilter,
) ([]domain.Notification, int, error) {
	dataSQL, countSQL, args := notificationsSQL(ownerID, f)

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting notifications: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := scanNotification(rows, &n); err != nil {
			return nil, 0, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// UpdateNotification persists status, failure reason, and read time,
// compare-and-set on version.
func (s *PostgresStore) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	err := s.pool.QueryRow(ctx, queryUpdateNotification,
		n.ID, string(n.Status), n.FailureReason, n.ReadAt, n.Version,
	).Scan(&n.Version, &n.UpdatedAt)
	return s.casResult(ctx, err, queryNotificationExists, n.ID, "updating notification")
}

// DeleteNotification removes a notification; attempts cascade.
func (s *PostgresStore) DeleteNotification(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteNotification, id)
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAttempt retrieves a delivery attempt by its ID.
func (s *PostgresStore) GetAttempt(ctx context.Context, id string) (*domain.DeliveryAttempt, error) {
	a := &domain.DeliveryAttempt{}
	if err := scanAttempt(s.pool.QueryRow(ctx, queryGetAttempt, id), a); err != nil {
		return nil, notFound(err, "getting attempt")
	}
	return a, nil
}

// ListAttempts returns all attempts for a notification.
func (s *PostgresStore) ListAttempts(ctx context.Context, notificationID string) ([]domain.DeliveryAttempt, error) {
	return s.queryAttempts(ctx, queryListAttempts, notificationID)
}

// UpdateAttempt persists an attempt, compare-and-set on version.
func (s *PostgresStore) UpdateAttempt(ctx context.Context, a *domain.DeliveryAttempt) error {
	args := pgx.NamedArgs{
		"id":             a.ID,
		"recipient":      a.Recipient,
		"attempt_number": a.AttemptNumber,
		"status":         string(a.Status),
		"last_error":     a.LastError,
		"next_retry_at":  a.NextRetryAt,
		"version":        a.Version,
	}

	err := s.pool.QueryRow(ctx, queryUpdateAttempt, args).Scan(&a.Version, &a.UpdatedAt)
	return s.casResult(ctx, err, queryAttemptExists, a.ID, "updating attempt")
}

// ListStaleAttempts returns non-terminal attempts with no progress since cutoff.
func (s *PostgresStore) ListStaleAttempts(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]domain.DeliveryAttempt, error) {
	return s.queryAttempts(ctx, queryListStaleAttempts, cutoff, clampLimit(limit))
}

// RecordSuppression appends to the suppression log.
func (s *PostgresStore) RecordSuppression(ctx context.Context, st *domain.SuppressedTrigger) error {
	st.ID = uuid.NewString()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, queryRecordSuppression,
		st.ID, st.OwnerID, st.RuleID, string(st.Category), string(st.Channel), st.Reason, st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording suppression: %w", err)
	}
	return nil
}

// ListSuppressions returns an owner's most recent suppressions.
func (s *PostgresStore) ListSuppressions(
	ctx context.Context,
	ownerID string,
	limit int,
) ([]domain.SuppressedTrigger, error) {
	rows, err := s.pool.Query(ctx, queryListSuppressions, ownerID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying suppressions: %w", err)
	}
	defer rows.Close()

	var out []domain.SuppressedTrigger
	for rows.Next() {
		var st domain.SuppressedTrigger
		if err := rows.Scan(
			&st.ID, &st.OwnerID, &st.RuleID, &st.Category, &st.Channel, &st.Reason, &st.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning suppression: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// casResult maps the outcome of a compare-and-set UPDATE ... RETURNING.
// No returned row means either the row is gone or its version moved.
func (s *PostgresStore) casResult(ctx context.Context, err error, existsQuery, id, op string) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("%s: checking existence: %w", op, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (s *PostgresStore) queryRules(ctx context.Context, query string, args ...any) ([]domain.AlertRule, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.AlertRule
	for rows.Next() {
		var r domain.AlertRule
		if err := scanRule(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *PostgresStore) queryAttempts(ctx context.Context, query string, args ...any) ([]domain.DeliveryAttempt, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.DeliveryAttempt
	for rows.Next() {
		var a domain.DeliveryAttempt
		if err := scanAttempt(rows, &a); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

func scanRule(row scannable, r *domain.AlertRule) error {
	return row.Scan(
		&r.ID, &r.OwnerID, &r.EntityID, &r.Metric, &r.Condition.Operator, &r.Condition.Threshold,
		&r.Category, &r.Active, &r.LastState, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
}

func scanNotification(row scannable, n *domain.Notification) error {
	var (
		data     []byte
		channels []string
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

func scanAttempt(row scannable, a *domain.DeliveryAttempt) error {
	return row.Scan(
		&a.ID, &a.NotificationID, &a.Channel, &a.Recipient, &a.AttemptNumber, &a.Status,
		&a.LastError, &a.NextRetryAt, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func marshalData(data map[string]any) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshaling notification data: %w", err)
	}
	return b, nil
}

func channelStrings(chs []domain.Channel) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = string(c)
	}
	return out
}
