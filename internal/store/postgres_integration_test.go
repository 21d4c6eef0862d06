//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pad_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr, 5)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_RuleStateCAS(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	r := &domain.AlertRule{
		OwnerID:   "u1",
		EntityID:  "BTC-USD",
		Metric:    domain.MetricPrice,
		Condition: domain.Condition{Operator: domain.OperatorGTE, Threshold: 70000},
		Category:  domain.CategoryPriceAlert,
		Active:    true,
	}
	require.NoError(t, s.CreateRule(ctx, r))

	stale := *r
	require.NoError(t, s.UpdateRuleState(ctx, r, domain.SideBelow))
	assert.Equal(t, int64(2), r.Version)

	require.ErrorIs(t, s.UpdateRuleState(ctx, &stale, domain.SideAbove), store.ErrVersionConflict)

	missing := *r
	missing.ID = "00000000-0000-0000-0000-000000000000"
	require.ErrorIs(t, s.UpdateRuleState(ctx, &missing, domain.SideAbove), store.ErrNotFound)

	rules, err := s.ListActiveRulesForEntity(ctx, "BTC-USD", domain.MetricPrice)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, domain.SideBelow, rules[0].LastState)
}

func TestPostgresStore_NotificationLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.SetChannelPreferences(ctx, &domain.ChannelPreferences{
		OwnerID: "u1",
		Contacts: []domain.ChannelContact{
			{Channel: domain.ChannelEmail, Address: "a@example.com", Enabled: true},
			{Channel: domain.ChannelPush, Address: "device-token", Enabled: true},
		},
	}))
	prefs, err := s.GetChannelPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, prefs.Enabled(), 2)

	n := &domain.Notification{
		OwnerID:  "u1",
		Title:    "BTC-USD crossed 70000",
		Body:     "BTC-USD price is 71000",
		Category: domain.CategoryPriceAlert,
		Priority: domain.PriorityHigh,
		Data:     map[string]any{"value": 71000.0},
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelPush},
		Status:   domain.NotificationCreated,
	}
	attempts := []domain.DeliveryAttempt{
		{Channel: domain.ChannelEmail, Recipient: "a@example.com", Status: domain.AttemptPending},
		{Channel: domain.ChannelPush, Recipient: "device-token", Status: domain.AttemptPending},
	}
	require.NoError(t, s.CreateNotification(ctx, n, attempts))

	got, err := s.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Channels, got.Channels)
	assert.InDelta(t, 71000.0, got.Data["value"], 0.001)

	a, err := s.GetAttempt(ctx, attempts[0].ID)
	require.NoError(t, err)
	a.Status = domain.AttemptInFlight
	a.AttemptNumber = 1
	require.NoError(t, s.UpdateAttempt(ctx, a))

	stale, err := s.ListStaleAttempts(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, stale, 2)

	got.Status = domain.NotificationDelivering
	require.NoError(t, s.UpdateNotification(ctx, got))

	list, total, err := s.ListNotifications(ctx, "u1", domain.NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotificationDelivering, list[0].Status)

	require.NoError(t, s.DeleteNotification(ctx, n.ID))
	_, err = s.GetAttempt(ctx, attempts[0].ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_Suppressions(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.RecordSuppression(ctx, &domain.SuppressedTrigger{
		OwnerID:  "u1",
		Category: domain.CategoryPriceAlert,
		Channel:  domain.ChannelSMS,
		Reason:   "dedup window",
	}))

	got, err := s.ListSuppressions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ChannelSMS, got[0].Channel)
}
