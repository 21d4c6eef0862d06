package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

func exerciseDelayTable(t *testing.T, table DelayTable) {
	t.Helper()

	ctx := context.Background()
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	late := Message{AttemptID: "late", NotificationID: "n1", Channel: domain.ChannelEmail}
	early := Message{AttemptID: "early", NotificationID: "n1", Channel: domain.ChannelPush}
	future := Message{AttemptID: "future", NotificationID: "n2", Channel: domain.ChannelSMS}

	require.NoError(t, table.Schedule(ctx, late, base.Add(2*time.Second)))
	require.NoError(t, table.Schedule(ctx, early, base.Add(time.Second)))
	require.NoError(t, table.Schedule(ctx, future, base.Add(time.Hour)))

	due, err := table.Due(ctx, base.Add(5*time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "early", due[0].AttemptID)
	assert.Equal(t, "late", due[1].AttemptID)
	assert.Equal(t, domain.ChannelPush, due[0].Channel)

	limited, err := table.Due(ctx, base.Add(5*time.Second), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	require.NoError(t, table.Remove(ctx, early))
	due, err = table.Due(ctx, base.Add(5*time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "late", due[0].AttemptID)

	// Rescheduling replaces the earlier entry.
	require.NoError(t, table.Schedule(ctx, late, base.Add(2*time.Hour)))
	due, err = table.Due(ctx, base.Add(5*time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMemoryDelayTable(t *testing.T) {
	t.Parallel()

	table := NewMemoryDelayTable()
	exerciseDelayTable(t, table)
	assert.Equal(t, 2, table.Len())
}

func TestRedisDelayTable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Skipping: Redis not available: %v", err)
	}

	key := "pad-test:" + uuid.NewString()
	t.Cleanup(func() { _ = client.Del(context.Background(), key).Err() })

	exerciseDelayTable(t, NewRedisDelayTable(client, key))
}

func TestParseMember(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		wantOK bool
	}{
		{name: "valid", in: "a|n|email", wantOK: true},
		{name: "empty notification allowed", in: "a||push", wantOK: true},
		{name: "missing attempt", in: "|n|email", wantOK: false},
		{name: "too few parts", in: "a|n", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, ok := parseMember(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.in, member(msg))
			}
		})
	}
}
