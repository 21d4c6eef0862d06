package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Message, within time.Duration) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "stream closed")
		return msg
	case <-time.After(within):
		t.Fatalf("no message within %s", within)
	}
	return Message{}
}

func TestMemoryQueue_PublishConsumeAck(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(8)
	t.Cleanup(func() { _ = q.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, q.Publish(ctx, Message{AttemptID: "a1"}))
	require.NoError(t, q.Publish(ctx, Message{AttemptID: "a2"}))

	stream, err := q.Consume(ctx)
	require.NoError(t, err)

	first := receive(t, stream, time.Second)
	second := receive(t, stream, time.Second)
	assert.Equal(t, "a1", first.AttemptID)
	assert.Equal(t, "a2", second.AttemptID)
	assert.False(t, first.EnqueuedAt.IsZero())

	require.NoError(t, q.Ack(ctx, first))
	require.NoError(t, q.Ack(ctx, second))
	assert.Equal(t, 0, q.InFlight())
}

func TestMemoryQueue_NackRedeliversAfterDelay(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(8)
	t.Cleanup(func() { _ = q.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	stream, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, Message{AttemptID: "retry-me"}))

	msg := receive(t, stream, time.Second)
	start := time.Now()
	require.NoError(t, q.Nack(ctx, msg, 50*time.Millisecond))

	again := receive(t, stream, 2*time.Second)
	assert.Equal(t, "retry-me", again.AttemptID)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 0, q.Delayed())
}

func TestMemoryQueue_Close(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1)
	ctx := context.Background()

	stream, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Nack(ctx, Message{AttemptID: "later"}, time.Hour))
	assert.Equal(t, 1, q.Delayed())

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.Equal(t, 0, q.Delayed())

	_, open := <-stream
	assert.False(t, open)

	assert.ErrorIs(t, q.Publish(ctx, Message{AttemptID: "x"}), ErrClosed)
	assert.ErrorIs(t, q.Nack(ctx, Message{AttemptID: "x"}, 0), ErrClosed)
	_, err = q.Consume(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryQueue_PublishHonorsContext(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1)
	t.Cleanup(func() { _ = q.Close() })

	require.NoError(t, q.Publish(context.Background(), Message{AttemptID: "fills"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, Message{AttemptID: "blocked"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, q.Len())
}
