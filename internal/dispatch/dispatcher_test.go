package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-alert-dispatcher/internal/notify"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/logger"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type nack struct {
	msg   queue.Message
	delay time.Duration
}

// recordingQueue settles messages in memory so tests can assert on them.
type recordingQueue struct {
	mu        sync.Mutex
	published []queue.Message
	acked     []queue.Message
	nacked    []nack
}

func (q *recordingQueue) Publish(_ context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, msg)
	return nil
}

func (*recordingQueue) Consume(context.Context) (<-chan queue.Message, error) {
	return nil, errors.New("not supported")
}

func (q *recordingQueue) Ack(_ context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msg)
	return nil
}

func (q *recordingQueue) Nack(_ context.Context, msg queue.Message, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nacked = append(q.nacked, nack{msg: msg, delay: delay})
	return nil
}

func (*recordingQueue) Close() error { return nil }

func (q *recordingQueue) counts() (acked, nacked int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked), len(q.nacked)
}

// scriptedSender returns its outcomes in order, repeating the last one.
type scriptedSender struct {
	ch       domain.Channel
	mu       sync.Mutex
	outcomes []notify.Outcome
	calls    int
	release  chan struct{}
}

func (s *scriptedSender) Channel() domain.Channel { return s.ch }

func (s *scriptedSender) Send(ctx context.Context, _ *notify.Delivery) notify.Outcome {
	s.mu.Lock()
	i := min(s.calls, len(s.outcomes)-1)
	s.calls++
	out := s.outcomes[i]
	release := s.release
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return notify.Transient("%v", ctx.Err())
		}
	}
	return out
}

func (s *scriptedSender) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	clock *clock
	store *store.MemoryStore
	queue *recordingQueue
	d     *Dispatcher
}

func newFixture(t *testing.T, senders []notify.Sender, opts ...Option) *fixture {
	t.Helper()

	clk := &clock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	st := store.NewMemoryStore(store.WithClock(clk.Now))
	q := &recordingQueue{}

	base := []Option{
		WithLogger(logger.Discard()),
		WithClock(clk.Now),
		WithBackoff(NewBackoff(time.Second, time.Minute, 0)),
		WithChannelLimits(domain.ChannelEmail, ChannelLimits{MaxAttempts: 3, Timeout: time.Second}),
		WithChannelLimits(domain.ChannelPush, ChannelLimits{MaxAttempts: 3, Timeout: time.Second}),
	}
	d := New(st, q, notify.NewRegistry(senders...), append(base, opts...)...)

	return &fixture{clock: clk, store: st, queue: q, d: d}
}

// seed stores a queued notification with one pending attempt per channel
// and returns the messages a factory would have published.
func (f *fixture) seed(t *testing.T, channels ...domain.Channel) (*domain.Notification, []queue.Message) {
	t.Helper()

	n := &domain.Notification{
		OwnerID:  "owner-1",
		Title:    "BTC price rose to or above 70000.00",
		Body:     "BTC price is 71000.00",
		Category: domain.CategoryPriceAlert,
		Priority: domain.PriorityHigh,
		Channels: channels,
		Status:   domain.NotificationQueued,
	}
	attempts := make([]domain.DeliveryAttempt, 0, len(channels))
	for _, ch := range channels {
		attempts = append(attempts, domain.DeliveryAttempt{
			Channel:   ch,
			Recipient: "someone",
			Status:    domain.AttemptPending,
		})
	}
	require.NoError(t, f.store.CreateNotification(context.Background(), n, attempts))

	msgs := make([]queue.Message, 0, len(attempts))
	for _, a := range attempts {
		msgs = append(msgs, queue.Message{AttemptID: a.ID, NotificationID: n.ID, Channel: a.Channel})
	}
	return n, msgs
}

func (f *fixture) attempt(t *testing.T, id string) *domain.DeliveryAttempt {
	t.Helper()
	a, err := f.store.GetAttempt(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) status(t *testing.T, id string) domain.NotificationStatus {
	t.Helper()
	n, err := f.store.GetNotification(context.Background(), id)
	require.NoError(t, err)
	return n.Status
}

func TestHandle_Success(t *testing.T) {
	t.Parallel()

	email := &scriptedSender{ch: domain.ChannelEmail, outcomes: []notify.Outcome{notify.Success()}}
	f := newFixture(t, []notify.Sender{email})
	n, msgs := f.seed(t, domain.ChannelEmail)

	f.d.Handle(context.Background(), msgs[0])

	a := f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptSucceeded, a.Status)
	assert.Equal(t, 1, a.AttemptNumber)
	assert.Nil(t, a.NextRetryAt)
	assert.Equal(t, domain.NotificationDelivered, f.status(t, n.ID))

	acked, nacked := f.queue.counts()
	assert.Equal(t, 1, acked)
	assert.Zero(t, nacked)
}

func TestHandle_IdempotentRedelivery(t *testing.T) {
	t.Parallel()

	email := &scriptedSender{ch: domain.ChannelEmail, outcomes: []notify.Outcome{notify.Success()}}
	f := newFixture(t, []notify.Sender{email})
	n, msgs := f.seed(t, domain.ChannelEmail)

	f.d.Handle(context.Background(), msgs[0])
	f.d.Handle(context.Background(), msgs[0])
	f.d.Handle(context.Background(), msgs[0])

	assert.Equal(t, 1, email.Calls())
	assert.Equal(t, 1, f.attempt(t, msgs[0].AttemptID).AttemptNumber)
	assert.Equal(t, domain.NotificationDelivered, f.status(t, n.ID))

	acked, _ := f.queue.counts()
	assert.Equal(t, 3, acked)
}

func TestHandle_RetryBound(t *testing.T) {
	t.Parallel()

	email := &scriptedSender{
		ch:       domain.ChannelEmail,
		outcomes: []notify.Outcome{notify.Transient("smtp: 451 try again later")},
	}
	f := newFixture(t, []notify.Sender{email})
	n, msgs := f.seed(t, domain.ChannelEmail)
	ctx := context.Background()

	f.d.Handle(ctx, msgs[0])
	a := f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptPending, a.Status)
	assert.Equal(t, 1, a.AttemptNumber)
	require.NotNil(t, a.NextRetryAt)
	assert.Equal(t, f.clock.Now().Add(time.Second), *a.NextRetryAt)
	assert.Equal(t, "smtp: 451 try again later", a.LastError)
	assert.Equal(t, domain.NotificationDelivering, f.status(t, n.ID))

	// Redelivered before the retry time: absorbed without a send.
	f.d.Handle(ctx, msgs[0])
	assert.Equal(t, 1, email.Calls())

	f.clock.Advance(time.Second)
	f.d.Handle(ctx, msgs[0])
	a = f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptPending, a.Status)
	assert.Equal(t, 2, a.AttemptNumber)
	assert.Equal(t, f.clock.Now().Add(2*time.Second), *a.NextRetryAt)

	f.clock.Advance(2 * time.Second)
	f.d.Handle(ctx, msgs[0])
	a = f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptAbandoned, a.Status)
	assert.Equal(t, 3, a.AttemptNumber)
	assert.Equal(t, 3, email.Calls())
	assert.Equal(t, domain.NotificationFailed, f.status(t, n.ID))

	f.queue.mu.Lock()
	defer f.queue.mu.Unlock()
	require.Len(t, f.queue.nacked, 2)
	assert.Equal(t, time.Second, f.queue.nacked[0].delay)
	assert.Equal(t, 2*time.Second, f.queue.nacked[1].delay)
}

func TestHandle_PartiallyDelivered(t *testing.T) {
	t.Parallel()

	email := &scriptedSender{ch: domain.ChannelEmail, outcomes: []notify.Outcome{notify.Success()}}
	push := &scriptedSender{ch: domain.ChannelPush, outcomes: []notify.Outcome{notify.Permanent("NotRegistered")}}
	f := newFixture(t, []notify.Sender{email, push})
	n, msgs := f.seed(t, domain.ChannelEmail, domain.ChannelPush)

	f.d.Handle(context.Background(), msgs[0])
	assert.Equal(t, domain.NotificationDelivering, f.status(t, n.ID))

	f.d.Handle(context.Background(), msgs[1])

	assert.Equal(t, domain.AttemptSucceeded, f.attempt(t, msgs[0].AttemptID).Status)
	pushAttempt := f.attempt(t, msgs[1].AttemptID)
	assert.Equal(t, domain.AttemptAbandoned, pushAttempt.Status)
	assert.Equal(t, 1, pushAttempt.AttemptNumber)

	got, err := f.store.GetNotification(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationPartiallyDelivered, got.Status)
	assert.Contains(t, got.FailureReason, "push: NotRegistered")
}

func TestHandle_Skips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(a *domain.DeliveryAttempt, now time.Time)
	}{
		{
			name: "in flight",
			mutate: func(a *domain.DeliveryAttempt, _ time.Time) {
				a.Status = domain.AttemptInFlight
				a.AttemptNumber = 1
			},
		},
		{
			name: "succeeded",
			mutate: func(a *domain.DeliveryAttempt, _ time.Time) {
				a.Status = domain.AttemptSucceeded
				a.AttemptNumber = 1
			},
		},
		{
			name: "abandoned",
			mutate: func(a *domain.DeliveryAttempt, _ time.Time) {
				a.Status = domain.AttemptAbandoned
				a.AttemptNumber = 3
			},
		},
		{
			name: "early pending",
			mutate: func(a *domain.DeliveryAttempt, now time.Time) {
				next := now.Add(time.Minute)
				a.AttemptNumber = 1
				a.NextRetryAt = &next
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email := &scriptedSender{ch: domain.ChannelEmail, outcomes: []notify.Outcome{notify.Success()}}
			f := newFixture(t, []notify.Sender{email})
			_, msgs := f.seed(t, domain.ChannelEmail)

			a := f.attempt(t, msgs[0].AttemptID)
			tt.mutate(a, f.clock.Now())
			require.NoError(t, f.store.UpdateAttempt(context.Background(), a))

			f.d.Handle(context.Background(), msgs[0])

			assert.Zero(t, email.Calls())
			after := f.attempt(t, msgs[0].AttemptID)
			assert.Equal(t, a.Status, after.Status)
			assert.Equal(t, a.AttemptNumber, after.AttemptNumber)

			acked, nacked := f.queue.counts()
			assert.Equal(t, 1, acked)
			assert.Zero(t, nacked)
		})
	}
}

func TestHandle_MissingRows(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.d.Handle(context.Background(), queue.Message{AttemptID: "gone", NotificationID: "gone", Channel: domain.ChannelEmail})

	acked, nacked := f.queue.counts()
	assert.Equal(t, 1, acked)
	assert.Zero(t, nacked)
}

func TestHandle_NoSenderForChannel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	n, msgs := f.seed(t, domain.ChannelSMS)

	f.d.Handle(context.Background(), msgs[0])

	a := f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptAbandoned, a.Status)
	assert.Contains(t, a.LastError, "no sender registered")
	assert.Equal(t, domain.NotificationFailed, f.status(t, n.ID))
}

func TestHandle_StoreUnavailableNacks(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.d.store = errStore{Store: f.store}

	f.d.Handle(context.Background(), queue.Message{AttemptID: "a-1", Channel: domain.ChannelEmail})

	f.queue.mu.Lock()
	defer f.queue.mu.Unlock()
	require.Len(t, f.queue.nacked, 1)
	assert.Equal(t, storeErrorDelay, f.queue.nacked[0].delay)
}

type errStore struct {
	store.Store
}

func (errStore) GetAttempt(context.Context, string) (*domain.DeliveryAttempt, error) {
	return nil, errors.New("connection refused")
}

func TestHandle_LateSuccessApplied(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	email := &scriptedSender{
		ch:       domain.ChannelEmail,
		outcomes: []notify.Outcome{notify.Success()},
		release:  release,
	}
	f := newFixture(t, []notify.Sender{email},
		WithChannelLimits(domain.ChannelEmail, ChannelLimits{MaxAttempts: 3, Timeout: 20 * time.Millisecond}),
		WithLateResultGrace(5*time.Second),
	)
	n, msgs := f.seed(t, domain.ChannelEmail)

	f.d.Handle(context.Background(), msgs[0])

	a := f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptPending, a.Status)
	assert.Contains(t, a.LastError, "timed out")

	close(release)
	f.d.Wait()

	a = f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptSucceeded, a.Status)
	assert.Equal(t, domain.NotificationDelivered, f.status(t, n.ID))
}

func TestHandle_LateSuccessAfterAbandonDiscarded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	email := &scriptedSender{
		ch:       domain.ChannelEmail,
		outcomes: []notify.Outcome{notify.Success()},
		release:  release,
	}
	f := newFixture(t, []notify.Sender{email},
		WithChannelLimits(domain.ChannelEmail, ChannelLimits{MaxAttempts: 1, Timeout: 20 * time.Millisecond}),
		WithLateResultGrace(5*time.Second),
	)
	n, msgs := f.seed(t, domain.ChannelEmail)

	f.d.Handle(context.Background(), msgs[0])
	assert.Equal(t, domain.AttemptAbandoned, f.attempt(t, msgs[0].AttemptID).Status)

	close(release)
	f.d.Wait()

	assert.Equal(t, domain.AttemptAbandoned, f.attempt(t, msgs[0].AttemptID).Status)
	assert.Equal(t, domain.NotificationFailed, f.status(t, n.ID))
}

func TestRecompute_KeepsRead(t *testing.T) {
	t.Parallel()

	email := &scriptedSender{ch: domain.ChannelEmail, outcomes: []notify.Outcome{notify.Success()}}
	f := newFixture(t, []notify.Sender{email})
	n, msgs := f.seed(t, domain.ChannelEmail)
	f.d.Handle(context.Background(), msgs[0])

	got, err := f.store.GetNotification(context.Background(), n.ID)
	require.NoError(t, err)
	readAt := f.clock.Now()
	got.Status = domain.NotificationRead
	got.ReadAt = &readAt
	require.NoError(t, f.store.UpdateNotification(context.Background(), got))

	f.d.recompute(context.Background(), n.ID)
	assert.Equal(t, domain.NotificationRead, f.status(t, n.ID))
}

func TestRecoverStale(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	n, msgs := f.seed(t, domain.ChannelEmail, domain.ChannelPush)

	// Email: worker died mid-send on its first attempt.
	email := f.attempt(t, msgs[0].AttemptID)
	email.Status = domain.AttemptInFlight
	email.AttemptNumber = 1
	require.NoError(t, f.store.UpdateAttempt(ctx, email))

	// Push: worker died mid-send on its last attempt.
	push := f.attempt(t, msgs[1].AttemptID)
	push.Status = domain.AttemptInFlight
	push.AttemptNumber = 3
	require.NoError(t, f.store.UpdateAttempt(ctx, push))

	n2, msgs2 := f.seed(t, domain.ChannelEmail)

	f.clock.Advance(15 * time.Minute)

	count, err := f.d.RecoverStale(ctx, 10*time.Minute, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	email = f.attempt(t, msgs[0].AttemptID)
	assert.Equal(t, domain.AttemptPending, email.Status)
	assert.Equal(t, 1, email.AttemptNumber)

	push = f.attempt(t, msgs[1].AttemptID)
	assert.Equal(t, domain.AttemptAbandoned, push.Status)

	f.queue.mu.Lock()
	published := append([]queue.Message(nil), f.queue.published...)
	f.queue.mu.Unlock()
	require.Len(t, published, 2)
	ids := []string{published[0].AttemptID, published[1].AttemptID}
	assert.ElementsMatch(t, []string{msgs[0].AttemptID, msgs2[0].AttemptID}, ids)

	assert.Equal(t, domain.NotificationDelivering, f.status(t, n.ID))
	assert.Equal(t, domain.NotificationQueued, f.status(t, n2.ID))

	// Touched rows are not picked up again straight away.
	count, err = f.d.RecoverStale(ctx, 10*time.Minute, 100)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRun_DeliversFromMemoryQueue(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	q := queue.NewMemoryQueue(16)
	t.Cleanup(func() { _ = q.Close() })

	email := &scriptedSender{ch: domain.ChannelEmail, outcomes: []notify.Outcome{
		notify.Transient("gateway 503"),
		notify.Success(),
	}}
	push := &scriptedSender{ch: domain.ChannelPush, outcomes: []notify.Outcome{notify.Success()}}

	d := New(st, q, notify.NewRegistry(email, push),
		WithLogger(logger.Discard()),
		WithWorkers(4),
		WithBackoff(NewBackoff(5*time.Millisecond, 50*time.Millisecond, 0)),
		WithPingInterval(0),
	)

	n := &domain.Notification{OwnerID: "owner-1", Title: "t", Status: domain.NotificationQueued}
	attempts := []domain.DeliveryAttempt{
		{Channel: domain.ChannelEmail, Recipient: "a@example.com", Status: domain.AttemptPending},
		{Channel: domain.ChannelPush, Recipient: "tok", Status: domain.AttemptPending},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, st.CreateNotification(ctx, n, attempts))
	for _, a := range attempts {
		require.NoError(t, q.Publish(ctx, queue.Message{AttemptID: a.ID, NotificationID: n.ID, Channel: a.Channel}))
	}

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := st.GetNotification(ctx, n.ID)
		return err == nil && got.Status == domain.NotificationDelivered
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, d.Healthy())
	assert.Equal(t, 2, email.Calls())
	assert.Equal(t, 1, push.Calls())

	cancel()
	require.NoError(t, <-done)
	assert.False(t, d.Healthy())
}

func TestRun_StopsWhenStoreUnreachable(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	q := queue.NewMemoryQueue(4)
	t.Cleanup(func() { _ = q.Close() })

	d := New(st, q, notify.NewRegistry(),
		WithLogger(logger.Discard()),
		WithPingInterval(10*time.Millisecond),
	)

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	require.Eventually(t, d.Healthy, time.Second, 5*time.Millisecond)
	st.SetPingError(errors.New("connection refused"))

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrStoreUnavailable)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
	assert.False(t, d.Healthy())
}
