package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-alert-dispatcher/internal/config"
	"github.com/donaldgifford/price-alert-dispatcher/internal/dedup"
	"github.com/donaldgifford/price-alert-dispatcher/internal/engine"
	"github.com/donaldgifford/price-alert-dispatcher/internal/notify"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/logger"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type stubRecoverer struct{}

func (stubRecoverer) RecoverStale(context.Context, time.Duration, int) (int, error) { return 0, nil }

type stubRedeliverer struct{}

func (stubRedeliverer) RedeliverDue(context.Context) (int, error) { return 0, nil }

func TestBuildSenders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       config.Config
		wantTypes map[domain.Channel]any
	}{
		{
			name:      "nothing enabled",
			wantTypes: map[domain.Channel]any{},
		},
		{
			name: "gateways missing fall back to no-op",
			cfg: config.Config{Delivery: config.DeliveryConfig{
				Email: config.ChannelConfig{Enabled: true},
				Push:  config.ChannelConfig{Enabled: true},
				SMS:   config.ChannelConfig{Enabled: true},
			}},
			wantTypes: map[domain.Channel]any{
				domain.ChannelEmail: &notify.NoOpSender{},
				domain.ChannelPush:  &notify.NoOpSender{},
				domain.ChannelSMS:   &notify.NoOpSender{},
			},
		},
		{
			name: "configured providers",
			cfg: config.Config{
				Delivery: config.DeliveryConfig{
					Email: config.ChannelConfig{Enabled: true},
					Push:  config.ChannelConfig{Enabled: true},
					SMS:   config.ChannelConfig{Enabled: true},
				},
				Providers: config.ProvidersConfig{
					Email: config.EmailProviderConfig{
						Primary:  "smtp",
						Fallback: []string{"resend"},
						From:     "alerts@example.com",
						SMTP:     config.SMTPConfig{Host: "localhost", Port: 2525},
						Resend:   config.ResendConfig{APIKey: "re_test"},
					},
					Push: config.PushProviderConfig{GatewayURL: "http://push.invalid", ServerKey: "k"},
					SMS:  config.SMSProviderConfig{GatewayURL: "http://sms.invalid", PerSecond: 1, Burst: 1},
				},
			},
			wantTypes: map[domain.Channel]any{
				domain.ChannelEmail: &notify.EmailSender{},
				domain.ChannelPush:  &notify.PushSender{},
				domain.ChannelSMS:   &notify.SMSSender{},
			},
		},
		{
			name: "disabled channel is not registered",
			cfg: config.Config{
				Delivery: config.DeliveryConfig{Push: config.ChannelConfig{Enabled: true}},
				Providers: config.ProvidersConfig{
					SMS: config.SMSProviderConfig{GatewayURL: "http://sms.invalid", PerSecond: 1, Burst: 1},
				},
			},
			wantTypes: map[domain.Channel]any{
				domain.ChannelPush: &notify.NoOpSender{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg, err := buildSenders(context.Background(), &tt.cfg, logger.Discard())
			require.NoError(t, err)
			assert.Len(t, reg.Channels(), len(tt.wantTypes))

			for ch, want := range tt.wantTypes {
				got, ok := reg.Get(ch)
				require.True(t, ok, "channel %s", ch)
				assert.IsType(t, want, got)
			}
		})
	}
}

func TestBuildGuard(t *testing.T) {
	t.Parallel()

	g, sweeper := buildGuard(config.DedupConfig{Backend: config.BackendMemory, Window: time.Minute, MaxCount: 1}, nil)
	assert.IsType(t, &dedup.MemoryGuard{}, g)
	assert.NotNil(t, sweeper)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	g, sweeper = buildGuard(config.DedupConfig{Backend: config.BackendRedis, Window: time.Minute, MaxCount: 1}, rdb)
	assert.IsType(t, &dedup.RedisGuard{}, g)
	assert.Nil(t, sweeper)
}

func TestBuildQueue_Memory(t *testing.T) {
	t.Parallel()

	var done cleanup
	q, redeliverer, err := buildQueue(config.QueueConfig{Backend: config.BackendMemory, BufferSize: 8}, nil, logger.Discard(), &done)
	require.NoError(t, err)
	assert.IsType(t, &queue.MemoryQueue{}, q)
	assert.Nil(t, redeliverer)

	require.Len(t, done.fns, 1)
	done.run()
}

func TestOpenStore_Memory(t *testing.T) {
	t.Parallel()

	var done cleanup
	st, err := openStore(context.Background(), config.DatabaseConfig{Backend: config.BackendMemory}, &done)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, st)
	assert.Empty(t, done.fns)
}

func TestOpenRedis_Unconfigured(t *testing.T) {
	t.Parallel()

	var done cleanup
	rdb, err := openRedis(context.Background(), config.RedisConfig{}, &done)
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestScheduledJobs(t *testing.T) {
	t.Parallel()

	sched := config.ScheduleConfig{
		RedeliveryInterval: 5 * time.Second,
		RecoveryInterval:   time.Minute,
		StaleAfter:         10 * time.Minute,
	}
	window := config.DedupConfig{Window: 5 * time.Minute}

	tests := []struct {
		name        string
		redeliverer queue.Redeliverer
		sweeper     engine.Sweeper
		want        []string
	}{
		{
			name: "recovery only",
			want: []string{engine.JobStaleRecovery},
		},
		{
			name:        "kafka with memory dedup",
			redeliverer: stubRedeliverer{},
			sweeper:     dedup.NewMemoryGuard(time.Minute, 1),
			want:        []string{engine.JobStaleRecovery, engine.JobRedelivery, engine.JobDedupSweep},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jobs := scheduledJobs(sched, window, stubRecoverer{}, tt.redeliverer, tt.sweeper)
			names := make([]string, 0, len(jobs))
			for _, j := range jobs {
				names = append(names, j.Name)
			}
			assert.Equal(t, tt.want, names)

			_, err := engine.NewScheduler(logger.Discard(), jobs...)
			require.NoError(t, err)
		})
	}
}

func TestDispatcherOptions(t *testing.T) {
	t.Parallel()

	opts := dispatcherOptions(config.DeliveryConfig{Workers: 2}, logger.Discard())
	assert.Len(t, opts, 4+len(domain.AllChannels))
}

func TestCleanup_RunsInReverse(t *testing.T) {
	t.Parallel()

	var order []int
	var done cleanup
	done.add(func() { order = append(order, 1) })
	done.add(func() { order = append(order, 2) })
	done.run()

	assert.Equal(t, []int{2, 1}, order)
}
