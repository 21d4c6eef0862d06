package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/donaldgifford/price-alert-dispatcher/internal/config"
	"github.com/donaldgifford/price-alert-dispatcher/internal/dedup"
	"github.com/donaldgifford/price-alert-dispatcher/internal/dispatch"
	"github.com/donaldgifford/price-alert-dispatcher/internal/engine"
	"github.com/donaldgifford/price-alert-dispatcher/internal/notify"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

const delayTableKey = "pad:queue:delayed"

// cleanup collects shutdown hooks and runs them in reverse order.
type cleanup struct {
	fns []func()
}

func (c *cleanup) add(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanup) run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, done *cleanup) (store.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return store.NewMemoryStore(), nil
	}

	st, err := store.NewPostgresStore(ctx, cfg.DSN(), cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	done.add(st.Close)
	return st, nil
}

// openRedis returns nil when no address is configured.
func openRedis(ctx context.Context, cfg config.RedisConfig, done *cleanup) (redis.UniversalClient, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	done.add(func() { _ = rdb.Close() })
	return rdb, nil
}

// buildQueue returns the delivery queue and, for backends that park
// nacked messages outside the queue, the redeliverer the scheduler drives.
func buildQueue(
	cfg config.QueueConfig,
	rdb redis.UniversalClient,
	log *slog.Logger,
	done *cleanup,
) (queue.Queue, queue.Redeliverer, error) {
	if cfg.Backend == config.BackendMemory {
		q := queue.NewMemoryQueue(cfg.BufferSize)
		done.add(func() { _ = q.Close() })
		return q, nil, nil
	}

	var delays queue.DelayTable = queue.NewMemoryDelayTable()
	if cfg.DelayTable == config.BackendRedis {
		delays = queue.NewRedisDelayTable(rdb, delayTableKey)
	}

	kq, err := queue.NewKafkaQueue(queue.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		GroupID:      cfg.Kafka.GroupID,
		WriteTimeout: cfg.Kafka.WriteTimeout,
	}, delays, queue.WithKafkaLogger(log))
	if err != nil {
		return nil, nil, fmt.Errorf("creating kafka queue: %w", err)
	}
	done.add(func() { _ = kq.Close() })
	return kq, kq, nil
}

// buildGuard returns the dedup guard and, for the in-process guard, the
// sweeper that frees expired windows.
func buildGuard(cfg config.DedupConfig, rdb redis.UniversalClient) (dedup.Guard, engine.Sweeper) {
	if cfg.Backend == config.BackendRedis {
		return dedup.NewRedisGuard(rdb, cfg.Window, cfg.MaxCount), nil
	}
	g := dedup.NewMemoryGuard(cfg.Window, cfg.MaxCount)
	return g, g
}

// buildSenders registers a sender for every enabled channel. A channel
// without a configured gateway gets a no-op sender that logs deliveries.
func buildSenders(ctx context.Context, cfg *config.Config, log *slog.Logger) (*notify.Registry, error) {
	reg := notify.NewRegistry()

	for _, ch := range cfg.Delivery.EnabledChannels() {
		switch ch {
		case domain.ChannelEmail:
			s, err := buildEmailSender(ctx, cfg.Providers.Email, log)
			if err != nil {
				return nil, err
			}
			if s == nil {
				reg.Register(notify.NewNoOpSender(ch, log))
				continue
			}
			reg.Register(s)
		case domain.ChannelPush:
			p := cfg.Providers.Push
			if p.GatewayURL == "" {
				reg.Register(notify.NewNoOpSender(ch, log))
				continue
			}
			reg.Register(notify.NewPushSender(p.GatewayURL, p.ServerKey))
		case domain.ChannelSMS:
			p := cfg.Providers.SMS
			if p.GatewayURL == "" {
				reg.Register(notify.NewNoOpSender(ch, log))
				continue
			}
			reg.Register(notify.NewSMSSender(p.GatewayURL, p.APIKey, p.From, p.PerSecond, p.Burst))
		}
	}
	return reg, nil
}

// buildEmailSender returns nil when no email provider is selected.
func buildEmailSender(
	ctx context.Context,
	cfg config.EmailProviderConfig,
	log *slog.Logger,
) (*notify.EmailSender, error) {
	if cfg.Primary == "" {
		return nil, nil
	}

	providers := notify.NewEmailProviders(log)
	for _, name := range append([]string{cfg.Primary}, cfg.Fallback...) {
		switch name {
		case "smtp":
			providers.Register(notify.NewSMTPProvider(
				cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password,
			))
		case "resend":
			providers.Register(notify.NewResendProvider(cfg.Resend.APIKey))
		case "ses":
			p, err := notify.NewSESProvider(ctx, cfg.SES.Region)
			if err != nil {
				log.Warn("ses provider unavailable", "region", cfg.SES.Region, "error", err)
			}
			providers.Register(p)
		}
	}

	if err := providers.SetPrimary(cfg.Primary); err != nil {
		return nil, err
	}
	if err := providers.SetFallback(cfg.Fallback...); err != nil {
		return nil, err
	}
	return notify.NewEmailSender(providers, cfg.From), nil
}

func dispatcherOptions(cfg config.DeliveryConfig, log *slog.Logger) []dispatch.Option {
	opts := []dispatch.Option{
		dispatch.WithLogger(log),
		dispatch.WithWorkers(cfg.Workers),
		dispatch.WithBackoff(dispatch.NewBackoff(cfg.Backoff.Base, cfg.Backoff.Cap, cfg.Backoff.Jitter)),
		dispatch.WithLateResultGrace(cfg.LateResultTimeout),
	}
	for _, ch := range domain.AllChannels {
		c := cfg.Channel(ch)
		opts = append(opts, dispatch.WithChannelLimits(ch, dispatch.ChannelLimits{
			MaxAttempts: c.MaxAttempts,
			Timeout:     c.Timeout,
		}))
	}
	return opts
}

func scheduledJobs(
	cfg config.ScheduleConfig,
	window config.DedupConfig,
	recoverer engine.StaleRecoverer,
	redeliverer queue.Redeliverer,
	sweeper engine.Sweeper,
) []engine.Job {
	jobs := []engine.Job{
		engine.StaleRecoveryJob(recoverer, cfg.RecoveryInterval, cfg.StaleAfter),
	}
	if redeliverer != nil {
		jobs = append(jobs, engine.RedeliveryJob(redeliverer, cfg.RedeliveryInterval))
	}
	if sweeper != nil {
		jobs = append(jobs, engine.DedupSweepJob(sweeper, window.Window))
	}
	return jobs
}
