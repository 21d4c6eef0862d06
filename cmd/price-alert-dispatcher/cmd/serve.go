package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-alert-dispatcher/internal/api"
	"github.com/donaldgifford/price-alert-dispatcher/internal/api/handlers"
	"github.com/donaldgifford/price-alert-dispatcher/internal/config"
	"github.com/donaldgifford/price-alert-dispatcher/internal/dispatch"
	"github.com/donaldgifford/price-alert-dispatcher/internal/engine"
	"github.com/donaldgifford/price-alert-dispatcher/internal/factory"
	"github.com/donaldgifford/price-alert-dispatcher/internal/ingest"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	"github.com/donaldgifford/price-alert-dispatcher/internal/telemetry"
	"github.com/donaldgifford/price-alert-dispatcher/internal/tracker"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server, evaluation engine, and delivery workers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var done cleanup
	defer done.run()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     Version,
	})
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	done.add(func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown", "error", err)
		}
	})

	st, err := openStore(ctx, cfg.Database, &done)
	if err != nil {
		return err
	}

	rdb, err := openRedis(ctx, cfg.Redis, &done)
	if err != nil {
		return err
	}

	q, redeliverer, err := buildQueue(cfg.Queue, rdb, logger.Component(log, "queue"), &done)
	if err != nil {
		return err
	}

	guard, sweeper := buildGuard(cfg.Dedup, rdb)

	senders, err := buildSenders(ctx, cfg, logger.Component(log, "notify"))
	if err != nil {
		return fmt.Errorf("configuring senders: %w", err)
	}

	fac, err := factory.New(st, q, guard, cfg.Delivery.EnabledChannels(),
		factory.WithLogger(logger.Component(log, "factory")),
	)
	if err != nil {
		return fmt.Errorf("creating notification factory: %w", err)
	}

	eng := engine.NewEngine(st, fac,
		engine.WithLogger(logger.Component(log, "engine")),
		engine.WithPartitions(cfg.Evaluation.Partitions),
		engine.WithBufferSize(cfg.Evaluation.BufferSize),
		engine.WithPctLookback(cfg.Evaluation.PctLookback),
	)
	eng.Start(ctx)
	done.add(eng.Stop)

	disp := dispatch.New(st, q, senders, dispatcherOptions(cfg.Delivery, logger.Component(log, "dispatch"))...)

	trackerOpts := []tracker.Option{tracker.WithLogger(logger.Component(log, "tracker"))}
	checks := []handlers.Check{
		handlers.PingCheck("store", st),
		{Name: "dispatcher", Ready: func(context.Context) error {
			if !disp.Healthy() {
				return errors.New("delivery workers not running")
			}
			return nil
		}},
	}
	if cfg.Database.ReplicaDSN != "" {
		replica, err := store.OpenReplica(ctx, cfg.Database.ReplicaDSN)
		if err != nil {
			return fmt.Errorf("connecting to replica: %w", err)
		}
		done.add(func() { _ = replica.Close() })
		trackerOpts = append(trackerOpts, tracker.WithReader(replica))
		checks = append(checks, handlers.PingCheck("replica", replica))
	}
	trk := tracker.New(st, trackerOpts...)

	sched, err := engine.NewScheduler(logger.Component(log, "scheduler"),
		scheduledJobs(cfg.Schedule, cfg.Dedup, disp, redeliverer, sweeper)...,
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	sched.Start()
	done.add(func() { <-sched.Stop().Done() })

	// Background components report here; the first failure shuts down.
	errCh := make(chan error, 3)

	go func() {
		if err := disp.Run(ctx); err != nil {
			errCh <- fmt.Errorf("dispatcher: %w", err)
		}
	}()

	if cfg.Ingest.Enabled {
		consumer, err := ingest.NewConsumer(ingest.Config{
			Brokers: cfg.Ingest.Kafka.Brokers,
			Topic:   cfg.Ingest.Kafka.Topic,
			GroupID: cfg.Ingest.Kafka.GroupID,
		}, eng, logger.Component(log, "ingest"))
		if err != nil {
			return fmt.Errorf("creating ingest consumer: %w", err)
		}
		done.add(func() { _ = consumer.Close() })

		go func() {
			if err := consumer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("ingest: %w", err)
			}
		}()
	}

	e := api.NewServer(api.Deps{
		Store:     st,
		Tracker:   trk,
		Notifier:  fac,
		Submitter: eng,
		Checks:    checks,
		Logger:    logger.Component(log, "http"),
		Version:   Version,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server",
		"addr", addr,
		"version", Version,
		"store", cfg.Database.Backend,
		"queue", cfg.Queue.Backend,
		"dedup", cfg.Dedup.Backend,
		"channels", cfg.Delivery.EnabledChannels(),
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case runErr = <-errCh:
		log.Error("component failed, shutting down", "error", runErr)
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()

	if err := e.Shutdown(sctx); err != nil {
		log.Warn("shutting down http server", "error", err)
	}
	cancel()

	log.Info("server stopped")
	return runErr
}
