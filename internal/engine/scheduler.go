package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
)

// Job is a named background task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs background jobs such as delay-table redelivery, stale
// attempt recovery, and dedup window sweeps. A run that is still going when
// its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	entries map[string]cron.EntryID
}

// NewScheduler creates a Scheduler with the given jobs registered.
func NewScheduler(log *slog.Logger, jobs ...Job) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	s := &Scheduler{
		cron:    c,
		log:     log,
		entries: make(map[string]cron.EntryID, len(jobs)),
	}

	for _, j := range jobs {
		if err := s.add(j); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(j Job) error {
	if j.Name == "" || j.Run == nil {
		return errors.New("job needs a name and a run function")
	}
	if j.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", j.Name)
	}
	if _, dup := s.entries[j.Name]; dup {
		return fmt.Errorf("job %s registered twice", j.Name)
	}

	id, err := s.cron.AddFunc("@every "+j.Interval.String(), func() {
		_ = s.runJob(context.Background(), j.Name, j.Run)
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", j.Name, err)
	}
	s.entries[j.Name] = id
	return nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "jobs", len(s.entries))
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// EntryID returns the cron entry for a job name.
func (s *Scheduler) EntryID(name string) (cron.EntryID, bool) {
	id, ok := s.entries[name]
	return id, ok
}

func (s *Scheduler) runJob(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.SchedulerJobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SchedulerJobErrorsTotal.WithLabelValues(name).Inc()
		s.log.Error("scheduled job failed", "job", name, "error", err)
		return err
	}
	s.log.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
	return nil
}
