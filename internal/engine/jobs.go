package engine

import (
	"context"
	"time"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
)

// Job names.
const (
	JobRedelivery    = "redelivery"
	JobStaleRecovery = "stale_recovery"
	JobDedupSweep    = "dedup_sweep"
)

const defaultRecoveryBatch = 500

// StaleRecoverer republishes attempts that stopped making progress.
type StaleRecoverer interface {
	RecoverStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error)
}

// Sweeper drops expired dedup windows.
type Sweeper interface {
	Sweep() int
}

// RedeliveryJob moves due entries from the delay table back onto the queue.
func RedeliveryJob(r queue.Redeliverer, every time.Duration) Job {
	return Job{
		Name:     JobRedelivery,
		Interval: every,
		Run: func(ctx context.Context) error {
			n, err := r.RedeliverDue(ctx)
			if n > 0 {
				metrics.RedeliveredTotal.WithLabelValues(JobRedelivery).Add(float64(n))
			}
			return err
		},
	}
}

// StaleRecoveryJob republishes attempts idle for longer than staleAfter.
func StaleRecoveryJob(r StaleRecoverer, every, staleAfter time.Duration) Job {
	return Job{
		Name:     JobStaleRecovery,
		Interval: every,
		Run: func(ctx context.Context) error {
			_, err := r.RecoverStale(ctx, staleAfter, defaultRecoveryBatch)
			return err
		},
	}
}

// DedupSweepJob frees memory held by expired in-process dedup windows.
func DedupSweepJob(s Sweeper, every time.Duration) Job {
	return Job{
		Name:     JobDedupSweep,
		Interval: every,
		Run: func(context.Context) error {
			s.Sweep()
			return nil
		},
	}
}
