package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/internal/queue"
	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// RecoverStale republishes attempts that have made no progress for
// staleAfter: pending attempts whose message was lost and in-flight attempts
// whose worker died mid-send. An in-flight attempt that already used its
// last send is abandoned instead. It returns the number of attempts
// republished.
func (d *Dispatcher) RecoverStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error) {
	cutoff := d.now().Add(-staleAfter)
	stale, err := d.store.ListStaleAttempts(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("listing stale attempts: %w", err)
	}

	var republished int
	var errs []error
	for i := range stale {
		a := &stale[i]
		ok, err := d.recoverAttempt(ctx, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			republished++
		}
	}

	if republished > 0 {
		metrics.RedeliveredTotal.WithLabelValues("stale_recovery").Add(float64(republished))
		d.log.Info("recovered stale attempts", "count", republished, "scanned", len(stale))
	}
	return republished, errors.Join(errs...)
}

func (d *Dispatcher) recoverAttempt(ctx context.Context, a *domain.DeliveryAttempt) (bool, error) {
	if a.Status == domain.AttemptInFlight {
		a.LastError = "worker lost during send"
		a.Status = domain.AttemptPending
		if a.AttemptNumber >= d.limitsFor(a.Channel).MaxAttempts {
			a.Status = domain.AttemptAbandoned
		}
	}
	// Clearing the retry time also touches UpdatedAt, so the attempt is not
	// picked up again before it has had a chance to run.
	a.NextRetryAt = nil

	err := d.store.UpdateAttempt(ctx, a)
	if errors.Is(err, store.ErrVersionConflict) {
		// The attempt moved on since it was listed.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resetting attempt %s: %w", a.ID, err)
	}
	if a.Status == domain.AttemptAbandoned {
		d.recompute(ctx, a.NotificationID)
		return false, nil
	}

	msg := queue.Message{
		AttemptID:      a.ID,
		NotificationID: a.NotificationID,
		Channel:        a.Channel,
		EnqueuedAt:     d.now(),
	}
	if err := d.queue.Publish(ctx, msg); err != nil {
		return false, fmt.Errorf("republishing attempt %s: %w", a.ID, err)
	}
	return true, nil
}
