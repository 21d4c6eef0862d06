package condition

import (
	"slices"
	"sort"
	"sync"
	"time"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type sample struct {
	at    time.Time
	value float64
}

type seriesKey struct {
	entity string
	metric domain.Metric
}

// Window keeps recent observations per entity and metric so pct_change rules
// can compare against a rolling baseline. The baseline is the oldest sample
// inside the lookback that is not newer than the observation. Samples are
// held in timestamp order whatever order they arrive in.
type Window struct {
	mu        sync.Mutex
	lookback  time.Duration
	series    map[seriesKey][]sample
	lastSweep time.Time
}

// NewWindow creates a Window with the given lookback.
func NewWindow(lookback time.Duration) *Window {
	return &Window{
		lookback: lookback,
		series:   make(map[seriesKey][]sample),
	}
}

// Observe returns the baseline for obs and then records obs. The baseline is
// nil when no earlier sample falls inside the lookback. An observation older
// than the lookback measured from the series' newest sample is not recorded.
func (w *Window) Observe(obs domain.Observation) *float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := seriesKey{entity: obs.EntityID, metric: obs.Metric}
	samples := w.series[key]

	newest := obs.Timestamp
	if n := len(samples); n > 0 && samples[n-1].at.After(newest) {
		newest = samples[n-1].at
	}
	samples = dropBefore(samples, newest.Add(-w.lookback))

	var baseline *float64
	from := sort.Search(len(samples), func(i int) bool {
		return !samples[i].at.Before(obs.Timestamp.Add(-w.lookback))
	})
	if from < len(samples) && !samples[from].at.After(obs.Timestamp) {
		v := samples[from].value
		baseline = &v
	}

	if !obs.Timestamp.Before(newest.Add(-w.lookback)) {
		at := sort.Search(len(samples), func(i int) bool {
			return samples[i].at.After(obs.Timestamp)
		})
		samples = slices.Insert(samples, at, sample{at: obs.Timestamp, value: obs.Value})
	}

	if len(samples) == 0 {
		delete(w.series, key)
	} else {
		w.series[key] = samples
	}
	w.sweep(newest)
	return baseline
}

// sweep drops series whose newest sample left the lookback, at most once per
// lookback period.
func (w *Window) sweep(now time.Time) {
	if now.Sub(w.lastSweep) < w.lookback {
		return
	}
	w.lastSweep = now

	cutoff := now.Add(-w.lookback)
	for key, samples := range w.series {
		if samples[len(samples)-1].at.Before(cutoff) {
			delete(w.series, key)
		}
	}
}

func dropBefore(samples []sample, cutoff time.Time) []sample {
	i := sort.Search(len(samples), func(i int) bool {
		return !samples[i].at.Before(cutoff)
	})
	return samples[i:]
}

// Len returns the number of samples held for an entity and metric.
func (w *Window) Len(entity string, metric domain.Metric) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.series[seriesKey{entity: entity, metric: metric}])
}

// Series returns the number of entity and metric pairs being tracked.
func (w *Window) Series() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.series)
}
