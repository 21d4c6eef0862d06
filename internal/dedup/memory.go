package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard keeps windows in process memory. It is only correct when a
// single evaluator instance creates notifications.
type MemoryGuard struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	now    func() time.Time
	hits   map[string][]time.Time
}

// MemoryOption configures a MemoryGuard.
type MemoryOption func(*MemoryGuard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(g *MemoryGuard) {
		g.now = now
	}
}

// NewMemoryGuard creates a guard allowing maxCount creations per window.
func NewMemoryGuard(window time.Duration, maxCount int, opts ...MemoryOption) *MemoryGuard {
	g := &MemoryGuard{
		window: window,
		max:    max(maxCount, 1),
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow implements Guard.
func (g *MemoryGuard) Allow(_ context.Context, key Key) (bool, error) {
	now := g.now()
	k := key.String()

	g.mu.Lock()
	defer g.mu.Unlock()

	live := prune(g.hits[k], now.Add(-g.window))
	if len(live) >= g.max {
		g.hits[k] = live
		return false, nil
	}
	g.hits[k] = append(live, now)
	return true, nil
}

// Sweep drops windows with no live entries and returns how many keys
// remain.
func (g *MemoryGuard) Sweep() int {
	cutoff := g.now().Add(-g.window)

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, ts := range g.hits {
		live := prune(ts, cutoff)
		if len(live) == 0 {
			delete(g.hits, k)
			continue
		}
		g.hits[k] = live
	}
	return len(g.hits)
}

// prune returns the entries strictly newer than cutoff. ts is ordered.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}
