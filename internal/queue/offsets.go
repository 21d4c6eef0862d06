package queue

import (
	"slices"
	"sync"
)

// offsetTracker orders commits per partition. Workers finish records in any
// order, but a partition's committed offset only advances past a record once
// every earlier fetched record has finished, so the group offset never moves
// backwards or skips unfinished work.
type offsetTracker struct {
	mu    sync.Mutex
	parts map[int]*partitionOffsets
}

type partitionOffsets struct {
	// pending holds fetched offsets not yet committed, in fetch order.
	pending []int64
	done    map[int64]struct{}
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{parts: make(map[int]*partitionOffsets)}
}

// fetched registers a record handed out by the reader. A fetch at or below
// the newest tracked offset means the reader rewound after a rebalance, so
// the partition's state starts over.
func (t *offsetTracker) fetched(partition int, offset int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.parts[partition]
	if !ok || (len(p.pending) > 0 && offset <= p.pending[len(p.pending)-1]) {
		p = &partitionOffsets{done: make(map[int64]struct{})}
		t.parts[partition] = p
	}
	p.pending = append(p.pending, offset)
}

// finished marks a record done and returns the highest offset that is now
// safe to commit. ok is false when nothing new can be committed yet.
func (t *offsetTracker) finished(partition int, offset int64) (commit int64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, found := t.parts[partition]
	if !found || !slices.Contains(p.pending, offset) {
		return 0, false
	}
	p.done[offset] = struct{}{}

	n := 0
	for n < len(p.pending) {
		if _, isDone := p.done[p.pending[n]]; !isDone {
			break
		}
		delete(p.done, p.pending[n])
		commit, ok = p.pending[n], true
		n++
	}
	p.pending = p.pending[n:]
	return commit, ok
}
