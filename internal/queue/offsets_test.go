package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetTracker_Finished(t *testing.T) {
	t.Parallel()

	type step struct {
		offset     int64
		wantCommit int64
		wantOK     bool
	}

	tests := []struct {
		name    string
		fetched []int64
		steps   []step
	}{
		{
			name:    "in order",
			fetched: []int64{1, 2, 3},
			steps: []step{
				{offset: 1, wantCommit: 1, wantOK: true},
				{offset: 2, wantCommit: 2, wantOK: true},
				{offset: 3, wantCommit: 3, wantOK: true},
			},
		},
		{
			name:    "later record waits for earlier",
			fetched: []int64{5, 6, 7},
			steps: []step{
				{offset: 7},
				{offset: 6},
				{offset: 5, wantCommit: 7, wantOK: true},
			},
		},
		{
			name:    "gap holds the commit",
			fetched: []int64{1, 2, 3},
			steps: []step{
				{offset: 1, wantCommit: 1, wantOK: true},
				{offset: 3},
				{offset: 2, wantCommit: 3, wantOK: true},
			},
		},
		{
			name:    "unknown offset ignored",
			fetched: []int64{1},
			steps:   []step{{offset: 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := newOffsetTracker()
			for _, off := range tt.fetched {
				tr.fetched(0, off)
			}
			for _, s := range tt.steps {
				commit, ok := tr.finished(0, s.offset)
				assert.Equal(t, s.wantOK, ok, "offset %d", s.offset)
				if s.wantOK {
					assert.Equal(t, s.wantCommit, commit, "offset %d", s.offset)
				}
			}
		})
	}
}

func TestOffsetTracker_PartitionsIndependent(t *testing.T) {
	t.Parallel()

	tr := newOffsetTracker()
	tr.fetched(0, 10)
	tr.fetched(1, 4)
	tr.fetched(0, 11)

	_, ok := tr.finished(0, 11)
	assert.False(t, ok)

	commit, ok := tr.finished(1, 4)
	assert.True(t, ok)
	assert.Equal(t, int64(4), commit)
}

func TestOffsetTracker_RewindResets(t *testing.T) {
	t.Parallel()

	tr := newOffsetTracker()
	tr.fetched(0, 20)
	tr.fetched(0, 21)

	// The reader rewinds to the committed offset after a rebalance.
	tr.fetched(0, 20)

	_, ok := tr.finished(0, 21)
	assert.False(t, ok, "offset 21 from before the rewind is gone")

	commit, ok := tr.finished(0, 20)
	assert.True(t, ok)
	assert.Equal(t, int64(20), commit)
}
