package dispatch

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// stripedLock serializes work per key with a fixed pool of mutexes. Keys that
// hash to the same stripe share a mutex.
type stripedLock struct {
	stripes []sync.Mutex
}

func newStripedLock(n int) *stripedLock {
	if n <= 0 {
		n = defaultStripes
	}
	return &stripedLock{stripes: make([]sync.Mutex, n)}
}

func (l *stripedLock) get(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}
