package service

import "sync"

// periodLocks serializes read-modify-write cycles per accounting period so
// concurrent events touching the same month cannot lose updates. Locks are
// never released back to the map; the key space is bounded by the number of
// distinct months observed.
type periodLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPeriodLocks() *periodLocks {
	return &periodLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its release func.
func (l *periodLocks) Lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
