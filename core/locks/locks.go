package locks

import "sync"

// KeyedMutex serializes work per string key. Callers for different keys
// proceed in parallel.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func. The number
// of distinct keys is bounded by the studio's live instances, so entries
// are kept rather than reference counted.
func (l *KeyedMutex) Lock(key string) func() {
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

var instances = New()

// Instance serializes booking and override commands addressed to the same
// (schedule, date) class instance. Two simultaneous Book commands for the
// last spot, or a Book racing a whole-instance cancellation, cannot both
// pass their checks.
func Instance(key string) func() {
	return instances.Lock(key)
}
