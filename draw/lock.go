// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import "sync"

// KeyedLock hands out at most one holder per key. Entries are removed on
// release so the map only holds keys currently in use.
type KeyedLock struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{held: make(map[int64]struct{})}
}

// TryAcquire returns false if key is already held
func (l *KeyedLock) TryAcquire(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

func (l *KeyedLock) Release(key int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}
