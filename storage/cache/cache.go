// Package cache provides an in-process key-value store whose entries expire after a fixed TTL.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store is safe for concurrent use. Expiry is checked on read only: an expired entry
// reads as a miss and stays in memory until it is overwritten.
type Store[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	mutex sync.RWMutex
	data  map[string]entry[V]
}

type Option[V any] func(*Store[V])

// WithClock replaces the clock used to stamp and expire entries.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *Store[V]) { s.now = now }
}

func New[V any](ttl time.Duration, opts ...Option[V]) *Store[V] {
	s := &Store[V]{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]entry[V]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key if it is younger than the TTL.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mutex.RLock()
	e, ok := s.data[key]
	s.mutex.RUnlock()

	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (s *Store[V]) Set(key string, value V) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[key] = entry[V]{value: value, storedAt: s.now()}
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[V]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}
