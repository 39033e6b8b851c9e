package ratelimit

import (
	"sync"
	"time"
)

// CooldownStore tracks the last accepted invocation per key and enforces a
// fixed quiet period between invocations of the same key.
type CooldownStore struct {
	mu       sync.Mutex
	last     map[string]time.Time
	cooldown time.Duration
}

func NewCooldownStore(cooldown time.Duration) *CooldownStore {
	return &CooldownStore{
		last:     make(map[string]time.Time),
		cooldown: cooldown,
	}
}

// Remaining returns how long the key still has to wait. Zero means the key is
// free to proceed.
func (s *CooldownStore) Remaining(key string, now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.last[key]
	if !ok {
		return 0
	}
	remaining := s.cooldown - now.Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Touch records an accepted invocation for the key.
func (s *CooldownStore) Touch(key string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[key] = now
}

// Reset clears the cooldown for the key.
func (s *CooldownStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, key)
}
