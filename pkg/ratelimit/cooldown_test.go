package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownStore(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	store := NewCooldownStore(time.Hour)

	assert.Zero(t, store.Remaining("user-1", now))

	store.Touch("user-1", now)
	assert.Equal(t, 30*time.Minute, store.Remaining("user-1", now.Add(30*time.Minute)))
	assert.Zero(t, store.Remaining("user-1", now.Add(61*time.Minute)))

	// Keys are independent.
	assert.Zero(t, store.Remaining("user-2", now))
}

func TestCooldownStoreReset(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	store := NewCooldownStore(time.Hour)

	store.Touch("user-1", now)
	store.Reset("user-1")
	assert.Zero(t, store.Remaining("user-1", now))
}
