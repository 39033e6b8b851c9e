package service

import (
	"context"
	"time"
)

// cachedLookup is the shared read path of the persistent caches: load a stored
// value, refresh it through fetch when its TTL has run out, write the fresh
// value back. The price cache additionally serves a stale value when the
// refresh fails.
type cachedLookup[T any] struct {
	// load returns the stored value and its stamp, or found=false on a miss.
	load func(ctx context.Context) (value T, stamp time.Time, found bool, err error)
	// ttl may depend on the current wall clock.
	ttl   func(now time.Time) time.Duration
	fetch func(ctx context.Context) (T, error)
	store func(ctx context.Context, value T, now time.Time) error
	// staleFallback serves the expired stored value when fetch fails.
	staleFallback bool
}

func (c cachedLookup[T]) get(ctx context.Context, now time.Time) (T, error) {
	var zero T

	stored, stamp, found, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	if found && now.Sub(stamp) <= c.ttl(now) {
		return stored, nil
	}

	fresh, err := c.fetch(ctx)
	if err != nil {
		if c.staleFallback && found {
			return stored, nil
		}
		return zero, err
	}

	if err := c.store(ctx, fresh, now); err != nil {
		return zero, err
	}
	return fresh, nil
}
