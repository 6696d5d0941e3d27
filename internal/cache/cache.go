// Package cache provides the TTL key/value store every upstream gateway
// funnels its calls through. A zero TTL means the entry never expires until
// it is overwritten; expiry is otherwise evaluated at read time.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a key/value store with optional per-entry expiry.
type Store interface {
	// Get returns the stored value for key, or ok=false when the key is
	// absent or its entry has expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key. A ttl of 0 means the entry never expires
	// until overwritten.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteExpired removes expired entries and reports how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// GetOrSet returns the cached value for key, or invokes factory, stores its
// result and returns it. Values are stored as JSON.
//
// Concurrent callers for the same key are not collapsed: each miss invokes
// the factory, and the last write wins. Duplicate upstream calls under races
// are acceptable; callers must not rely on single-flight behavior.
//
// A storage read error is treated as a miss so a cache outage degrades to
// "always miss" rather than failing requests that the upstream could serve.
// A storage write error is returned, as is any factory error.
func GetOrSet[T any](ctx context.Context, s Store, key string, ttl time.Duration, factory func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, ok, err := s.Get(ctx, key)
	if err == nil && ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		// Undecodable entry (e.g. shape change between versions): fall
		// through and refresh it.
	}

	value, err := factory(ctx)
	if err != nil {
		return zero, err
	}

	data, err = json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("failed to encode cache value for %q: %w", key, err)
	}

	if err := s.Set(ctx, key, data, ttl); err != nil {
		return zero, fmt.Errorf("failed to store cache value for %q: %w", key, err)
	}

	return value, nil
}
