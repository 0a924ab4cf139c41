// Package cache stores computed plans so identical requests skip the search.
//
// A Cache is a byte store with per-entry expiry. Keys come from a Keyer,
// which hashes the manifest together with every input that can change the
// resulting plan. Three backends ship with the package:
//
//   - NullCache: never stores anything (--no-cache, tests)
//   - FileCache: JSON entry files under a directory (CLI default)
//   - RedisCache: a shared Redis instance (server deployments)
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// PlanTTL is how long a computed plan stays cached.
	PlanTTL = 7 * 24 * time.Hour

	// ManifestTTL is how long a parsed manifest stays cached.
	ManifestTTL = 24 * time.Hour
)

// Cache is a key/value store for serialized results.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache is the backend behind --no-cache: writes vanish and every
// lookup misses.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
