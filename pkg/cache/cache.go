// Package cache stores derived render artifacts.
//
// # Overview
//
// The backend is the single source of truth for projects and trees; this
// package never caches them. What it caches is the output of the layout and
// render stages, keyed by a hash of their input, so that re-rendering an
// unchanged tree (for example in the preview server or after "vfconsole
// render" runs in a loop) skips Graphviz entirely.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under ~/.cache/vfconsole (CLI)
//   - [RedisCache]: shared cache for preview servers behind a load balancer
//   - [MongoCache]: shared cache with server-side TTL expiry
//   - [NullCache]: caching disabled
//
// [Open] selects a backend from a [Config].
//
// # Keys
//
// A [Keyer] derives cache keys from content hashes. [ScopedKeyer] prefixes
// every key, e.g. with the user id, to keep tenants apart in a shared
// backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend connections.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}
