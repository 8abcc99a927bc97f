// Package cache stores fetched registry manifests and finished analysis
// reports as opaque byte blobs with a TTL.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// Keys are built by a [Keyer] so every backend agrees on the layout. Wrap a
// keyer with [NewScopedKeyer] to isolate entries of different registries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
// A miss is reported as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
