// Package cache stores rendered artifacts (page HTML, thumbnails, outline
// diagrams) keyed by a hash of the document and the render options.
//
// Keys are content addressed: saving a new draft changes the document hash,
// so stale entries are never served and need no invalidation. TTLs only bound
// disk and memory use.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry, for the CLI and single servers
//   - [RedisCache]: shared cache for multi-instance servers
package cache

import (
	"context"
	"time"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/observability"
)

// Cache is the interface every backend implements.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Key types reported to observability hooks.
const (
	KeyTypePage      = "page"
	KeyTypeThumbnail = "thumbnail"
	KeyTypeOutline   = "outline"
)

// GetOrCompute returns the cached value for key, or runs compute and stores
// its result. Cache read and write failures are not fatal: the value is
// computed (or returned) anyway.
func GetOrCompute(ctx context.Context, c Cache, keyType, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
