// Package cache stores rendered artifacts so repeated exports of an
// unchanged map skip the renderer.
//
// Keys are derived from the serialized tree and the render options (see
// [Keyer]), so any edit to the map or change of options is a miss. Two
// implementations exist: [FileCache] for the CLI and the server, and
// [NullCache] when caching is disabled with --no-cache.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().RenderKey(cache.Hash(tree), cache.RenderKeyOpts{Format: "svg"})
//	svg, err := cache.Fetch(ctx, c, key, cache.DefaultTTL, func() ([]byte, error) {
//	    return render(tree)
//	})
package cache

import (
	"context"
	"time"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/observability"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or expiry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// Fetch returns the cached value for key, or calls compute and caches its
// result. A failed cache write is not an error: the computed value is
// still returned.
func Fetch(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, error) {
	hooks := observability.Cache()
	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, key)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, key)

	data, err := compute()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, key, len(data))
	}
	return data, nil
}
