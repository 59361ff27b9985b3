package port

import (
	"context"
	"time"
)

// Cache stores JSON-serialized values with TTLs. Implementations must treat
// provider failures as non-fatal: Get misses, writes are best-effort.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key
	// was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	RemoveByPrefix(ctx context.Context, prefix string) error
}
