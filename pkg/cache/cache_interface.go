package cache

import (
	"context"
	"time"
)

// Cache is the contract of the key/value layer. Implementations must treat a miss as
// (false, nil), never as an error.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error

	// Counters, used by the confirmation-code attempt limiter.
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
