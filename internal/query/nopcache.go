package query

import (
	"context"
	"time"
)

// NopCache is a cache that stores nothing and always misses. The read
// path degrades to plain store reads when backed by it.
type NopCache struct{}

// NewNopCache creates a no-op cache.
func NewNopCache() *NopCache {
	return &NopCache{}
}

// Get always reports a miss.
func (NopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

// Set discards the value.
func (NopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
