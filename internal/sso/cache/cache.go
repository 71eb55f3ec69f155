// Package cache provides a small byte-value TTL cache used for provider
// discovery documents. The value format is the caller's concern.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache: miss")

// Cache is a TTL key/value store. Get returns ErrMiss for unknown or
// expired keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
