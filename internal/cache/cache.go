package cache

import (
	"context"
	"errors"
)

// Store is durable key-value storage scoped to the device the client runs
// on. The engine serializes its own snapshot format; the store only sees
// opaque strings.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
