package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// RedisStore keeps snapshots in redis with no TTL; the local store is
// durable session state, not a read-through cache.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func (r RedisStore) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, r.storeKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.storeKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.storeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisStore) storeKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}
