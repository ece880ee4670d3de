package cache

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"strings"
	"time"
)

const (
	keyPrefix    = "dotxch:cache:"
	redisTimeout = 3 * time.Second
	scanCount    = 200
)

// RedisCache shares entries between resolver instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func ctxTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisTimeout)
}

func (r *RedisCache) Set(key string, entry []byte) error {
	ctx, cancel := ctxTimeout()
	defer cancel()
	return r.client.Set(ctx, keyPrefix+key, entry, r.ttl).Err()
}

func (r *RedisCache) Get(key string) ([]byte, error) {
	ctx, cancel := ctxTimeout()
	defer cancel()
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEntryNotFound
	}
	return data, err
}

func (r *RedisCache) Delete(key string) error {
	ctx, cancel := ctxTimeout()
	defer cancel()
	return r.client.Del(ctx, keyPrefix+key).Err()
}

func (r *RedisCache) Keys() ([]string, error) {
	ctx, cancel := ctxTimeout()
	defer cancel()
	keys := make([]string, 0)
	it := r.client.Scan(ctx, 0, keyPrefix+"*", scanCount).Iterator()
	for it.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(it.Val(), keyPrefix))
	}
	return keys, it.Err()
}

func (r *RedisCache) Len() int {
	keys, err := r.Keys()
	if err != nil {
		return 0
	}
	return len(keys)
}

func (r *RedisCache) Reset() error {
	keys, err := r.Keys()
	if err != nil || len(keys) == 0 {
		return err
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, keyPrefix+k)
	}
	ctx, cancel := ctxTimeout()
	defer cancel()
	return r.client.Del(ctx, full...).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
