package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "cache:"
	redisDialTimeout = 5 * time.Second
)

// RedisProvider shares cache entries across storefront instances.
type RedisProvider struct {
	client *redis.Client
}

func redisOptions(cfg Config) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
		}
		return opts, nil
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	return &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewRedisProvider(opts *redis.Options) (*RedisProvider, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisProvider{client: client}, nil
}

func (r *RedisProvider) Get(ctx context.Context, key string) (string, error) {
	return stringOrNotFound(r.client.Get(ctx, redisCacheKey(key)))
}

func (r *RedisProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, redisCacheKey(key), value, ttl).Err()
}

func (r *RedisProvider) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, redisCacheKey(key), value, ttl).Result()
}

// Take uses GETDEL so concurrent callers cannot both read the value.
func (r *RedisProvider) Take(ctx context.Context, key string) (string, error) {
	return stringOrNotFound(r.client.GetDel(ctx, redisCacheKey(key)))
}

func stringOrNotFound(cmd *redis.StringCmd) (string, error) {
	val, err := cmd.Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("redis %s: %w", cmd.Name(), err)
	}
	return val, nil
}

func (r *RedisProvider) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, redisCacheKey(key)).Err()
}

func (r *RedisProvider) Close() error {
	return r.client.Close()
}

func redisCacheKey(key string) string {
	return redisKeyPrefix + key
}
