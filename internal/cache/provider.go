// Package cache provides short-lived key/value storage for webhook
// idempotency and checkout handoffs.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for short-lived string values.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// Take returns the value and removes it in one step, so only one caller can read it.
	Take(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider      string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MemorySize    int
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider(cfg.MemorySize)
	case "redis":
		opts, err := redisOptions(cfg)
		if err != nil {
			return nil, err
		}
		return NewRedisProvider(opts)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

func WebhookKey(source, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", source, eventID)
}

func HandoffKey(token string) string {
	return fmt.Sprintf("handoff:%s", token)
}
