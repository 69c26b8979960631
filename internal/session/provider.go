package session

import (
	"context"
	"fmt"
	"strings"
)

// Session store providers accepted by SESSION_STORE_PROVIDER.
const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
)

type Config struct {
	Provider      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewStore opens the configured store. Memory suits a single instance; carts
// only survive across instances and restarts with Redis.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", ProviderMemory:
		return NewMemoryStore(), nil
	case ProviderRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redis session store requires an address")
		}
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported session store provider: %s", cfg.Provider)
	}
}
