package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/account-service/internal/config"
)

// Redis wraps the go-redis client backing the shared rate-limit counters.
// The client connects lazily; callers decide via Ping whether to rely on it
// or fall back to in-process counting.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client from configuration without dialing.
func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}
