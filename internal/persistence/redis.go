package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/warden/internal/config"
)

// Redis owns the client behind the redis credential store.
type Redis struct {
	Client *redis.Client
}

// NewRedis opens a client and fails unless the server answers within cfg.ConnectTimeout,
// matching the postgres driver.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(clientOptions(cfg))

	if err := pingWithin(ctx, cfg.ConnectTimeout, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	logger.Info("credential store ready",
		zap.String("driver", config.StoreDriverRedis),
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.String("key_prefix", cfg.KeyPrefix),
	)
	return &Redis{Client: client}, nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

func clientOptions(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout
	}
	return opts
}
