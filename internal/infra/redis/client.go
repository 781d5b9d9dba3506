package redis

import (
	"context"
	"fmt"
	"time"

	"pdf-slide-synth/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// NewClient connects to the configured Redis and verifies it with PING.
func NewClient(ctx context.Context, config domain.Config, logger domain.Logger) (goredis.UniversalClient, error) {
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    []string{config.GetRedisAddr()},
		Password: config.GetRedisPassword(),
		DB:       config.GetRedisDB(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.GetRedisAddr(), err)
	}

	logger.Info("Redis client initialized successfully", "addr", config.GetRedisAddr(), "db", config.GetRedisDB())
	return client, nil
}
