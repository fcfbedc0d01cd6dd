package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskweave/taskweave/internal/config"
)

// Connect dials Redis and verifies the connection with a bounded ping.
// Redis only backs advisory state here (quota cache, burst limiter), so
// callers may choose to treat a failure as non-fatal.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Addr(), err)
	}

	slog.Info("redis ready", "addr", cfg.Addr(), "db", cfg.DB)
	return client, nil
}
