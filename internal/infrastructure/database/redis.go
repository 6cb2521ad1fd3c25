package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient builds the shared redis client used by the notifier, the
// reminder scheduler and the filter preset store, verifying connectivity
// before handing it out.
func NewRedisClient(cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  connectTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("connected to redis",
		zap.String("addr", cfg.GetAddr()),
		zap.Int("db", cfg.DB))
	return client, nil
}
