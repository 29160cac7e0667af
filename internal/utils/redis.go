package utils

import (
	"context"

	"panveliq/internal/config"
	"panveliq/internal/utils/logger"

	"github.com/redis/go-redis/v9"
)

var redisLog = logger.New("redis")

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, redisLog.Error("failed to connect to redis", err)
	}

	redisLog.Success("connected to %s", cfg.Addr)
	return client, nil
}
