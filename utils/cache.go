package utils

import (
	"context"
	"time"

	"harvestmap/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheClient is the Redis client for the popularity ranking cache.
var CacheClient *redis.Client

// InitCache connects the cache client. A failed ping is logged, not fatal:
// the popularity service falls back to counting from the store.
func InitCache() *redis.Client {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := CacheClient.Ping(ctx).Err(); err != nil {
		GetLogger().Warn("Redis cache unreachable at startup", zap.String("addr", config.AppConfig.RedisAddr), zap.Error(err))
	}
	return CacheClient
}

// GetCacheClient returns the cache client, connecting on first use.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}
