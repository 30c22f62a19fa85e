package popularity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"harvestmap/models"

	"github.com/go-redis/redis/v8"
)

// RankingKey holds the full product ranking.
const RankingKey = "popularity:top"

type RankingCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) ([]models.ProductCount, bool, error)
	Set(ctx context.Context, ranking []models.ProductCount, ttl time.Duration) error
}

type RedisRankingCache struct {
	client *redis.Client
}

func NewRedisRankingCache(client *redis.Client) *RedisRankingCache {
	return &RedisRankingCache{client: client}
}

func (c *RedisRankingCache) Get(ctx context.Context) ([]models.ProductCount, bool, error) {
	val, err := c.client.Get(ctx, RankingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ranking []models.ProductCount
	if err := json.Unmarshal(val, &ranking); err != nil {
		return nil, false, err
	}
	return ranking, true, nil
}

func (c *RedisRankingCache) Set(ctx context.Context, ranking []models.ProductCount, ttl time.Duration) error {
	data, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, RankingKey, data, ttl).Err()
}
