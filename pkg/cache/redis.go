package cache

import (
	"context"
	"encoding/json"
	"time"

	"triviahub/internal/models"

	"github.com/go-redis/redis/v8"
)

// boardTTL bounds how stale a cached board can get if an invalidation is
// ever missed.
const boardTTL = time.Hour

// RedisCache stores leaderboard listings keyed by category/difficulty.
// Entries are dropped whenever an upsert changes the board.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func boardKey(category, difficulty string) string {
	return "leaderboard:" + category + ":" + difficulty
}

func (c *RedisCache) SetBoard(category, difficulty string, entries []models.ScoreDTO) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, boardKey(category, difficulty), data, boardTTL).Err()
}

func (c *RedisCache) GetBoard(category, difficulty string) ([]models.ScoreDTO, error) {
	data, err := c.client.Get(c.ctx, boardKey(category, difficulty)).Bytes()
	if err != nil {
		return nil, err
	}

	var entries []models.ScoreDTO
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *RedisCache) InvalidateBoard(category, difficulty string) error {
	return c.client.Del(c.ctx, boardKey(category, difficulty)).Err()
}
