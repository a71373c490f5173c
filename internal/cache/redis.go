// Package cache holds the Redis backend for estimate caching. The SQLite
// backend lives next to the rest of the storage code in service.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/izikbr/calorific2-app/internal/model"
)

const keyPrefix = "calorific:estimate:"

type entry struct {
	Kind     string               `json:"kind"`
	Items    []model.FoodEstimate `json:"items"`
	StoredAt int64                `json:"stored_at"`
}

// RedisEstimateCache stores estimator answers as JSON strings with a TTL.
type RedisEstimateCache struct {
	client *redis.Client
}

// NewRedisEstimateCache connects to redisURL and pings it once.
func NewRedisEstimateCache(ctx context.Context, redisURL string) (*RedisEstimateCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisEstimateCache{client: client}, nil
}

func (r *RedisEstimateCache) Close() error {
	return r.client.Close()
}

func (r *RedisEstimateCache) Get(ctx context.Context, key string) ([]model.FoodEstimate, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get estimate from redis: %w", err)
	}
	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, false, fmt.Errorf("decode redis estimate: %w", err)
	}
	return e.Items, true, nil
}

func (r *RedisEstimateCache) Put(ctx context.Context, key, kind string, items []model.FoodEstimate, ttl time.Duration) error {
	data, err := json.Marshal(entry{Kind: kind, Items: items, StoredAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("encode redis estimate: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("store estimate in redis: %w", err)
	}
	return nil
}

// Purge removes every cached estimate and reports how many keys went.
func (r *RedisEstimateCache) Purge(ctx context.Context) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("delete redis estimate: %w", err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan redis estimates: %w", err)
	}
	return removed, nil
}
