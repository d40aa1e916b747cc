package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/opsmock/mockserver-go/internal/model"
)

// redisKey is the single key under which the whole expectation set is
// stored, as a JSON blob. Redis serialises concurrent writers itself, so no
// advisory lock is needed above it.
const redisKey = "mockserver:expectations"

// RedisBackend stores the expectation set as a single JSON blob in Redis.
type RedisBackend struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisBackend connects to a Redis server at addr using password (empty
// for none), selecting DB 0.
func NewRedisBackend(addr, password string) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ctx: context.Background(),
	}
}

// Load fetches and parses the blob. A missing key yields an empty set.
func (b *RedisBackend) Load() ([]*model.Expectation, error) {
	val, err := b.client.Get(b.ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", redisKey, err)
	}

	var expectations []*model.Expectation
	if err := json.Unmarshal([]byte(val), &expectations); err != nil {
		return nil, fmt.Errorf("parse redis blob: %w", err)
	}
	return expectations, nil
}

// Save marshals and overwrites the blob in a single SET.
func (b *RedisBackend) Save(expectations []*model.Expectation) error {
	data, err := json.Marshal(expectations)
	if err != nil {
		return fmt.Errorf("marshal expectations: %w", err)
	}
	if err := b.client.Set(b.ctx, redisKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", redisKey, err)
	}
	return nil
}
