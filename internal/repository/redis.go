package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for records
	recordKeyPrefix = "asksarkar:record:"
)

// RedisStore implements RecordStore using Redis.
// A zero TTL keeps records until they are deleted.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ RecordStore = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-based record store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Load implements RecordStore.
func (s *RedisStore) Load(ctx context.Context, key string, v any) (bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), v); err != nil {
		return false, fmt.Errorf("decode record %s: %w", key, err)
	}
	return true, nil
}

// Save implements RecordStore.
func (s *RedisStore) Save(ctx context.Context, key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	return s.client.Set(ctx, s.key(key), val, s.ttl).Err()
}

// Delete implements RecordStore.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close implements RecordStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(key string) string {
	return recordKeyPrefix + key
}
