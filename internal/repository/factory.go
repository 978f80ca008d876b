package repository

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecordStoreType represents the backend used for persisted records.
type RecordStoreType string

const (
	RecordStoreMemory RecordStoreType = "memory"
	RecordStoreSQLite RecordStoreType = "sqlite"
	RecordStoreRedis  RecordStoreType = "redis"
)

var (
	// ErrInvalidStoreType is returned for an unknown record store type.
	ErrInvalidStoreType = errors.New("invalid record store type")
	// ErrInvalidConfig is returned when a store type lacks its required option.
	ErrInvalidConfig = errors.New("invalid record store configuration")
)

type recordStoreConfig struct {
	sqlite      *SQLiteStore
	redisClient *redis.Client
	redisTTL    time.Duration
}

// RecordStoreOption configures NewRecordStore.
type RecordStoreOption func(*recordStoreConfig)

// WithSQLiteStore reuses an open SQLite store for records.
func WithSQLiteStore(s *SQLiteStore) RecordStoreOption {
	return func(c *recordStoreConfig) {
		c.sqlite = s
	}
}

// WithRedisClient sets the Redis client for the redis type.
func WithRedisClient(client *redis.Client) RecordStoreOption {
	return func(c *recordStoreConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the expiry of Redis records.
func WithRedisTTL(ttl time.Duration) RecordStoreOption {
	return func(c *recordStoreConfig) {
		c.redisTTL = ttl
	}
}

// NewRecordStore creates a RecordStore of the given type.
// The sqlite type requires WithSQLiteStore and the redis type WithRedisClient.
func NewRecordStore(storeType RecordStoreType, opts ...RecordStoreOption) (RecordStore, error) {
	config := &recordStoreConfig{}
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case RecordStoreMemory:
		return NewMemoryStore(), nil
	case RecordStoreSQLite:
		if config.sqlite == nil {
			return nil, ErrInvalidConfig
		}
		return sharedSQLite{config.sqlite}, nil
	case RecordStoreRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return NewRedisStore(config.redisClient, config.redisTTL), nil
	default:
		return nil, ErrInvalidStoreType
	}
}

// sharedSQLite exposes an SQLiteStore as a RecordStore without owning it.
type sharedSQLite struct {
	*SQLiteStore
}

// Close is a no-op; the owner of the SQLiteStore closes it.
func (sharedSQLite) Close() error { return nil }
