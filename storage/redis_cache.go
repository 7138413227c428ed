package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-aggregator/models"
)

const defaultSnapshotKey = "rentals:snapshot:latest"

// RedisCache stores the latest dataset as a single JSON value with a TTL, so
// several API replicas can serve the same snapshot.
type RedisCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Key      string
}

// NewRedisCache connects and pings the server.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return newRedisCache(rdb, opts), nil
}

func newRedisCache(rdb *redis.Client, opts RedisOptions) *RedisCache {
	key := opts.Key
	if key == "" {
		key = defaultSnapshotKey
	}
	return &RedisCache{rdb: rdb, key: key, ttl: opts.TTL}
}

// Save overwrites the snapshot. A zero TTL keeps it until replaced.
func (c *RedisCache) Save(ctx context.Context, ds *models.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("redis: encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", c.key, err)
	}
	return nil
}

// Latest returns ErrNoSnapshot when the key is missing or expired.
func (c *RedisCache) Latest(ctx context.Context) (*models.Dataset, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", c.key, err)
	}

	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return &ds, nil
}

// Write lets the cache double as an output sink.
func (c *RedisCache) Write(ctx context.Context, ds *models.Dataset) error {
	return c.Save(ctx, ds)
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
