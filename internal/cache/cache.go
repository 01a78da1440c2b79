package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/source"

	"github.com/go-redis/redis/v8"
)

const sourcesKey = "catalog:sources"

// ErrCacheMiss means Redis holds no cached copy of the catalog sources.
var ErrCacheMiss = errors.New("no cached catalog sources")

// Cache keeps the last successfully fetched source payloads in Redis so
// the catalog stays buildable while the sources are unreachable. Loads
// are network-first: the cache is only read after a fetch has failed.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a Redis-backed source cache. ttl bounds how long a
// cached copy may serve as fallback; zero means no expiry.
func NewCache(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// StoreSources saves the raw source payloads as the fallback copy.
func (c *Cache) StoreSources(ctx context.Context, payloads *source.Payloads) error {
	data, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("failed to marshal source payloads: %w", err)
	}
	if err := c.rdb.Set(ctx, sourcesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache source payloads: %w", err)
	}
	return nil
}

// LoadSources returns the cached source payloads, or ErrCacheMiss when
// none are stored.
func (c *Cache) LoadSources(ctx context.Context) (*source.Payloads, error) {
	data, err := c.rdb.Get(ctx, sourcesKey).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached sources: %w", err)
	}

	var payloads source.Payloads
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached sources: %w", err)
	}
	return &payloads, nil
}
