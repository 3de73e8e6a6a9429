// Package cache is the read-through cache used by the token service for
// upstream API responses. Production wires the redis client; tests and
// redis-less runs use the in-memory variant.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/core/redis"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisCache struct{}

func NewRedisCache() *RedisCache {
	return &RedisCache{}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := redis.Get(ctx, key)
	if err == redis.Nil {
		return "", ErrMiss
	}
	if err != nil {
		// A broken redis degrades to an uncached read, never an outage.
		logger.Logrus.WithFields(logrus.Fields{"Key": key, "ErrMsg": err}).Warn("Get redis unavailable, treating as miss")
		return "", ErrMiss
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := redis.Set(ctx, key, value, ttl); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Key": key, "ErrMsg": err}).Warn("Set redis unavailable, skipping cache write")
	}
	return nil
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return "", ErrMiss
	}
	return entry.value, nil
}

func (c *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}
