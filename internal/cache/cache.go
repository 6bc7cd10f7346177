// Package cache keeps recent extraction results keyed by a digest of their input.
// Tier 1 is an in-process expirable LRU, tier 2 an optional Redis shared by replicas.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/labextract-server/internal/domain"
)

const keyPrefix = "labextract:result:"

// Stats are the cache counters since start.
type Stats struct {
	Hits        int64 `json:"hits"`
	MemoryHits  int64 `json:"memory_hits"`
	RedisHits   int64 `json:"redis_hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	RedisErrors int64 `json:"redis_errors"`
	Size        int   `json:"size"`
}

// ResultCache is a two-tier extraction result cache. Values are stored encoded, so callers
// always receive their own copy.
type ResultCache struct {
	memory   *expirable.LRU[string, []byte]
	redis    *redis.Client
	redisTTL time.Duration
	log      *logrus.Logger

	memoryHits  atomic.Int64
	redisHits   atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	redisErrors atomic.Int64
}

// New creates a cache from configuration and connects to Redis when a URL is set.
func New(ctx context.Context, config domain.CacheConfig, logger *logrus.Logger) (*ResultCache, error) {
	var client *redis.Client
	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		if config.PoolSize > 0 {
			opts.PoolSize = config.PoolSize
		}
		if config.PoolTimeout > 0 {
			opts.PoolTimeout = config.PoolTimeout
		}
		opts.MaxRetries = config.MaxRetries

		client = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}
	return NewWithClient(config, client, logger), nil
}

// NewWithClient creates a cache around an existing Redis client, which may be nil.
func NewWithClient(config domain.CacheConfig, client *redis.Client, logger *logrus.Logger) *ResultCache {
	if config.MaxItems <= 0 {
		config.MaxItems = 1000
	}
	if config.MemoryTTL <= 0 {
		config.MemoryTTL = 15 * time.Minute
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.New()
	}

	c := &ResultCache{
		redis:    client,
		redisTTL: config.DefaultTTL,
		log:      logger,
	}
	c.memory = expirable.NewLRU[string, []byte](config.MaxItems, func(string, []byte) {
		c.evictions.Add(1)
	}, config.MemoryTTL)
	return c
}

// Key derives the cache key of an extraction. fingerprint identifies the engine
// configuration so that a retuned engine never serves stale results.
func Key(text string, hint domain.DocumentType, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(hint))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up a result, promoting Redis hits into memory.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.ExtractionResult, bool) {
	if data, ok := c.memory.Get(key); ok {
		if res, err := decode(data); err == nil {
			c.memoryHits.Add(1)
			return res, true
		}
		c.memory.Remove(key)
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
		switch {
		case err == nil:
			if res, decErr := decode(data); decErr == nil {
				c.memory.Add(key, data)
				c.redisHits.Add(1)
				return res, true
			}
		case !errors.Is(err, redis.Nil):
			c.redisErrors.Add(1)
			c.log.WithError(err).Warn("Redis cache lookup failed")
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores a result in both tiers. Redis failures are logged and otherwise ignored.
func (c *ResultCache) Set(ctx context.Context, key string, result *domain.ExtractionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	c.memory.Add(key, data)

	if c.redis != nil {
		if err := c.redis.Set(ctx, keyPrefix+key, data, c.redisTTL).Err(); err != nil {
			c.redisErrors.Add(1)
			c.log.WithError(err).Warn("Redis cache store failed")
		}
	}
	return nil
}

// Invalidate drops every cached result.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	c.memory.Purge()
	if c.redis == nil {
		return nil
	}
	iter := c.redis.Scan(ctx, 0, keyPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Stats returns the current counters.
func (c *ResultCache) Stats() Stats {
	mem, red := c.memoryHits.Load(), c.redisHits.Load()
	return Stats{
		Hits:        mem + red,
		MemoryHits:  mem,
		RedisHits:   red,
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		RedisErrors: c.redisErrors.Load(),
		Size:        c.memory.Len(),
	}
}

// Healthy pings Redis when configured.
func (c *ResultCache) Healthy(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

// Close releases the Redis client.
func (c *ResultCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func decode(data []byte) (*domain.ExtractionResult, error) {
	var res domain.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
