// Package cache provides a two-tier byte cache: an in-process L1 map with
// expiry and bounded size, and an optional Redis L2 that survives restarts.
//
// Redis is optional. An empty or unreachable URL leaves the cache running on
// L1 alone. A nil *Cache is valid and always misses.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"replay/internal/logging"
)

// Options configures a Cache.
type Options struct {
	RedisURL   string
	TTL        time.Duration
	MaxEntries int
	Prefix     string
}

// Cache is an L1 memory cache backed by optional Redis.
type Cache struct {
	l1         sync.Map
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int
	prefix     string
	logger     *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// New builds a cache. Redis connection failures are logged and disable L2.
func New(ctx context.Context, opts Options, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		ttl:        ttl,
		maxEntries: opts.MaxEntries,
		prefix:     strings.TrimSpace(opts.Prefix),
		logger:     logger,
	}
	if url := strings.TrimSpace(opts.RedisURL); url != "" {
		redisOpts, err := redis.ParseURL(url)
		if err != nil {
			logger.Warn("invalid redis url; L2 cache disabled", logging.Error(err))
			return c
		}
		rdb := redis.NewClient(redisOpts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable; L2 cache disabled",
				logging.String("addr", redisOpts.Addr),
				logging.Error(err),
			)
			_ = rdb.Close()
			return c
		}
		c.rdb = rdb
		logger.Debug("L2 redis cache connected", logging.String("addr", redisOpts.Addr))
	}
	return c
}

// NewMemory builds an L1-only cache that never connects to Redis, whatever
// opts.RedisURL says. Nothing stored in it outlives the Cache value.
func NewMemory(opts Options, logger *slog.Logger) *Cache {
	opts.RedisURL = ""
	return New(context.Background(), opts, logger)
}

// Key builds a deterministic cache key from parts.
func (c *Cache) Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	prefix := "replay"
	if c != nil && c.prefix != "" {
		prefix = c.prefix
	}
	return fmt.Sprintf("%s:%x", prefix, sum[:12])
}

// Get tries L1 then L2. An L2 hit repopulates L1.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	if val, ok := c.l1.Load(key); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) {
			c.hits.Add(1)
			return e.data, true
		}
		c.l1.Delete(key)
	}
	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			c.hits.Add(1)
			c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})
			return data, true
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("L2 cache get failed", logging.Error(err))
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores data in both tiers.
func (c *Cache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	c.evictIfNeeded()
	c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("L2 cache set failed", logging.Error(err))
		}
	}
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Close releases the Redis connection, if any.
func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetJSON decodes a cached JSON value.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	data, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// SetJSON encodes value as JSON and stores it.
func SetJSON[T any](ctx context.Context, c *Cache, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, data)
}

// evictIfNeeded drops expired entries, then the oldest, until L1 is under
// maxEntries.
func (c *Cache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}
	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}
	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return true
	})
	for count >= c.maxEntries {
		var oldestKey any
		var oldestAt time.Time
		c.l1.Range(func(key, val any) bool {
			e, ok := val.(*entry)
			if ok && (oldestKey == nil || e.expiresAt.Before(oldestAt)) {
				oldestKey = key
				oldestAt = e.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}
