package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Driver identifiers supported by the speech cache.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// Cache stores synthesized audio by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, audio []byte) error
	Driver() string
	Close() error
}

// CacheConfig selects and tunes the cache driver.
type CacheConfig struct {
	Driver     string
	TTL        time.Duration
	MaxEntries int
	Redis      RedisConfig
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// NewCache creates a speech cache based on the provided configuration.
func NewCache(ctx context.Context, cfg CacheConfig) (Cache, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}
	switch driver {
	case DriverMemory:
		return NewMemoryCache(cfg.MaxEntries, cfg.TTL), nil
	case DriverRedis:
		return NewRedisCache(ctx, cfg)
	case DriverNone:
		return noopCache{}, nil
	default:
		return nil, fmt.Errorf("unsupported speech cache driver: %s", driver)
	}
}

// MemoryCache 进程内音频缓存，满时淘汰最老的条目
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	audio     []byte
	timestamp time.Time
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 500
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(entry.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.audio, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, audio []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, v := range c.entries {
			if oldestKey == "" || v.timestamp.Before(oldest) {
				oldestKey = k
				oldest = v.timestamp
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = memoryEntry{audio: audio, timestamp: c.now()}
	return nil
}

// Len 返回当前缓存条目数
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Driver() string { return DriverMemory }

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache constructs a redis-backed speech cache.
func NewRedisCache(ctx context.Context, cfg CacheConfig) (Cache, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "accessworld:tts:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, audio []byte) error {
	return c.client.Set(ctx, c.prefix+key, audio, c.ttl).Err()
}

func (c *redisCache) Driver() string { return DriverRedis }

func (c *redisCache) Close() error { return c.client.Close() }

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte) error         { return nil }
func (noopCache) Driver() string                                    { return DriverNone }
func (noopCache) Close() error                                      { return nil }
