package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces wantlist keys in a shared Redis database.
const DefaultRedisPrefix = "wantlist:"

// redisScanCount is the COUNT hint used while scanning keys for Clear and Stats.
const redisScanCount = 100

// RedisStore keeps entries in Redis and lets the server expire them.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	ttlSeconds int
}

var _ Store = (*RedisStore)(nil)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// NewRedisStore wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string, ttlSeconds int) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttlSeconds: ttlSeconds}
}

// Get fetches and decodes the entry for key.
func (s *RedisStore) Get(ctx context.Context, key string) (*CacheEntry, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if unmarshalErr := json.Unmarshal(raw, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}
	if entry.IsExpired() {
		return nil, ErrCacheExpired
	}
	return &entry, nil
}

// Set stores the entry with a server-side expiry equal to the TTL.
func (s *RedisStore) Set(ctx context.Context, key, source string, data jsoniter.RawMessage) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	entry := NewCacheEntry(key, source, data, s.ttlSeconds)
	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	ttl := time.Duration(s.ttlSeconds) * time.Second
	if err = s.client.Set(ctx, s.prefix+key, string(encoded), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear deletes every key under the store prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.scan(ctx, func(keys []string) error {
		if len(keys) == 0 {
			return nil
		}
		return s.client.Del(ctx, keys...).Err()
	})
}

// Stats counts keys under the prefix. Byte sizes are not tracked for Redis.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: BackendRedis}
	err := s.scan(ctx, func(keys []string) error {
		stats.Entries += len(keys)
		return nil
	})
	return stats, err
}

// IsEnabled always reports true; a Redis store only exists when configured.
func (s *RedisStore) IsEnabled() bool {
	return true
}

func (s *RedisStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", redisScanCount).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if err = fn(keys); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
