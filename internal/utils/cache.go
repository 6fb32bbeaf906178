package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // Cached values are stored as JSON
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"strconv"       // Key formatting
	"time"          // TTLs

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache loads key into dest. found reports whether the key existed, so a
// true found with a non-nil error means the stored payload could not be decoded.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (found bool, err error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil // Miss
	}
	if err != nil {
		return false, fmt.Errorf("read cache %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return true, nil
}

// SetCache stores value as JSON under key for ttl
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// DeleteCache evicts a single entry, used for payloads that no longer decode
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("evict cache %s: %w", key, err)
	}
	return nil
}

// GetVersion reads a namespace version counter, zero when unset
func GetVersion(ctx context.Context, rdb *redis.Client, key string) (int64, error) {
	v, err := rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpVersion increments a namespace version counter. Keys built from the
// previous version become unreachable and expire on their own TTL.
func BumpVersion(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Incr(ctx, key).Err()
}

// TodoVersionKey is the per-user version counter for cached todo pages
func TodoVersionKey(userID uint) string {
	return "todos:user:" + strconv.FormatUint(uint64(userID), 10) + ":version"
}

// TodoListKey is the cache key for one filtered page of a user's todos
func TodoListKey(userID uint, version int64, filterKey string) string {
	return "todos:user:" + strconv.FormatUint(uint64(userID), 10) + ":v" + strconv.FormatInt(version, 10) + ":" + filterKey
}
