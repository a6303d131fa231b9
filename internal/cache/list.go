package cache

import (
	"context"
	"errors"
	"fmt"

	"time"

	"github.com/redis/go-redis/v9"
)

// Cache namespaces. Each namespace is cleared independently of the others.
const (
	NamespaceUsers    = "users"
	NamespaceAccounts = "accounts"
)

// ErrCacheMiss is returned when no fresh entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ListKey builds a cache key for a paginated list read.
func ListKey(skip, limit int) string {
	return fmt.Sprintf("list:skip=%d:limit=%d", skip, limit)
}

// namespacedKey joins a namespace and key into a single Redis key.
func namespacedKey(namespace, key string) string {
	return namespace + ":" + key
}

// Get retrieves a cached value from a namespace.
// Returns ErrCacheMiss if no entry exists or the entry has expired.
func (c *Cache) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, namespacedKey(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return data, nil
}

// Set stores a value in a namespace with the given TTL.
// Entries expire unconditionally after the TTL regardless of invalidation.
func (c *Cache) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, namespacedKey(namespace, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// ClearNamespace removes every entry in a namespace.
// Called synchronously after each mutation to that namespace.
func (c *Cache) ClearNamespace(ctx context.Context, namespace string) error {
	pattern := namespace + ":*"

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan namespace %s: %w", namespace, err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys in namespace %s: %w", namespace, err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}
