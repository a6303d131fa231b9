package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerly/ledgerly/internal/cache"
	"github.com/ledgerly/ledgerly/internal/testutil"
)

// newTestCache connects to the Redis instance named by REDIS_URL
// and flushes it so entries from earlier runs cannot leak in.
func newTestCache(t *testing.T) (*cache.Cache, context.Context) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("failed to close cache: %v", err)
		}
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("failed to flush Redis: %v", err)
	}

	return c, ctx
}

func TestCache_SetGetRoundtrip(t *testing.T) {
	c, ctx := newTestCache(t)

	key := cache.ListKey(0, 100)
	payload := []byte(`[{"id":1,"username":"ann","email":"ann@x.com"}]`)

	if err := c.Set(ctx, cache.NamespaceUsers, key, payload, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, cache.NamespaceUsers, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %s, want %s", got, payload)
	}
}

func TestCache_Get_Miss(t *testing.T) {
	c, ctx := newTestCache(t)

	if _, err := c.Get(ctx, cache.NamespaceUsers, cache.ListKey(0, 100)); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestCache_ClearNamespace_LeavesOtherNamespaces(t *testing.T) {
	c, ctx := newTestCache(t)

	key := cache.ListKey(0, 100)
	if err := c.Set(ctx, cache.NamespaceUsers, key, []byte("[]"), time.Minute); err != nil {
		t.Fatalf("Set users: %v", err)
	}
	if err := c.Set(ctx, cache.NamespaceAccounts, key, []byte("[]"), time.Minute); err != nil {
		t.Fatalf("Set accounts: %v", err)
	}

	if err := c.ClearNamespace(ctx, cache.NamespaceUsers); err != nil {
		t.Fatalf("ClearNamespace: %v", err)
	}

	if _, err := c.Get(ctx, cache.NamespaceUsers, key); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("expected users entry to be cleared, got %v", err)
	}
	if _, err := c.Get(ctx, cache.NamespaceAccounts, key); err != nil {
		t.Errorf("expected accounts entry to survive, got %v", err)
	}
}

func TestCache_ClearNamespace_ManyKeys(t *testing.T) {
	c, ctx := newTestCache(t)

	// More keys than a single SCAN page returns.
	for skip := 0; skip < 250; skip++ {
		if err := c.Set(ctx, cache.NamespaceAccounts, cache.ListKey(skip, 100), []byte("[]"), time.Minute); err != nil {
			t.Fatalf("Set %d: %v", skip, err)
		}
	}

	if err := c.ClearNamespace(ctx, cache.NamespaceAccounts); err != nil {
		t.Fatalf("ClearNamespace: %v", err)
	}

	for _, skip := range []int{0, 124, 249} {
		if _, err := c.Get(ctx, cache.NamespaceAccounts, cache.ListKey(skip, 100)); !errors.Is(err, cache.ErrCacheMiss) {
			t.Errorf("key skip=%d survived ClearNamespace: %v", skip, err)
		}
	}
}

func TestCache_EntriesExpire(t *testing.T) {
	c, ctx := newTestCache(t)

	key := cache.ListKey(0, 100)
	if err := c.Set(ctx, cache.NamespaceUsers, key, []byte("[]"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := c.Get(ctx, cache.NamespaceUsers, key); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("expected entry to expire, got %v", err)
	}
}
