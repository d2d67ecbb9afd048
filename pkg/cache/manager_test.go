package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis and skips the test when none is running.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testKey() CacheKey {
	return CacheKey{
		Operation: "GetUserProfile",
		Query:     `query GetUserProfile($username: String!) { user(login: $username) { login } }`,
		Variables: map[string]any{"username": "octocat"},
	}
}

func TestNewManager(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	manager := NewManager(client)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_SetAndGet(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	data := json.RawMessage(`{"user":{"login":"octocat"}}`)
	if err := manager.Set(ctx, testKey(), NewEntry(data, time.Minute)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	entry, err := manager.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(entry.Data) != string(data) {
		t.Errorf("Get() data = %s, want %s", entry.Data, data)
	}
}

func TestManager_GetMiss(t *testing.T) {
	manager := NewManager(setupTestRedis(t))

	_, err := manager.Get(context.Background(), testKey())
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetExpiredEntrySkipped(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	entry := &CacheEntry{Data: json.RawMessage(`{}`), Expires: time.Now().Add(-time.Second)}
	if err := manager.Set(ctx, testKey(), entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := manager.Get(ctx, testKey()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetNil(t *testing.T) {
	manager := NewManager(setupTestRedis(t))

	if err := manager.Set(context.Background(), testKey(), nil); err == nil {
		t.Error("Set(nil) error = nil, want error")
	}
}

func TestManager_InvalidEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	if err := client.Set(ctx, testKey().String(), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed invalid entry: %v", err)
	}

	if _, err := manager.Get(ctx, testKey()); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Get() error = %v, want ErrInvalidEntry", err)
	}
	if n := client.Exists(ctx, testKey().String()).Val(); n != 0 {
		t.Errorf("invalid entry still stored (exists = %d)", n)
	}
}

func TestManager_GetDropsEntryPastExpires(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	stale, err := json.Marshal(CacheEntry{Data: json.RawMessage(`{}`), Expires: time.Now().Add(-time.Second)})
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	if err := client.Set(ctx, testKey().String(), stale, time.Minute).Err(); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	if _, err := manager.Get(ctx, testKey()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
	if n := client.Exists(ctx, testKey().String()).Val(); n != 0 {
		t.Errorf("stale entry still stored (exists = %d)", n)
	}
}

func TestManager_PurgeManyKeys(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	const total = purgeBatch*2 + 5
	for i := 0; i < total; i++ {
		key := testKey()
		key.Variables = map[string]any{"username": fmt.Sprintf("user-%d", i)}
		if err := manager.Set(ctx, key, NewEntry(json.RawMessage(`{}`), time.Minute)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := client.Set(ctx, "unrelated", "1", time.Minute).Err(); err != nil {
		t.Fatalf("seed unrelated key: %v", err)
	}

	deleted, err := manager.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if deleted != total {
		t.Errorf("Purge() deleted = %d, want %d", deleted, total)
	}
	if n := client.Exists(ctx, "unrelated").Val(); n != 1 {
		t.Error("Purge() removed a key outside the cache prefix")
	}
}

func TestManager_DeleteAndPurge(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	other := testKey()
	other.Variables = map[string]any{"username": "torvalds"}

	for _, key := range []CacheKey{testKey(), other} {
		if err := manager.Set(ctx, key, NewEntry(json.RawMessage(`{}`), time.Minute)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := manager.Delete(ctx, testKey()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := manager.Get(ctx, testKey()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after Delete() error = %v, want ErrCacheMiss", err)
	}

	deleted, err := manager.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Purge() deleted = %d, want 1", deleted)
	}
}
