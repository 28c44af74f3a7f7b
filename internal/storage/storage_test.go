package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func newGormStoreForTest(t *testing.T, ttl time.Duration) *GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewGormStore(repository.NewStorageEntryRepository(db), ttl)
}

func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key want ok=false err=nil got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, Entry{Key: "a", Value: []byte("1")}, Entry{Key: "b", Value: []byte("2")}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, ok, err := store.Get(ctx, "b")
	if err != nil || !ok || string(value) != "2" {
		t.Fatalf("get b want 2 got %q ok=%v err=%v", value, ok, err)
	}
	if err := store.Set(ctx, Entry{Key: "a", Value: []byte("3")}); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, _, _ = store.Get(ctx, "a")
	if string(value) != "3" {
		t.Fatalf("overwrite want 3 got %q", value)
	}
	if err := store.Remove(ctx, "a", "b"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("key %s should be removed", key)
		}
	}
	if err := store.Set(ctx, Entry{Key: " ", Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("blank key want ErrEmptyKey got %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestGormStoreContract(t *testing.T) {
	runStoreContract(t, newGormStoreForTest(t, time.Hour))
}

func TestGormStoreExpiry(t *testing.T) {
	store := newGormStoreForTest(t, time.Minute)
	base := time.Now()
	store.now = func() time.Time { return base }
	ctx := context.Background()

	if err := store.Set(ctx, Entry{Key: "draft:1", Value: []byte("{}")}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, err := store.Get(ctx, "draft:1"); err != nil || ok {
		t.Fatalf("expired entry want ok=false got ok=%v err=%v", ok, err)
	}
	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purge want 1 got %d", purged)
	}
}

func TestScopedIsolatesSessions(t *testing.T) {
	inner := NewMemoryStore()
	ctx := context.Background()
	first := NewScoped(inner, "cart", "s1")
	second := NewScoped(inner, "cart", "s2")

	if err := first.Set(ctx, Entry{Key: "panier", Value: []byte("[1]")}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok, _ := second.Get(ctx, "panier"); ok {
		t.Fatalf("second session should not see first session key")
	}
	if _, ok, _ := inner.Get(ctx, "cart:s1:panier"); !ok {
		t.Fatalf("inner store should hold prefixed key")
	}
	if err := first.Remove(ctx, "panier"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if inner.Len() != 0 {
		t.Fatalf("inner store want empty got %d keys", inner.Len())
	}
}

func TestRedisStoreSurfacesConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "ls", time.Hour)

	if err := store.Set(context.Background(), Entry{Key: "a", Value: []byte("1")}); err == nil {
		t.Fatalf("expected connection error from unreachable redis")
	}
	if _, _, err := store.Get(context.Background(), "a"); err == nil {
		t.Fatalf("expected connection error on get")
	}
}
