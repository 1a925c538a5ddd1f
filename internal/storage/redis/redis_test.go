package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mmynk/wattcount/internal/storage"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := New(ctx, &goredis.Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	t.Run("missing key", func(t *testing.T) {
		if _, err := store.Get(ctx, "wattcount_users"); !errors.Is(err, storage.ErrMiss) {
			t.Errorf("expected ErrMiss, got %v", err)
		}
	})

	t.Run("set get delete", func(t *testing.T) {
		if err := store.Set(ctx, "wattcount_users", []byte(`[{"id":"u1"}]`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := store.Get(ctx, "wattcount_users")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `[{"id":"u1"}]` {
			t.Errorf("Get = %s", got)
		}
		if ttl := mr.TTL("wattcount_users"); ttl != 0 {
			t.Errorf("collections must not expire, ttl = %v", ttl)
		}

		if err := store.Delete(ctx, "wattcount_users"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if mr.Exists("wattcount_users") {
			t.Error("key still present after Delete")
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		if _, err := New(ctx, &goredis.Options{Addr: "127.0.0.1:1"}); err == nil {
			t.Error("expected connection error")
		}
	})
}
