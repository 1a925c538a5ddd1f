package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/mmynk/wattcount/internal/storage"
)

// Runs only when WATTCOUNT_TEST_POSTGRES_DSN points at a disposable database.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("WATTCOUNT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WATTCOUNT_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	key := "wattcount_test_" + t.Name()
	defer store.Delete(ctx, key)

	if _, err := store.Get(ctx, key); !errors.Is(err, storage.ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
	if err := store.Set(ctx, key, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, key, []byte(`[{"id":"b"}]`)); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[{"id":"b"}]` {
		t.Errorf("Get = %s", got)
	}
}
