package cartid

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func redisClient(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	return client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := redisClient(ctx, t)
	defer client.Close()
	store := NewRedis(client, time.Minute)

	if err := store.Set(ctx, "it-device", "cart-it"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "it-device")
	if err != nil || got != "cart-it" {
		t.Fatalf("expected cart-it, got %q err=%v", got, err)
	}

	if err := store.Clear(ctx, "it-device"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = store.Get(ctx, "it-device")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty id after clear, got %q", got)
	}
}
