package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	store := NewRedis(rdb, "test", "device-1", 0)

	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty key, got %v", err)
	}

	if err := store.Set(ctx, "tok123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	token, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if token != "tok123" {
		t.Fatalf("expected tok123, got %q", token)
	}
}

func TestRedisDeviceIsolation(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)

	one := NewRedis(rdb, "test", "device-1", 0)
	two := NewRedis(rdb, "test", "device-2", 0)

	if err := one.Set(ctx, "tok-one"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := two.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the other device, got %v", err)
	}
}

func TestRedisClearIdempotent(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	store := NewRedis(rdb, "test", "device-1", 0)

	if err := store.Set(ctx, "tok123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Clear, got %v", err)
	}
}

func TestRedisTTLExpiry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedis(rdb, "test", "device-1", time.Minute)

	if err := store.Set(ctx, "tok123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL expiry, got %v", err)
	}
}
