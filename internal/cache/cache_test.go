package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/eventosapp/eventos-api/internal/cache"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(time.Minute)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "k", []byte("v"))

	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("got %q ok=%v, want v", got, ok)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(10 * time.Millisecond)

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(time.Minute)

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))

	c.Invalidate(ctx)

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("expected a to be dropped")
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatal("expected b to be dropped")
	}
}
