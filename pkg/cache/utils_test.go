package cache

import (
	"context"
	"testing"
	"time"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("analysis", "abc123")
	if key != "analysis:abc123" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash("series|k=1|seed=42")
	b := ContentHash("series|k=1|seed=42")
	c := ContentHash("series|k=1|seed=43")

	if a != b {
		t.Fatal("identical content produced different hashes")
	}
	if a == c {
		t.Fatal("different content produced identical hashes")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		N int `json:"n"`
	}

	if err := mc.Set(ctx, "k", payload{N: 7}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.N != 7 {
		t.Fatalf("expected 7, got %d", got.N)
	}

	var missing payload
	if err := mc.Get(ctx, "absent", &missing); err != ErrCacheMiss {
		t.Fatalf("expected cache miss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got string
	if err := mc.Get(ctx, "k", &got); err != ErrCacheMiss {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}
