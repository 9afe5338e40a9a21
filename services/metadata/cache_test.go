package metadata

import (
	"os"
	"testing"
	"time"
)

type cachedThing struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache := newDiskCache(t.TempDir(), 1)

	in := cachedThing{Name: "trailer", N: 7}
	if err := cache.write("key", in); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var out cachedThing
	if !cache.read("key", &out) {
		t.Fatal("expected cache hit")
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache := newDiskCache(t.TempDir(), 1)
	var out cachedThing
	if cache.read("absent", &out) {
		t.Fatal("expected miss for unknown key")
	}
	if cache.read("", &out) {
		t.Fatal("expected miss for empty key")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	cache := newDiskCache(t.TempDir(), 1)
	if err := cache.write("key", cachedThing{Name: "old"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Age the file past the TTL plus the maximum jitter.
	old := time.Now().Add(-8 * time.Hour)
	if err := os.Chtimes(cache.path("key"), old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	var out cachedThing
	if cache.read("key", &out) {
		t.Fatal("expected expired entry to miss")
	}
}

func TestDiskCacheClear(t *testing.T) {
	cache := newDiskCache(t.TempDir(), 1)
	if err := cache.write("a", cachedThing{}); err != nil {
		t.Fatal(err)
	}
	if err := cache.write("b", cachedThing{}); err != nil {
		t.Fatal(err)
	}

	if err := cache.clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	var out cachedThing
	if cache.read("a", &out) || cache.read("b", &out) {
		t.Fatal("expected empty cache after clear")
	}
}
