package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")

	val, exists := c.Get("key1")
	if !exists {
		t.Fatal("key1 should exist")
	}
	if val != "value1" {
		t.Fatalf("expected 'value1', got '%s'", val)
	}
}

func TestCacheGetMissing(t *testing.T) {
	c := New[string](0)

	if _, exists := c.Get("missing"); exists {
		t.Fatal("missing key should not exist")
	}
}

func TestCacheTTL(t *testing.T) {
	c := New[string](50 * time.Millisecond)
	c.Set("key1", "value1")

	if _, exists := c.Get("key1"); !exists {
		t.Fatal("key1 should exist immediately after set")
	}

	time.Sleep(80 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Fatal("key1 should be expired after TTL")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")

	time.Sleep(50 * time.Millisecond)

	if _, exists := c.Get("key1"); !exists {
		t.Fatal("key1 should never expire with TTL=0")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")
	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Fatal("key1 should be deleted")
	}
}

func TestCacheUpdatedAt(t *testing.T) {
	c := New[int](0)
	if !c.UpdatedAt().IsZero() {
		t.Fatal("fresh cache should have zero UpdatedAt")
	}
	c.Set("k", 1)
	if c.UpdatedAt().IsZero() {
		t.Fatal("UpdatedAt should be set after a write")
	}
}
