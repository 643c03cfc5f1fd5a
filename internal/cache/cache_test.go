// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	_, exists = c.Get("key2")
	if exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(100 * time.Millisecond)

	c.Set("key1", "value1")

	_, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(150 * time.Millisecond)

	_, exists = c.Get("key1")
	if exists {
		t.Error("Expected key1 to be expired")
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	c := New(1 * time.Minute)

	c.SetWithTTL("short", "value", 50*time.Millisecond)
	c.Set("long", "value")

	time.Sleep(100 * time.Millisecond)

	if _, exists := c.Get("short"); exists {
		t.Error("Expected the short-TTL entry to be expired")
	}
	if _, exists := c.Get("long"); !exists {
		t.Error("Expected the default-TTL entry to survive")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, exists := c.Get("key1")
	if exists {
		t.Error("Expected key1 to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	c.Clear()

	for _, key := range []string{"key1", "key2"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
	if c.GetStats().TotalKeys != 0 {
		t.Error("Expected zero keys after clear")
	}
}

func TestCacheStats(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Get("key1") // hit
	c.Get("key2") // miss

	stats := c.GetStats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if rate := c.HitRate(); rate != 50 {
		t.Errorf("Expected 50%% hit rate, got %v", rate)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(1 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", n%10)
			c.Set(key, n)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.GetStats().TotalKeys != 10 {
		t.Errorf("Expected 10 keys, got %d", c.GetStats().TotalKeys)
	}
}

func TestDomainKeys(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{TasteMapKey("u1"), "taste-map:u1"},
		{SimilarUsersKey("u1"), "similar-users:u1"},
		{SimilarityKey("a", "b"), "similarity:a:b"},
		{MetadataKey(42, "movie"), "metadata:movie:42"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestGenerateKeyDeterministic(t *testing.T) {
	type params struct {
		UserID string
		Limit  int
	}

	k1 := GenerateKey("search", params{UserID: "alice", Limit: 10})
	k2 := GenerateKey("search", params{UserID: "alice", Limit: 10})
	k3 := GenerateKey("search", params{UserID: "bob", Limit: 10})

	if k1 != k2 {
		t.Error("Expected identical params to produce identical keys")
	}
	if k1 == k3 {
		t.Error("Expected different params to produce different keys")
	}
}
