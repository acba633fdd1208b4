package cache

import (
	"sync"
	"testing"
)

func TestShardedSetGet(t *testing.T) {
	c := NewSharded[uint64, string](8, Uint64Hasher)

	if _, ok := c.Get(1); ok {
		t.Error("Get on empty cache returned ok")
	}
	c.Set(1, "one")
	c.Set(2, "two")

	got, ok := c.Get(1)
	if !ok || got != "one" {
		t.Errorf("Get(1) = %q, %v; want one, true", got, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Set(1, "uno")
	if got, _ := c.Get(1); got != "uno" {
		t.Errorf("Get(1) after overwrite = %q, want uno", got)
	}
	if c.Len() != 2 {
		t.Errorf("Len() after overwrite = %d, want 2", c.Len())
	}
}

func TestShardedEvictsLeastRecentlyUsed(t *testing.T) {
	// Keys 0, 16, 32 all land in shard 0 with the identity hasher, so a
	// per-shard capacity of 2 forces an eviction on the third insert.
	c := NewSharded[uint64, int](2, Uint64Hasher)
	c.Set(0, 100)
	c.Set(16, 200)

	// Touch 0 so 16 becomes the eviction candidate.
	if _, ok := c.Get(0); !ok {
		t.Fatal("Get(0) missed")
	}
	c.Set(32, 300)

	if _, ok := c.Get(16); ok {
		t.Error("key 16 survived eviction, want dropped")
	}
	if _, ok := c.Get(0); !ok {
		t.Error("recently used key 0 was evicted")
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestShardedGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](8, StringHasher)

	calls := 0
	create := func() int {
		calls++
		return 42
	}

	if got := c.GetOrCreate("answer", create); got != 42 {
		t.Errorf("GetOrCreate = %d, want 42", got)
	}
	if got := c.GetOrCreate("answer", create); got != 42 {
		t.Errorf("GetOrCreate (cached) = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestShardedDelete(t *testing.T) {
	c := NewSharded[uint64, int](8, Uint64Hasher)
	c.Set(7, 7)

	if !c.Delete(7) {
		t.Error("Delete(7) = false, want true")
	}
	if c.Delete(7) {
		t.Error("second Delete(7) = true, want false")
	}
	if _, ok := c.Get(7); ok {
		t.Error("deleted entry still retrievable")
	}
}

func TestShardedClear(t *testing.T) {
	c := NewSharded[uint64, int](8, Uint64Hasher)
	for i := uint64(0); i < 100; i++ {
		c.Set(i, int(i))
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestShardedStats(t *testing.T) {
	c := NewSharded[uint64, int](8, Uint64Hasher)
	c.Set(1, 1)

	c.Get(1)
	c.Get(2)

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 1/1", stats.Hits, stats.Misses)
	}
	if stats.Capacity != 8 {
		t.Errorf("Capacity = %d, want 8", stats.Capacity)
	}
}

func TestShardedDefaultCapacity(t *testing.T) {
	c := NewSharded[uint64, int](0, Uint64Hasher)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", c.Capacity(), DefaultCapacity)
	}
}

func TestShardedConcurrentAccess(t *testing.T) {
	c := NewSharded[uint64, int](64, Uint64Hasher)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := uint64(0); i < 1000; i++ {
				k := seed*1000 + i
				c.Set(k, int(k))
				if v, ok := c.Get(k); ok && v != int(k) {
					t.Errorf("Get(%d) = %d", k, v)
				}
			}
		}(uint64(g))
	}
	wg.Wait()
}
