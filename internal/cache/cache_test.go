package cache

import "testing"

// TestGetSet tests basic store and retrieve.
func TestGetSet(t *testing.T) {
	c := New[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache returned ok")
	}

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

// TestEviction tests LRU order under capacity pressure.
func TestEviction(t *testing.T) {
	c := New[int, int](2)

	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("entry 2 should have been evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("entry 1 should have survived")
	}
	if _, ok := c.Get(3); !ok {
		t.Error("entry 3 should be present")
	}
}

// TestOverwrite tests that Set on an existing key updates in place.
func TestOverwrite(t *testing.T) {
	c := New[string, int](2)

	c.Set("k", 1)
	c.Set("k", 2)

	if v, _ := c.Get("k"); v != 2 {
		t.Errorf("Get(k) = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

// TestClear tests Clear empties the cache.
func TestClear(t *testing.T) {
	c := New[string, int](0) // unbounded

	for i := 0; i < 10; i++ {
		c.Set(string(rune('a'+i)), i)
	}
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Clear returned ok")
	}
}
