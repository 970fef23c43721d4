// internal/cache/lru_test.go
//
// Run: go test ./internal/cache -v

package cache

import (
	"sync"
	"testing"
)

func TestLRU_EvictsLeastRecent(t *testing.T) {
	c := New[string, int](2)

	var evicted []string
	c.OnEvict = func(k string, _ int) { evicted = append(evicted, k) }

	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes MRU
		t.Fatalf("expected hit for a")
	}
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v; want 1, true", v, ok)
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", evicted)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_UpdateAndRemove(t *testing.T) {
	c := New[string, string](4)
	c.Add("k", "v1")
	c.Add("k", "v2")

	if v, _ := c.Peek("k"); v != "v2" {
		t.Fatalf("Peek = %q, want v2", v)
	}
	if !c.Remove("k") {
		t.Fatalf("Remove should report presence")
	}
	if c.Remove("k") {
		t.Fatalf("second Remove should report absence")
	}
	c.Add("x", "1")
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len after Purge = %d", c.Len())
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := New[int, int](64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c.Add(g*1000+i, i)
				c.Get(g*1000 + i/2)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Fatalf("Len = %d exceeds capacity", c.Len())
	}
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New[string, int](0)
}

func TestLRU_SnapshotOldestFirst(t *testing.T) {
	c := New[string, int](4)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	c.Get("a")

	got := c.Snapshot()
	want := []int{2, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("Snapshot = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot = %v; want %v", got, want)
		}
	}
}
