package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTTL_SetAndGet(t *testing.T) {
	c := NewTTL[int64, []string]("test", time.Minute)

	c.Set(1, []string{"a", "b"})

	got, ok := c.Get(1)
	if !ok {
		t.Fatal("Get() after Set() should hit")
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Get() = %v, want [a b]", got)
	}
}

func TestTTL_Miss(t *testing.T) {
	c := NewTTL[string, int]("test", time.Minute)

	if v, ok := c.Get("absent"); ok || v != 0 {
		t.Errorf("Get(absent) = %v, %v, want 0, false", v, ok)
	}
}

func TestTTL_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[string, string]("test", 120*time.Second, WithClock(clock.Now))

	c.Set("k", "v1")

	tests := []struct {
		name    string
		advance time.Duration
		wantHit bool
	}{
		{name: "fresh", advance: 0, wantHit: true},
		{name: "just before ttl", advance: 119 * time.Second, wantHit: true},
		{name: "at ttl", advance: 1 * time.Second, wantHit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)
			_, ok := c.Get("k")
			if ok != tt.wantHit {
				t.Errorf("Get() hit = %v, want %v", ok, tt.wantHit)
			}
		})
	}

	// Stale entry was purged by the lookup.
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy purge", c.Len())
	}

	// A later Set on the same key works again.
	c.Set("k", "v2")
	if v, ok := c.Get("k"); !ok || v != "v2" {
		t.Errorf("Get() = %q, %v, want v2, true", v, ok)
	}
}

func TestTTL_NoEagerSweep(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[int, int]("test", time.Second, WithClock(clock.Now))

	c.Set(1, 1)
	c.Set(2, 2)
	clock.Advance(time.Hour)

	// Looking up key 1 only purges key 1.
	c.Get(1)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestTTL_SetOverwrites(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[int, string]("test", time.Minute, WithClock(clock.Now))

	c.Set(1, "old")
	clock.Advance(50 * time.Second)
	c.Set(1, "new")
	clock.Advance(50 * time.Second)

	// Overwrite refreshed storedAt.
	if v, ok := c.Get(1); !ok || v != "new" {
		t.Errorf("Get() = %q, %v, want new, true", v, ok)
	}
}

func TestTTL_Delete(t *testing.T) {
	c := NewTTL[int, int]("test", time.Minute)
	c.Set(1, 1)
	c.Delete(1)
	c.Delete(1)

	if _, ok := c.Get(1); ok {
		t.Error("Get() after Delete() should miss")
	}
}

func TestNewTTL_DefaultTTL(t *testing.T) {
	c := NewTTL[int, int]("test", 0)
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", c.TTL(), DefaultTTL)
	}
}

func TestTTL_Concurrent(t *testing.T) {
	c := NewTTL[string, int]("test", time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			c.Set(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
}
