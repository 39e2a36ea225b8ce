package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{Now: clock.Now})

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("Get() = %v, %v; want v, true", got, ok)
	}

	// Still valid exactly at the boundary.
	clock.Advance(time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry should be valid at now-writtenAt == ttl")
	}

	clock.Advance(time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should be expired")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("second Get after expiry should also be absent")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted, len = %d", c.Len())
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{Now: clock.Now})

	c.Set("k", 1, 0)
	clock.Advance(DefaultTTL)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry should live for the default ttl")
	}
	clock.Advance(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should expire after the default ttl")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(Options{})
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after Clear = %d", c.Len())
	}
}

func TestCache_Cleanup(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{Now: clock.Now})

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	clock.Advance(2 * time.Second)

	if n := c.Cleanup(); n != 1 {
		t.Errorf("Cleanup() removed %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestCache_MaxEntriesEvictsOldest(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{MaxEntries: 3, Now: clock.Now})

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, time.Hour)
		clock.Advance(time.Second)
	}
	c.Set("k3", 3, time.Hour)

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry k0 should have been evicted")
	}
	for _, k := range []string{"k1", "k2", "k3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should be present", k)
		}
	}
}

func TestCache_MaxEntriesPrefersExpired(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{MaxEntries: 2, Now: clock.Now})

	c.Set("old", 1, time.Hour)
	clock.Advance(time.Second)
	c.Set("stale", 2, time.Millisecond)
	clock.Advance(time.Second)
	c.Set("new", 3, time.Hour)

	if _, ok := c.Get("old"); !ok {
		t.Error("sweeping the expired entry should leave room without evicting old")
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := New(Options{MaxEntries: 2})
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("a", 3, 0)

	if v, _ := c.Get("a"); v != 3 {
		t.Errorf("a = %v, want 3", v)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("overwriting an existing key must not evict others")
	}
}

func TestGetAs(t *testing.T) {
	c := New(Options{})
	c.Set("names", []string{"a"}, 0)

	names, ok := GetAs[[]string](c, "names")
	if !ok || len(names) != 1 {
		t.Errorf("GetAs = %v, %v", names, ok)
	}
	if _, ok := GetAs[int](c, "names"); ok {
		t.Error("type mismatch should be reported as absent")
	}
}

func TestJanitor_SweepsUntilCancelled(t *testing.T) {
	clock := newFakeClock()
	c := New(Options{Now: clock.Now})
	c.Set("k", 1, time.Second)
	clock.Advance(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewJanitor(c, 5*time.Millisecond, nil).Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if c.Len() != 0 {
		t.Error("janitor did not sweep expired entry")
	}
}

func TestJanitor_DisabledReturnsImmediately(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewJanitor(New(Options{}), 0, nil).Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled janitor should return immediately")
	}
}
