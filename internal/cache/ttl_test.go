package cache

import (
	"testing"
	"time"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	c.Set("a", 1)

	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	now := base
	c := NewTTL[string, string](time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set("k", "v")

	now = base.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}

	now = base.Add(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestTTLCache_DeleteClear(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("cleared key still present")
	}
}
