package vaultfs

import (
	"testing"
)

func TestCache_LRU(t *testing.T) {
	c := NewCache(2)
	c.Put("/a", []Entry{{Name: "1"}})
	c.Put("/b", []Entry{{Name: "2"}})

	if _, ok := c.Get("/a"); !ok {
		t.Fatal("/a missing")
	}
	c.Put("/c", []Entry{{Name: "3"}})

	if _, ok := c.Get("/b"); ok {
		t.Error("/b should have been evicted as least recently used")
	}
	if _, ok := c.Get("/a"); !ok {
		t.Error("/a should have survived")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	c.Put("/a", []Entry{{Name: "updated"}})
	if got, _ := c.Get("/a"); len(got) != 1 || got[0].Name != "updated" {
		t.Errorf("Get(/a) = %v after update", got)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d after update, want 2", c.Len())
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := NewCache(0)
	entries := []Entry{{Name: "x"}}
	c.Put("/d", entries)
	entries[0].Name = "mutated"

	got, _ := c.Get("/d")
	if got[0].Name != "x" {
		t.Error("Put kept a reference to the caller's slice")
	}
	got[0].Name = "mutated"
	again, _ := c.Get("/d")
	if again[0].Name != "x" {
		t.Error("Get returned the cached slice itself")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(4)
	c.Put("/a", nil)
	c.Put("/b", nil)
	c.Invalidate("/a")
	c.Invalidate("/missing")

	if _, ok := c.Get("/a"); ok {
		t.Error("/a still cached after Invalidate")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	for _, d := range []string{"/c", "/d", "/e"} {
		c.Put(d, nil)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
}
