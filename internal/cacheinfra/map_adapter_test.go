package cacheinfra

import (
	"errors"
	"sort"
	"sync"
	"testing"
)

type entry struct {
	id   string
	name string
}

func newTestMap(t *testing.T) *MapCache[string, *entry] {
	t.Helper()
	c, err := NewMapCache[string, *entry](DefaultMapConfig())
	if err != nil {
		t.Fatalf("NewMapCache: %v", err)
	}
	return c
}

func TestMapConfig_Validate(t *testing.T) {
	if err := (MapConfig{}).Validate(); err != nil {
		t.Errorf("zero config should be valid: %v", err)
	}

	err := MapConfig{PresizeHint: -1}.Validate()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "PresizeHint" {
		t.Errorf("expected PresizeHint config error, got %v", err)
	}

	if _, err := NewMapCache[string, int](MapConfig{PresizeHint: -1}); err == nil {
		t.Error("expected constructor to reject invalid config")
	}
}

func TestMapCache_AddOrUpdate(t *testing.T) {
	c := newTestMap(t)
	first := &entry{id: "ALFKI", name: "first"}
	second := &entry{id: "ALFKI", name: "second"}

	got, ok := c.AddOrUpdate("ALFKI", first, func(current *entry) (*entry, bool) {
		t.Fatal("resolver must not run for an absent key")
		return nil, false
	})
	if !ok || got != first {
		t.Fatalf("expected insert of first, got %v %v", got, ok)
	}

	var seen *entry
	got, ok = c.AddOrUpdate("ALFKI", second, func(current *entry) (*entry, bool) {
		seen = current
		return second, true
	})
	if !ok || got != second {
		t.Fatalf("expected replacement with second, got %v %v", got, ok)
	}
	if seen != first {
		t.Errorf("resolver saw %v, want first", seen)
	}

	got, ok = c.AddOrUpdate("ALFKI", first, func(current *entry) (*entry, bool) {
		return nil, false
	})
	if ok || got != nil {
		t.Errorf("declined resolve should report no result, got %v %v", got, ok)
	}
	if v, _ := c.Load("ALFKI"); v != second {
		t.Errorf("declined resolve must keep current value, got %v", v)
	}
}

func TestMapCache_CompareAndSwap(t *testing.T) {
	c := newTestMap(t)
	old := &entry{id: "ANATR", name: "old"}
	next := &entry{id: "ANATR", name: "next"}
	stale := &entry{id: "ANATR", name: "old"}

	if c.CompareAndSwap("ANATR", old, next) {
		t.Fatal("swap on absent key must fail")
	}
	if _, ok := c.Load("ANATR"); ok {
		t.Fatal("failed swap must not create the key")
	}

	c.AddOrUpdate("ANATR", old, nil)

	if c.CompareAndSwap("ANATR", stale, next) {
		t.Error("swap must compare identity, not field equality")
	}
	if !c.CompareAndSwap("ANATR", old, next) {
		t.Fatal("swap with current snapshot should succeed")
	}
	if c.CompareAndSwap("ANATR", old, next) {
		t.Error("second swap with outdated snapshot must fail")
	}
	if v, _ := c.Load("ANATR"); v != next {
		t.Errorf("expected next, got %v", v)
	}
}

func TestMapCache_RemoveValuesLen(t *testing.T) {
	c := newTestMap(t)
	for _, id := range []string{"ALFKI", "ANATR", "ANTON"} {
		c.AddOrUpdate(id, &entry{id: id}, nil)
	}

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}

	ids := make([]string, 0, 3)
	for _, v := range c.Values() {
		ids = append(ids, v.id)
	}
	sort.Strings(ids)
	if len(ids) != 3 || ids[0] != "ALFKI" || ids[2] != "ANTON" {
		t.Errorf("unexpected values %v", ids)
	}

	if !c.Remove("ANATR") {
		t.Error("expected Remove to report an entry")
	}
	if c.Remove("ANATR") {
		t.Error("second Remove should report nothing removed")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestMapCache_ConcurrentCompareAndSwap(t *testing.T) {
	c := newTestMap(t)
	base := &entry{id: "BERGS", name: "base"}
	c.AddOrUpdate("BERGS", base, nil)

	const writers = 32
	var wg sync.WaitGroup
	wins := make(chan *entry, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := &entry{id: "BERGS", name: "writer"}
			if c.CompareAndSwap("BERGS", base, next) {
				wins <- next
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []*entry
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winning swap, got %d", len(winners))
	}
	if v, _ := c.Load("BERGS"); v != winners[0] {
		t.Error("cache does not hold the winning value")
	}
}
