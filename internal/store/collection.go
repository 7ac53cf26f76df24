package store

import (
	"maps"
	"slices"

	"food_routing_admin/internal/models"
)

// collection keeps records by identity key in the order they were first seen.
type collection[T models.Record] struct {
	items map[int]T
	order []int
}

func newCollection[T models.Record](recs []T) collection[T] {
	c := collection[T]{items: make(map[int]T, len(recs)), order: make([]int, 0, len(recs))}
	for _, r := range recs {
		c.upsert(r)
	}
	return c
}

func (c *collection[T]) upsert(r T) {
	key := r.Key()
	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = r
}

func (c *collection[T]) remove(key int) bool {
	if _, exists := c.items[key]; !exists {
		return false
	}
	delete(c.items, key)
	c.order = slices.DeleteFunc(c.order, func(k int) bool { return k == key })
	return true
}

func (c *collection[T]) get(key int) (T, bool) {
	r, ok := c.items[key]
	return r, ok
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out
}

// merged lays the local writes made after since over a freshly listed
// collection: a key still present in current is upserted, a missing one removed.
func merged[T models.Record](fresh, current collection[T], touched map[int]uint64, since uint64) collection[T] {
	for _, key := range slices.Sorted(maps.Keys(touched)) {
		if touched[key] <= since {
			continue
		}
		if r, ok := current.get(key); ok {
			fresh.upsert(r)
		} else {
			fresh.remove(key)
		}
	}
	return fresh
}
