package ecs

import (
	"fmt"
	"reflect"
)

// Group owns the pools of A and B: entities carrying both are kept at the
// front of each pool at the same index, so iterating the group is a flat scan
// over [0, Len()).
type Group[A, B any] struct {
	a    *Pool[A]
	b    *Pool[B]
	size int
}

// NewGroup returns the owning group for A and B, creating it on first use.
// A pool can be owned by one group only.
func NewGroup[A, B any](r *Registry) (*Group[A, B], error) {
	key := [2]reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
	if g, ok := r.groups[key]; ok {
		return g.(*Group[A, B]), nil
	}
	if key[0] == key[1] {
		return nil, fmt.Errorf("group %s/%s: %w", key[0], key[1], ErrGroupConflict)
	}
	pa := poolOf[A](r, true)
	pb := poolOf[B](r, true)
	if pa.group != nil || pb.group != nil {
		return nil, fmt.Errorf("group %s/%s: %w", key[0], key[1], ErrGroupConflict)
	}

	g := &Group[A, B]{a: pa, b: pb}
	pa.group = g
	pb.group = g
	r.groups[key] = g

	if pa.size() <= pb.size() {
		for _, e := range append([]Entity(nil), pa.entities...) {
			g.acquire(e)
		}
	} else {
		for _, e := range append([]Entity(nil), pb.entities...) {
			g.acquire(e)
		}
	}
	return g, nil
}

func (g *Group[A, B]) acquire(e Entity) {
	ia, ib := g.a.index(e), g.b.index(e)
	if ia < 0 || ib < 0 || ia < g.size {
		return
	}
	g.a.swap(ia, g.size)
	g.b.swap(ib, g.size)
	g.size++
}

func (g *Group[A, B]) release(e Entity) {
	ia, ib := g.a.index(e), g.b.index(e)
	if ia < 0 || ib < 0 || ia >= g.size {
		return
	}
	last := g.size - 1
	g.a.swap(ia, last)
	g.b.swap(ib, last)
	g.size--
}

func (g *Group[A, B]) Len() int {
	return g.size
}

func (g *Group[A, B]) Contains(e Entity) bool {
	idx := g.a.index(e)
	return idx >= 0 && idx < g.size
}

// Each visits the members in pool order. fn must not add or remove A or B.
func (g *Group[A, B]) Each(fn func(e Entity, a *A, b *B)) {
	for i := 0; i < g.size; i++ {
		fn(g.a.entities[i], g.a.values[i], g.b.values[i])
	}
}
