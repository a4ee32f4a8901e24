package ecs

import (
	"fmt"
	"reflect"
)

// MaxEntities bounds the ids CreateWithHint accepts.
const MaxEntities = 1 << 20

type entityMeta struct {
	version uint32
	alive   bool
}

// Registry owns entity handles and one component pool per component type.
// It is not safe for concurrent use.
type Registry struct {
	metas  []entityMeta
	free   []uint32
	alive  int
	pools  map[reflect.Type]storage
	order  []storage
	groups map[[2]reflect.Type]owner
}

func NewRegistry() *Registry {
	return &Registry{
		pools:  make(map[reflect.Type]storage),
		groups: make(map[[2]reflect.Type]owner),
	}
}

// Create allocates a handle, recycling destroyed ids first.
func (r *Registry) Create() Entity {
	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		r.metas[id].alive = true
		r.alive++
		return Entity{ID: id, Version: r.metas[id].version}
	}
	id := uint32(len(r.metas))
	r.metas = append(r.metas, entityMeta{version: 1, alive: true})
	r.alive++
	return Entity{ID: id, Version: 1}
}

// CreateWithHint allocates the given id. Slots skipped over to reach it are
// kept on the free list. Ids of MaxEntities and above are rejected.
func (r *Registry) CreateWithHint(id uint32) (Entity, error) {
	if id >= MaxEntities {
		return Null, fmt.Errorf("create entity %d: %w", id, ErrEntityLimit)
	}
	if int(id) < len(r.metas) {
		if r.metas[id].alive {
			return Null, fmt.Errorf("create entity %d: %w", id, ErrEntityExists)
		}
		for i, f := range r.free {
			if f == id {
				r.free = append(r.free[:i], r.free[i+1:]...)
				break
			}
		}
		r.metas[id].alive = true
		r.alive++
		return Entity{ID: id, Version: r.metas[id].version}, nil
	}

	for next := uint32(len(r.metas)); next < id; next++ {
		r.metas = append(r.metas, entityMeta{version: 1})
		r.free = append(r.free, next)
	}
	r.metas = append(r.metas, entityMeta{version: 1, alive: true})
	r.alive++
	return Entity{ID: id, Version: 1}, nil
}

// Destroy removes every component of e and invalidates the handle.
func (r *Registry) Destroy(e Entity) bool {
	if !r.Valid(e) {
		return false
	}
	for _, s := range r.order {
		s.remove(e)
	}
	meta := &r.metas[e.ID]
	meta.alive = false
	meta.version++
	if meta.version == 0 {
		meta.version = 1
	}
	r.free = append(r.free, e.ID)
	r.alive--
	return true
}

func (r *Registry) Valid(e Entity) bool {
	if e.IsNull() || int(e.ID) >= len(r.metas) {
		return false
	}
	meta := r.metas[e.ID]
	return meta.alive && meta.version == e.Version
}

// Alive returns the number of live entities.
func (r *Registry) Alive() int {
	return r.alive
}

// Each visits live entities in ascending id order.
func (r *Registry) Each(fn func(e Entity)) {
	for id, meta := range r.metas {
		if meta.alive {
			fn(Entity{ID: uint32(id), Version: meta.version})
		}
	}
}

// Entities returns a snapshot of the live entities.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, 0, r.alive)
	r.Each(func(e Entity) { out = append(out, e) })
	return out
}

// Clear destroys every live entity. Pools and groups survive.
func (r *Registry) Clear() {
	for _, e := range r.Entities() {
		r.Destroy(e)
	}
}

func poolOf[T any](r *Registry, create bool) *Pool[T] {
	key := reflect.TypeFor[T]()
	if s, ok := r.pools[key]; ok {
		return s.(*Pool[T])
	}
	if !create {
		return nil
	}
	p := newPool[T]()
	r.pools[key] = p
	r.order = append(r.order, p)
	return p
}

// Add attaches a component to e and returns a pointer that stays valid until
// the component is removed.
func Add[T any](r *Registry, e Entity, value T) (*T, error) {
	if !r.Valid(e) {
		return nil, fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), e, ErrInvalidEntity)
	}
	p := poolOf[T](r, true)
	if p.contains(e) {
		return nil, fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), e, ErrComponentExists)
	}
	return p.insert(e, value), nil
}

// AddOrReplace overwrites an existing component in place.
func AddOrReplace[T any](r *Registry, e Entity, value T) (*T, error) {
	if !r.Valid(e) {
		return nil, fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), e, ErrInvalidEntity)
	}
	p := poolOf[T](r, true)
	if ptr := p.get(e); ptr != nil {
		*ptr = value
		return ptr, nil
	}
	return p.insert(e, value), nil
}

func Get[T any](r *Registry, e Entity) (*T, bool) {
	if !r.Valid(e) {
		return nil, false
	}
	p := poolOf[T](r, false)
	if p == nil {
		return nil, false
	}
	ptr := p.get(e)
	return ptr, ptr != nil
}

func Has[T any](r *Registry, e Entity) bool {
	_, ok := Get[T](r, e)
	return ok
}

func Remove[T any](r *Registry, e Entity) bool {
	if !r.Valid(e) {
		return false
	}
	p := poolOf[T](r, false)
	return p != nil && p.remove(e)
}

// Count returns how many entities carry a T.
func Count[T any](r *Registry) int {
	p := poolOf[T](r, false)
	if p == nil {
		return 0
	}
	return p.size()
}
