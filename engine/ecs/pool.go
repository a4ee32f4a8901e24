package ecs

// storage is the type-erased side of a Pool used by the registry when it has
// to touch every component of an entity.
type storage interface {
	contains(e Entity) bool
	remove(e Entity) bool
	size() int
}

// owner is notified when membership of a pool changes so that an owning
// group can keep its members packed.
type owner interface {
	acquire(e Entity)
	release(e Entity)
}

// Pool is a sparse set holding the components of one type. Components are
// heap allocated once so the pointers handed out stay valid while the dense
// arrays are reordered.
type Pool[T any] struct {
	sparse   []int32
	entities []Entity
	values   []*T
	group    owner
}

func newPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

func (p *Pool[T]) index(e Entity) int {
	if int(e.ID) >= len(p.sparse) {
		return -1
	}
	idx := p.sparse[e.ID]
	if idx < 0 || p.entities[idx] != e {
		return -1
	}
	return int(idx)
}

func (p *Pool[T]) contains(e Entity) bool {
	return p.index(e) >= 0
}

func (p *Pool[T]) size() int {
	return len(p.entities)
}

func (p *Pool[T]) get(e Entity) *T {
	idx := p.index(e)
	if idx < 0 {
		return nil
	}
	return p.values[idx]
}

func (p *Pool[T]) insert(e Entity, value T) *T {
	for int(e.ID) >= len(p.sparse) {
		p.sparse = append(p.sparse, -1)
	}
	ptr := new(T)
	*ptr = value
	p.sparse[e.ID] = int32(len(p.entities))
	p.entities = append(p.entities, e)
	p.values = append(p.values, ptr)
	if p.group != nil {
		p.group.acquire(e)
	}
	return ptr
}

func (p *Pool[T]) remove(e Entity) bool {
	if !p.contains(e) {
		return false
	}
	if p.group != nil {
		p.group.release(e)
	}
	idx := p.index(e)
	last := len(p.entities) - 1
	p.swap(idx, last)

	p.sparse[e.ID] = -1
	p.values[last] = nil
	p.entities = p.entities[:last]
	p.values = p.values[:last]
	return true
}

func (p *Pool[T]) swap(i, j int) {
	if i == j {
		return
	}
	ei, ej := p.entities[i], p.entities[j]
	p.entities[i], p.entities[j] = ej, ei
	p.values[i], p.values[j] = p.values[j], p.values[i]
	p.sparse[ei.ID] = int32(j)
	p.sparse[ej.ID] = int32(i)
}
