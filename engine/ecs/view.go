package ecs

// Each visits every T in pool order, which is insertion order as long as no
// T was removed and the pool is not owned by a group. fn must not add or
// remove T components.
func Each[T any](r *Registry, fn func(e Entity, c *T)) {
	p := poolOf[T](r, false)
	if p == nil {
		return
	}
	for i := 0; i < len(p.entities); i++ {
		fn(p.entities[i], p.values[i])
	}
}

// Find returns the first entity in pool order for which match is true.
func Find[T any](r *Registry, match func(e Entity, c *T) bool) (Entity, *T, bool) {
	p := poolOf[T](r, false)
	if p == nil {
		return Null, nil, false
	}
	for i := 0; i < len(p.entities); i++ {
		if match(p.entities[i], p.values[i]) {
			return p.entities[i], p.values[i], true
		}
	}
	return Null, nil, false
}

// View2 visits the entities carrying both A and B by walking the smaller
// pool and probing the other one.
func View2[A, B any](r *Registry, fn func(e Entity, a *A, b *B)) {
	pa := poolOf[A](r, false)
	pb := poolOf[B](r, false)
	if pa == nil || pb == nil {
		return
	}
	if pa.size() <= pb.size() {
		for _, e := range append([]Entity(nil), pa.entities...) {
			a, b := pa.get(e), pb.get(e)
			if a != nil && b != nil {
				fn(e, a, b)
			}
		}
		return
	}
	for _, e := range append([]Entity(nil), pb.entities...) {
		a, b := pa.get(e), pb.get(e)
		if a != nil && b != nil {
			fn(e, a, b)
		}
	}
}
