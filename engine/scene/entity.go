package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/ecs"
)

// Entity is a non-owning handle into a Scene. Two Entities are equal when
// they name the same handle in the same scene.
type Entity struct {
	handle ecs.Entity
	scene  *Scene
}

func (e Entity) Valid() bool {
	return e.scene != nil && e.scene.registry.Valid(e.handle)
}

func (e Entity) Handle() ecs.Entity { return e.handle }

func (e Entity) Scene() *Scene { return e.scene }

func (e Entity) Tag() string {
	if tc, ok := TryGetComponent[TagComponent](e); ok {
		return tc.Tag
	}
	return ""
}

func (e Entity) UUID() uuid.UUID {
	if id, ok := TryGetComponent[IDComponent](e); ok {
		return id.ID
	}
	return uuid.Nil
}

func (e Entity) String() string {
	return fmt.Sprintf("%s '%s'", e.handle, e.Tag())
}

func (e Entity) mustBeValid(op string) {
	if !e.Valid() {
		panic(fmt.Errorf("%s on %s: %w", op, e.handle, ecs.ErrInvalidEntity))
	}
}

// AddComponent attaches c to e. Adding a component that is already present
// is a programming error and panics; see TryAddComponent.
func AddComponent[T any](e Entity, c T) *T {
	e.mustBeValid("AddComponent")
	ptr, err := ecs.Add(e.scene.registry, e.handle, c)
	if err != nil {
		panic(err)
	}
	e.scene.onComponentAdded(e, ptr)
	return ptr
}

// TryAddComponent adds c unless e already has a T, in which case the
// existing component is returned untouched.
func TryAddComponent[T any](e Entity, c T) (*T, bool) {
	if existing, ok := TryGetComponent[T](e); ok {
		core.LogWarn("%s already has a %T, skipping", e, c)
		return existing, false
	}
	return AddComponent(e, c), true
}

// AddOrReplaceComponent overwrites an existing T in place, keeping its address.
func AddOrReplaceComponent[T any](e Entity, c T) *T {
	e.mustBeValid("AddOrReplaceComponent")
	if existing, ok := ecs.Get[T](e.scene.registry, e.handle); ok {
		e.scene.onComponentRemoved(e, existing)
	}
	ptr, err := ecs.AddOrReplace(e.scene.registry, e.handle, c)
	if err != nil {
		panic(err)
	}
	e.scene.onComponentAdded(e, ptr)
	return ptr
}

// GetComponent panics when e has no T; see TryGetComponent.
func GetComponent[T any](e Entity) *T {
	ptr, ok := TryGetComponent[T](e)
	if !ok {
		var zero T
		panic(fmt.Errorf("GetComponent %T on %s: %w", zero, e.handle, ecs.ErrComponentMissing))
	}
	return ptr
}

func TryGetComponent[T any](e Entity) (*T, bool) {
	if e.scene == nil {
		return nil, false
	}
	return ecs.Get[T](e.scene.registry, e.handle)
}

func HasComponent[T any](e Entity) bool {
	_, ok := TryGetComponent[T](e)
	return ok
}

// RemoveComponent reports whether a T was removed.
func RemoveComponent[T any](e Entity) bool {
	ptr, ok := TryGetComponent[T](e)
	if !ok {
		return false
	}
	e.scene.onComponentRemoved(e, ptr)
	return ecs.Remove[T](e.scene.registry, e.handle)
}
