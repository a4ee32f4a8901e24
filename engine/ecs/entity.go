package ecs

import "fmt"

// Entity is a generation-checked handle. A handle whose Version no longer
// matches the registry slot refers to a destroyed entity.
type Entity struct {
	ID      uint32
	Version uint32
}

// Null never refers to a live entity: versions start at 1.
var Null = Entity{}

func (e Entity) IsNull() bool {
	return e.Version == 0
}

func (e Entity) String() string {
	if e.IsNull() {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d v%d)", e.ID, e.Version)
}
