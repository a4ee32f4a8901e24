package testbed

import (
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/scene"
)

// SpinProperty is the PropertiesComponent key that attaches a Rotator.
const SpinProperty = "spin"

// Rotator turns its entity around the Y axis at the fixed update rate.
type Rotator struct {
	scene.ScriptBase

	// Radians per second.
	Speed float32
	angle float32
}

func (r *Rotator) Angle() float32 { return r.angle }

func (r *Rotator) OnCreate() {
	if pc, ok := scene.TryGetComponent[scene.PropertiesComponent](r.Entity()); ok {
		if v, ok := pc.Get(SpinProperty); ok {
			if speed, ok := toFloat32(v); ok {
				r.Speed = speed
			}
		}
	}
}

func (r *Rotator) OnConstUpdate(dt float64) {
	tc, ok := scene.TryGetComponent[scene.TransformComponent](r.Entity())
	if !ok {
		return
	}
	step := r.Speed * float32(dt)
	r.angle += step
	tc.Rotate(math.NewQuatFromAxisAngle(math.NewVec3Up(), step, true))
}

// property values come from TOML or YAML decoders
func toFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int64:
		return float32(n), true
	case int:
		return float32(n), true
	}
	return 0, false
}
