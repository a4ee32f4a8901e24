package scene

import (
	"github.com/jakecoffman/cp"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/ecs"
	"github.com/spaghettifunk/tundra/engine/math"
)

// physicsWorld simulates rigid bodies in the XY plane. It exists between
// OnRuntimeStart and OnRuntimeStop.
type physicsWorld struct {
	space *cp.Space
}

// OnRuntimeStart builds the physics space from every entity with a
// RigidBodyComponent. Bodies added later join the running space.
func (s *Scene) OnRuntimeStart(gravity math.Vec2) {
	if s.physics != nil {
		return
	}
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{X: float64(gravity.X), Y: float64(gravity.Y)})
	s.physics = &physicsWorld{space: space}

	ecs.View2(s.registry, func(h ecs.Entity, _ *TransformComponent, rb *RigidBodyComponent) {
		e := Entity{handle: h, scene: s}
		bc, _ := TryGetComponent[BoxColliderComponent](e)
		s.physics.addBody(e, rb, bc)
	})
	core.LogDebug("physics runtime started for '%s'", s.Title)
}

// OnRuntimeStop drops the space. Transforms keep the last simulated state.
func (s *Scene) OnRuntimeStop() {
	if s.physics == nil {
		return
	}
	ecs.Each(s.registry, func(h ecs.Entity, rb *RigidBodyComponent) {
		bc, _ := ecs.Get[BoxColliderComponent](s.registry, h)
		s.physics.removeBody(rb, bc)
	})
	s.physics = nil
}

func (s *Scene) Running() bool {
	return s.physics != nil
}

func (pw *physicsWorld) addBody(e Entity, rb *RigidBodyComponent, bc *BoxColliderComponent) {
	if rb.body != nil {
		return
	}
	tc, ok := TryGetComponent[TransformComponent](e)
	if !ok {
		return
	}

	var body *cp.Body
	switch rb.Type {
	case BodyTypeDynamic:
		mass := float64(rb.Mass)
		if mass <= 0 {
			mass = 1
		}
		moment := cp.INFINITY
		if !rb.FixedRotation {
			w, h := colliderSize(tc, bc)
			moment = cp.MomentForBox(mass, w, h)
		}
		body = cp.NewBody(mass, moment)
	case BodyTypeKinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewStaticBody()
	}

	pos := tc.Position()
	body.SetPosition(cp.Vector{X: float64(pos.X), Y: float64(pos.Y)})
	body.SetAngle(float64(tc.EulerRotation().Z))
	body.UserData = e.handle
	rb.body = pw.space.AddBody(body)

	if bc != nil {
		pw.addShape(e, rb, bc)
	}
}

func (pw *physicsWorld) addShape(e Entity, rb *RigidBodyComponent, bc *BoxColliderComponent) {
	if rb.body == nil || bc.shape != nil {
		return
	}
	tc, ok := TryGetComponent[TransformComponent](e)
	if !ok {
		return
	}
	w, h := colliderSize(tc, bc)
	ox, oy := float64(bc.Offset.X), float64(bc.Offset.Y)
	bb := cp.BB{L: ox - w/2, B: oy - h/2, R: ox + w/2, T: oy + h/2}

	shape := cp.NewBox2(rb.body, bb, 0)
	shape.SetFriction(float64(bc.Friction))
	shape.SetElasticity(float64(bc.Restitution))
	bc.shape = pw.space.AddShape(shape)
}

func (pw *physicsWorld) removeShape(bc *BoxColliderComponent) {
	if bc == nil || bc.shape == nil {
		return
	}
	pw.space.RemoveShape(bc.shape)
	bc.shape = nil
}

func (pw *physicsWorld) removeBody(rb *RigidBodyComponent, bc *BoxColliderComponent) {
	pw.removeShape(bc)
	if rb.body == nil {
		return
	}
	pw.space.RemoveBody(rb.body)
	rb.body = nil
}

// step advances the simulation and writes positions and the Z rotation
// back into the transforms of the simulated entities.
func (pw *physicsWorld) step(s *Scene, dt float64) {
	pw.space.Step(dt)
	ecs.View2(s.registry, func(_ ecs.Entity, tc *TransformComponent, rb *RigidBodyComponent) {
		if rb.body == nil || rb.Type == BodyTypeStatic {
			return
		}
		p := rb.body.Position()
		pos := tc.Position()
		tc.SetPosition(math.NewVec3(float32(p.X), float32(p.Y), pos.Z))

		euler := tc.EulerRotation()
		euler.Z = float32(rb.body.Angle())
		tc.SetEulerRotation(euler)
	})
}

func colliderSize(tc *TransformComponent, bc *BoxColliderComponent) (float64, float64) {
	scale := tc.Scale()
	if bc == nil {
		return float64(scale.X), float64(scale.Y)
	}
	return float64(bc.Size.X * scale.X), float64(bc.Size.Y * scale.Y)
}
