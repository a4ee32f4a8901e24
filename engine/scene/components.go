package scene

import (
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"

	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

// IDComponent carries the persistent identity of an entity.
type IDComponent struct {
	ID uuid.UUID
}

type TagComponent struct {
	Tag string
}

// TransformComponent wraps a math.Transform. The matrices are recomputed
// lazily on read after any mutator ran.
type TransformComponent struct {
	math.Transform
}

func NewTransformComponent(position math.Vec3) TransformComponent {
	return TransformComponent{Transform: math.NewTransformFromPosition(position)}
}

// GetTransform returns the cached world matrix.
func (t *TransformComponent) GetTransform() math.Mat4 {
	return t.GetWorld()
}

// SetEulerRotation sets the rotation from Euler angles in radians.
func (t *TransformComponent) SetEulerRotation(euler math.Vec3) {
	t.SetRotation(math.NewQuatFromEuler(euler))
}

func (t *TransformComponent) EulerRotation() math.Vec3 {
	return t.Rotation().ToEuler()
}

type CameraComponent struct {
	Camera  SceneCamera
	Primary bool
	// Keeps the camera aspect ratio when the viewport is resized.
	FixedAspectRatio bool
}

func NewCameraComponent(primary bool) CameraComponent {
	return CameraComponent{Camera: NewSceneCamera(), Primary: primary}
}

type ModelComponent struct {
	Path     string
	Model    *renderer.Model
	Drawable bool
}

type LightComponent struct {
	Light  renderer.Light
	Active bool
}

type TextComponent struct {
	Text     renderer.Text
	FontPath string
	Drawable bool
}

// ScriptComponent attaches a tengo script to the entity.
type ScriptComponent struct {
	Path     string
	instance *scriptInstance
}

type BodyType uint8

const (
	BodyTypeStatic BodyType = iota
	BodyTypeDynamic
	BodyTypeKinematic
)

func (b BodyType) String() string {
	switch b {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeKinematic:
		return "kinematic"
	}
	return "static"
}

func ParseBodyType(s string) BodyType {
	switch s {
	case "dynamic":
		return BodyTypeDynamic
	case "kinematic":
		return BodyTypeKinematic
	}
	return BodyTypeStatic
}

// RigidBodyComponent simulates the entity in the XY plane while the scene
// runtime is started.
type RigidBodyComponent struct {
	Type          BodyType
	FixedRotation bool
	Mass          float32
	body          *cp.Body
}

// Velocity returns the body velocity, zero when the runtime is stopped.
func (rb *RigidBodyComponent) Velocity() math.Vec2 {
	if rb.body == nil {
		return math.Vec2{}
	}
	v := rb.body.Velocity()
	return math.NewVec2(float32(v.X), float32(v.Y))
}

func (rb *RigidBodyComponent) SetVelocity(v math.Vec2) {
	if rb.body == nil {
		return
	}
	rb.body.SetVelocity(float64(v.X), float64(v.Y))
}

func (rb *RigidBodyComponent) ApplyImpulse(impulse math.Vec2) {
	if rb.body == nil {
		return
	}
	rb.body.ApplyImpulseAtLocalPoint(cp.Vector{X: float64(impulse.X), Y: float64(impulse.Y)}, cp.Vector{})
}

type BoxColliderComponent struct {
	Offset      math.Vec2
	Size        math.Vec2
	Friction    float32
	Restitution float32
	shape       *cp.Shape
}

func NewBoxColliderComponent() BoxColliderComponent {
	return BoxColliderComponent{Size: math.NewVec2One(), Friction: 0.5}
}

// PropertiesComponent is a free-form property bag.
type PropertiesComponent struct {
	Values map[string]any
}

func (p *PropertiesComponent) Get(key string) (any, bool) {
	v, ok := p.Values[key]
	return v, ok
}

func (p *PropertiesComponent) Set(key string, value any) {
	if p.Values == nil {
		p.Values = make(map[string]any)
	}
	p.Values[key] = value
}
