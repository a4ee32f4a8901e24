package testbed

import (
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/scene"
)

// 89 degrees, or equivalent to DegToRad(89.0)
const pitchLimit float32 = 1.55334306

/**
 * @brief Free fly camera driven by the keyboard. WASD moves on the camera
 * plane, Q and E move down and up, the arrow keys turn the camera.
 */
type CameraController struct {
	scene.ScriptBase

	Input *core.Input
	/** @brief Movement speed in units per second. */
	MoveSpeed float32
	/** @brief Turn speed in radians per second. */
	TurnSpeed float32

	yaw   float32
	pitch float32
}

func NewCameraController(input *core.Input) *CameraController {
	return &CameraController{Input: input, MoveSpeed: 5, TurnSpeed: 1}
}

func (c *CameraController) Yaw() float32   { return c.yaw }
func (c *CameraController) Pitch() float32 { return c.pitch }

func (c *CameraController) OnCreate() {
	if tc, ok := scene.TryGetComponent[scene.TransformComponent](c.Entity()); ok {
		euler := tc.EulerRotation()
		c.pitch, c.yaw = euler.X, euler.Y
	}
}

func (c *CameraController) OnUpdate(dt float64) {
	if c.Input == nil {
		return
	}
	tc, ok := scene.TryGetComponent[scene.TransformComponent](c.Entity())
	if !ok {
		return
	}
	delta := float32(dt)

	turned := false
	if c.Input.IsKeyDown(core.KEY_LEFT) {
		c.yaw += c.TurnSpeed * delta
		turned = true
	}
	if c.Input.IsKeyDown(core.KEY_RIGHT) {
		c.yaw -= c.TurnSpeed * delta
		turned = true
	}
	if c.Input.IsKeyDown(core.KEY_UP) {
		c.pitch += c.TurnSpeed * delta
		turned = true
	}
	if c.Input.IsKeyDown(core.KEY_DOWN) {
		c.pitch -= c.TurnSpeed * delta
		turned = true
	}
	if turned {
		// Clamp to avoid Gimbal lock.
		c.pitch = math.Clamp(c.pitch, -pitchLimit, pitchLimit)
		tc.SetEulerRotation(math.NewVec3(c.pitch, c.yaw, 0))
	}

	view := tc.GetInverse()
	velocity := math.NewVec3Zero()
	if c.Input.IsKeyDown(core.KEY_W) {
		velocity = velocity.Add(view.Forward())
	}
	if c.Input.IsKeyDown(core.KEY_S) {
		velocity = velocity.Sub(view.Forward())
	}
	if c.Input.IsKeyDown(core.KEY_A) {
		velocity = velocity.Sub(view.Right())
	}
	if c.Input.IsKeyDown(core.KEY_D) {
		velocity = velocity.Add(view.Right())
	}
	if c.Input.IsKeyDown(core.KEY_E) {
		velocity = velocity.Add(math.NewVec3Up())
	}
	if c.Input.IsKeyDown(core.KEY_Q) {
		velocity = velocity.Sub(math.NewVec3Up())
	}

	if velocity.LengthSquared() > 0 {
		tc.Translate(velocity.Normalize().MulScalar(c.MoveSpeed * delta))
	}
}
