package scene

import (
	"github.com/spaghettifunk/tundra/engine/math"
)

type ProjectionType uint8

const (
	ProjectionPerspective ProjectionType = iota
	ProjectionOrthographic
)

func (p ProjectionType) String() string {
	if p == ProjectionOrthographic {
		return "orthographic"
	}
	return "perspective"
}

func ParseProjectionType(s string) ProjectionType {
	if s == "orthographic" {
		return ProjectionOrthographic
	}
	return ProjectionPerspective
}

// SceneCamera holds the projection parameters of a camera component. The
// view matrix comes from the entity transform.
type SceneCamera struct {
	projectionType ProjectionType

	perspectiveFOV  float32
	perspectiveNear float32
	perspectiveFar  float32

	orthographicSize float32
	orthographicNear float32
	orthographicFar  float32

	aspectRatio float32
	projection  math.Mat4
}

func NewSceneCamera() SceneCamera {
	c := SceneCamera{
		projectionType:   ProjectionPerspective,
		perspectiveFOV:   math.DegToRad(45.0),
		perspectiveNear:  0.01,
		perspectiveFar:   1000.0,
		orthographicSize: 10.0,
		orthographicNear: -1.0,
		orthographicFar:  1.0,
		aspectRatio:      16.0 / 9.0,
	}
	c.recalculateProjection()
	return c
}

func (c *SceneCamera) SetPerspective(fovRadians, nearClip, farClip float32) {
	c.projectionType = ProjectionPerspective
	c.perspectiveFOV = fovRadians
	c.perspectiveNear = nearClip
	c.perspectiveFar = farClip
	c.recalculateProjection()
}

func (c *SceneCamera) SetOrthographic(size, nearClip, farClip float32) {
	c.projectionType = ProjectionOrthographic
	c.orthographicSize = size
	c.orthographicNear = nearClip
	c.orthographicFar = farClip
	c.recalculateProjection()
}

// SetViewportSize updates the aspect ratio. A zero height keeps the previous one.
func (c *SceneCamera) SetViewportSize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.aspectRatio = float32(width) / float32(height)
	c.recalculateProjection()
}

func (c *SceneCamera) SetProjectionType(p ProjectionType) {
	c.projectionType = p
	c.recalculateProjection()
}

func (c *SceneCamera) ProjectionType() ProjectionType { return c.projectionType }

func (c *SceneCamera) AspectRatio() float32 { return c.aspectRatio }

func (c *SceneCamera) Perspective() (fov, nearClip, farClip float32) {
	return c.perspectiveFOV, c.perspectiveNear, c.perspectiveFar
}

func (c *SceneCamera) Orthographic() (size, nearClip, farClip float32) {
	return c.orthographicSize, c.orthographicNear, c.orthographicFar
}

// Projection satisfies renderer.Camera.
func (c *SceneCamera) Projection() math.Mat4 {
	return c.projection
}

func (c *SceneCamera) recalculateProjection() {
	if c.projectionType == ProjectionPerspective {
		c.projection = math.NewMat4Perspective(c.perspectiveFOV, c.aspectRatio, c.perspectiveNear, c.perspectiveFar)
		return
	}
	left := -c.orthographicSize * c.aspectRatio * 0.5
	right := c.orthographicSize * c.aspectRatio * 0.5
	bottom := -c.orthographicSize * 0.5
	top := c.orthographicSize * 0.5
	c.projection = math.NewMat4Orthographic(left, right, bottom, top, c.orthographicNear, c.orthographicFar)
}
