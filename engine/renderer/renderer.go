package renderer

import (
	"fmt"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/math"
)

// Renderer is the contract the scene draws through. Everything submitted
// between BeginScene and EndScene is buffered in submission order.
type Renderer interface {
	BeginScene(camera Camera, transform math.Mat4)
	SubmitLight(light *Light, transform math.Mat4)
	Draw(drawable Drawable, transform math.Mat4)
	EndScene() error
	SetViewport(width, height uint32)
}

type DrawCommand struct {
	Drawable  Drawable
	Transform math.Mat4
}

type LightCommand struct {
	Light     Light
	Transform math.Mat4
}

// Frame is what a backend receives once per EndScene.
type Frame struct {
	Number         uint64
	Width          uint32
	Height         uint32
	View           math.Mat4
	Projection     math.Mat4
	ViewProjection math.Mat4
	Lights         []LightCommand
	Draws          []DrawCommand
}

// ForwardRenderer records a Frame and hands it to the backend at EndScene.
type ForwardRenderer struct {
	backend Backend
	width   uint32
	height  uint32
	frames  uint64
	frame   *Frame
}

func NewForwardRenderer(backend Backend) *ForwardRenderer {
	return &ForwardRenderer{backend: backend}
}

func (r *ForwardRenderer) Initialize(appName string, width, height uint32) error {
	r.width, r.height = width, height
	if err := r.backend.Initialize(appName, width, height); err != nil {
		return fmt.Errorf("renderer backend: %w", err)
	}
	return nil
}

func (r *ForwardRenderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *ForwardRenderer) SetViewport(width, height uint32) {
	r.width, r.height = width, height
	if err := r.backend.Resized(width, height); err != nil {
		core.LogError("renderer failed to resize to %dx%d: %s", width, height, err)
	}
}

func (r *ForwardRenderer) BeginScene(camera Camera, transform math.Mat4) {
	if r.frame != nil {
		core.LogWarn("BeginScene called twice without EndScene, dropping %d draws", len(r.frame.Draws))
	}
	view := transform.Inverse()
	projection := camera.Projection()
	r.frames++
	r.frame = &Frame{
		Number:         r.frames,
		Width:          r.width,
		Height:         r.height,
		View:           view,
		Projection:     projection,
		ViewProjection: view.Mul(projection),
	}
}

func (r *ForwardRenderer) SubmitLight(light *Light, transform math.Mat4) {
	if r.frame == nil || light == nil {
		return
	}
	r.frame.Lights = append(r.frame.Lights, LightCommand{Light: *light, Transform: transform})
}

func (r *ForwardRenderer) Draw(drawable Drawable, transform math.Mat4) {
	if r.frame == nil {
		core.LogWarn("Draw called outside of BeginScene/EndScene")
		return
	}
	r.frame.Draws = append(r.frame.Draws, DrawCommand{Drawable: drawable, Transform: transform})
}

func (r *ForwardRenderer) EndScene() error {
	if r.frame == nil {
		return nil
	}
	frame := r.frame
	r.frame = nil
	if err := r.backend.BeginFrame(frame); err != nil {
		return err
	}
	return r.backend.EndFrame(frame)
}
