package testbed

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/tundra/engine"
	"github.com/spaghettifunk/tundra/engine/assets/loaders"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/layers"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/renderer"
	"github.com/spaghettifunk/tundra/engine/scene"
)

const defaultGravity float32 = -9.8

//go:embed assets/models/cube.obj
var cubeOBJ string

// SandboxLayer owns the scene shown by the testbed. It loads the scene file
// named in the config or builds a small default scene.
type SandboxLayer struct {
	layers.Base

	ctx       *engine.Context
	scenePath string
	scene     *scene.Scene
}

func NewSandboxLayer(ctx *engine.Context, scenePath string) *SandboxLayer {
	return &SandboxLayer{
		Base:      layers.NewBase("Sandbox"),
		ctx:       ctx,
		scenePath: scenePath,
	}
}

func (l *SandboxLayer) Scene() *scene.Scene { return l.scene }

func (l *SandboxLayer) OnAttach() error {
	var provider scene.Assets
	if l.ctx.Assets != nil {
		provider = l.ctx.Assets
	}
	l.scene = scene.NewScene("Sandbox", l.ctx.Renderer, provider)

	if l.scenePath != "" {
		path := l.scenePath
		if l.ctx.Assets != nil && !filepath.IsAbs(path) {
			path = filepath.Join(l.ctx.Assets.Root(), path)
		}
		if err := scene.NewSerializer(l.scene).DeserializeFile(path); err != nil {
			return err
		}
	} else if err := buildDefaultScene(l.scene); err != nil {
		return err
	}

	l.bindScripts()
	l.scene.OnViewportResize(l.ctx.Window.Width(), l.ctx.Window.Height())

	gravity := defaultGravity
	if v, ok := l.scene.Properties["gravity"]; ok {
		if g, ok := toFloat32(v); ok {
			gravity = g
		}
	}
	l.scene.OnRuntimeStart(math.NewVec2(0, gravity))

	core.LogInfo("sandbox scene '%s' ready with %d entities", l.scene.Title, l.scene.EntityCount())
	return nil
}

func (l *SandboxLayer) OnDetach() {
	if l.scene != nil {
		l.scene.Close()
	}
}

func (l *SandboxLayer) OnUpdate(dt float64) {
	l.scene.OnUpdate(dt)
	l.scene.OnDraw()
}

func (l *SandboxLayer) OnConstUpdate(dt float64) {
	l.scene.OnConstUpdate(dt)
}

func (l *SandboxLayer) OnEvent(e *core.Event) {
	core.Dispatch(e, core.EVENT_CODE_WINDOW_RESIZE, func(e *core.Event) bool {
		if we, ok := e.Data.(*core.WindowEvent); ok && we.Width > 0 && we.Height > 0 {
			l.scene.OnViewportResize(we.Width, we.Height)
		}
		return false
	})
}

// bindScripts gives the primary camera a CameraController and every entity
// with a spin property a Rotator.
func (l *SandboxLayer) bindScripts() {
	primary := l.scene.GetPrimaryCameraEntity()
	for _, e := range l.scene.Entities() {
		if primary.Valid() && e == primary {
			bindNative(e, "CameraController", func() scene.ScriptableEntity {
				return NewCameraController(l.ctx.Input)
			})
			continue
		}
		if pc, ok := scene.TryGetComponent[scene.PropertiesComponent](e); ok {
			if _, ok := pc.Get(SpinProperty); ok {
				bindNative(e, "Rotator", func() scene.ScriptableEntity { return &Rotator{} })
			}
		}
	}
}

func bindNative(e scene.Entity, name string, factory func() scene.ScriptableEntity) {
	nsc, ok := scene.TryGetComponent[scene.NativeScriptComponent](e)
	if !ok {
		nsc = scene.AddComponent(e, scene.NativeScriptComponent{})
	}
	nsc.BindFunc(name, factory)
}

func buildDefaultScene(s *scene.Scene) error {
	cube, err := loaders.ParseOBJ("cube", strings.NewReader(cubeOBJ))
	if err != nil {
		return fmt.Errorf("default cube: %w", err)
	}
	s.Title = "Default"

	camera := s.CreateEntity("Camera")
	scene.GetComponent[scene.TransformComponent](camera).SetPosition(math.NewVec3(0, 1, 6))
	scene.AddComponent(camera, scene.NewCameraComponent(true))

	sun := s.CreateEntity("Sun")
	scene.GetComponent[scene.TransformComponent](sun).SetEulerRotation(math.NewVec3(-0.8, 0.3, 0))
	scene.AddComponent(sun, scene.LightComponent{
		Light:  renderer.NewLight(),
		Active: true,
	})

	spinner := s.CreateEntity("Cube")
	scene.AddComponent(spinner, scene.ModelComponent{Path: "models/cube.obj", Model: cube, Drawable: true})
	props := scene.AddComponent(spinner, scene.PropertiesComponent{})
	props.Set(SpinProperty, 1.0)
	return nil
}
