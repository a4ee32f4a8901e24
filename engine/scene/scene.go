package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/ecs"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

// Assets is what the scene needs from the asset layer: loaded resources and
// change notifications for hot reload.
type Assets interface {
	LoadModel(path string) (*renderer.Model, error)
	LoadFont(path string) (*renderer.Font, error)
	LoadScript(path string) ([]byte, error)
	// Watch calls fn from any goroutine when path changes on disk.
	Watch(path string, fn func(path string)) (cancel func(), err error)
}

type primaryCamera struct {
	entity    ecs.Entity
	camera    *CameraComponent
	transform math.Mat4
}

// Scene owns the entities and their components and drives scripts, the
// primary camera, physics and the render pass.
type Scene struct {
	Title      string
	Properties map[string]any

	registry    *ecs.Registry
	renderGroup *ecs.Group[TransformComponent, ModelComponent]
	renderer    renderer.Renderer
	assets      Assets

	viewportWidth  uint32
	viewportHeight uint32

	primary *primaryCamera
	byUUID  map[uuid.UUID]ecs.Entity

	scripts *scriptEngine
	physics *physicsWorld
}

// NewScene creates an empty scene. r and assets may be nil: drawing is then
// skipped and resources are never loaded.
func NewScene(title string, r renderer.Renderer, assets Assets) *Scene {
	registry := ecs.NewRegistry()
	group, err := ecs.NewGroup[TransformComponent, ModelComponent](registry)
	if err != nil {
		// fresh registry, no pool can be owned yet
		panic(err)
	}
	s := &Scene{
		Title:       title,
		Properties:  make(map[string]any),
		registry:    registry,
		renderGroup: group,
		renderer:    r,
		assets:      assets,
		byUUID:      make(map[uuid.UUID]ecs.Entity),
	}
	s.scripts = newScriptEngine(s)
	return s
}

// CreateEntity creates an entity with an ID, a Tag ("Entity" when empty)
// and an identity Transform.
func (s *Scene) CreateEntity(tag string) Entity {
	return s.setupEntity(s.registry.Create(), uuid.New(), tag)
}

// CreateEntityWithHint creates the entity with the given handle id. It fails
// when the id is in use.
func (s *Scene) CreateEntityWithHint(id uint32, tag string) (Entity, error) {
	h, err := s.registry.CreateWithHint(id)
	if err != nil {
		return Entity{}, err
	}
	return s.setupEntity(h, uuid.New(), tag), nil
}

func (s *Scene) CreateEntityWithUUID(id uuid.UUID, tag string) Entity {
	return s.setupEntity(s.registry.Create(), id, tag)
}

func (s *Scene) setupEntity(h ecs.Entity, id uuid.UUID, tag string) Entity {
	e := Entity{handle: h, scene: s}
	if tag == "" {
		tag = "Entity"
	}
	AddComponent(e, IDComponent{ID: id})
	AddComponent(e, TagComponent{Tag: tag})
	AddComponent(e, NewTransformComponent(math.NewVec3Zero()))
	return e
}

// DestroyEntity runs the destroy hooks of the entity scripts, removes its
// physics body and then erases every component. It must not be called from
// inside an iteration over a component type the entity carries.
func (s *Scene) DestroyEntity(e Entity) bool {
	if !e.Valid() || e.scene != s {
		return false
	}
	if nsc, ok := TryGetComponent[NativeScriptComponent](e); ok {
		s.onComponentRemoved(e, nsc)
	}
	if sc, ok := TryGetComponent[ScriptComponent](e); ok {
		s.onComponentRemoved(e, sc)
	}
	if rb, ok := TryGetComponent[RigidBodyComponent](e); ok {
		s.onComponentRemoved(e, rb)
	}
	if id, ok := TryGetComponent[IDComponent](e); ok {
		s.onComponentRemoved(e, id)
	}
	if s.primary != nil && s.primary.entity == e.handle {
		s.primary = nil
	}
	return s.registry.Destroy(e.handle)
}

func (s *Scene) EntityCount() int {
	return s.registry.Alive()
}

// Entities returns a snapshot of the live entities in ascending handle order.
func (s *Scene) Entities() []Entity {
	handles := s.registry.Entities()
	out := make([]Entity, len(handles))
	for i, h := range handles {
		out[i] = Entity{handle: h, scene: s}
	}
	return out
}

func (s *Scene) EntityFromHandle(h ecs.Entity) (Entity, bool) {
	e := Entity{handle: h, scene: s}
	return e, e.Valid()
}

func (s *Scene) FindEntityByUUID(id uuid.UUID) (Entity, bool) {
	h, ok := s.byUUID[id]
	if !ok {
		return Entity{}, false
	}
	return s.EntityFromHandle(h)
}

// FindEntityByTag returns the first entity, in tag pool order, named tag.
func (s *Scene) FindEntityByTag(tag string) (Entity, bool) {
	h, _, ok := ecs.Find(s.registry, func(_ ecs.Entity, tc *TagComponent) bool { return tc.Tag == tag })
	if !ok {
		return Entity{}, false
	}
	return Entity{handle: h, scene: s}, true
}

// OnUpdate runs the variable rate pass: pending script reloads, native
// scripts, tengo scripts and finally the primary camera selection.
func (s *Scene) OnUpdate(dt float64) {
	s.scripts.applyReloads()
	s.runNativeScripts("OnUpdate", func(inst ScriptableEntity) { inst.OnUpdate(dt) })
	s.scripts.run(phaseUpdate, dt)
	s.selectPrimaryCamera()
}

// OnConstUpdate is the fixed rate pass. The scheduler calls it zero or more
// times per frame with the fixed step.
func (s *Scene) OnConstUpdate(dt float64) {
	s.runNativeScripts("OnConstUpdate", func(inst ScriptableEntity) { inst.OnConstUpdate(dt) })
	s.scripts.run(phaseConstUpdate, dt)
	if s.physics != nil {
		s.physics.step(s, dt)
	}
}

// OnDraw submits the frame seen from the cached primary camera. Nothing is
// drawn without one.
func (s *Scene) OnDraw() {
	if s.renderer == nil || !s.primaryCameraValid() {
		return
	}
	s.renderer.BeginScene(&s.primary.camera.Camera, s.primary.transform)

	ecs.View2(s.registry, func(_ ecs.Entity, tc *TransformComponent, lc *LightComponent) {
		if lc.Active {
			s.renderer.SubmitLight(&lc.Light, tc.GetTransform())
		}
	})

	s.renderGroup.Each(func(_ ecs.Entity, tc *TransformComponent, mc *ModelComponent) {
		if mc.Drawable && mc.Model != nil {
			s.renderer.Draw(mc.Model, tc.GetTransform())
		}
	})

	ecs.View2(s.registry, func(_ ecs.Entity, tc *TransformComponent, txt *TextComponent) {
		if txt.Drawable && txt.Text.Font != nil {
			s.renderer.Draw(&txt.Text, tc.GetTransform())
		}
	})

	if err := s.renderer.EndScene(); err != nil {
		core.LogError("failed to end scene '%s': %s", s.Title, err)
	}
}

// OnViewportResize resizes every camera that does not keep a fixed aspect ratio.
func (s *Scene) OnViewportResize(width, height uint32) {
	s.viewportWidth, s.viewportHeight = width, height
	ecs.Each(s.registry, func(_ ecs.Entity, cc *CameraComponent) {
		if !cc.FixedAspectRatio {
			cc.Camera.SetViewportSize(width, height)
		}
	})
	if s.renderer != nil {
		s.renderer.SetViewport(width, height)
	}
}

func (s *Scene) ViewportSize() (uint32, uint32) {
	return s.viewportWidth, s.viewportHeight
}

// GetPrimaryCameraEntity scans the cameras in pool order and returns the
// first primary one, or an invalid Entity.
func (s *Scene) GetPrimaryCameraEntity() Entity {
	h, _, ok := ecs.Find(s.registry, func(_ ecs.Entity, cc *CameraComponent) bool { return cc.Primary })
	if !ok {
		return Entity{}
	}
	return Entity{handle: h, scene: s}
}

// SetPrimaryCamera makes e the only primary camera of the scene.
func (s *Scene) SetPrimaryCamera(e Entity) error {
	if _, ok := TryGetComponent[CameraComponent](e); !ok {
		return fmt.Errorf("set primary camera on %s: %w", e, ecs.ErrComponentMissing)
	}
	ecs.Each(s.registry, func(h ecs.Entity, cc *CameraComponent) {
		cc.Primary = h == e.handle
	})
	s.selectPrimaryCamera()
	return nil
}

// PrimaryCamera returns the camera and world transform cached by the last
// OnUpdate.
func (s *Scene) PrimaryCamera() (*SceneCamera, math.Mat4, bool) {
	if !s.primaryCameraValid() {
		return nil, math.NewMat4Identity(), false
	}
	return &s.primary.camera.Camera, s.primary.transform, true
}

func (s *Scene) selectPrimaryCamera() {
	s.primary = nil
	h, cc, ok := ecs.Find(s.registry, func(h ecs.Entity, cc *CameraComponent) bool {
		return cc.Primary && ecs.Has[TransformComponent](s.registry, h)
	})
	if !ok {
		return
	}
	tc, _ := ecs.Get[TransformComponent](s.registry, h)
	s.primary = &primaryCamera{entity: h, camera: cc, transform: tc.GetTransform()}
}

// the cached pointer is only trusted while the entity still owns that camera
func (s *Scene) primaryCameraValid() bool {
	if s.primary == nil {
		return false
	}
	cc, ok := ecs.Get[CameraComponent](s.registry, s.primary.entity)
	if !ok || cc != s.primary.camera {
		s.primary = nil
		return false
	}
	return true
}

// Close stops the runtime, destroys every entity and releases file watches.
func (s *Scene) Close() {
	s.OnRuntimeStop()
	for _, e := range s.Entities() {
		s.DestroyEntity(e)
	}
	s.scripts.close()
}

func (s *Scene) nativeScriptEntities() []ecs.Entity {
	var out []ecs.Entity
	ecs.Each(s.registry, func(h ecs.Entity, _ *NativeScriptComponent) { out = append(out, h) })
	return out
}

func (s *Scene) onComponentAdded(e Entity, component any) {
	switch c := component.(type) {
	case *IDComponent:
		s.byUUID[c.ID] = e.handle
	case *TransformComponent:
		if c.Transform == (math.Transform{}) {
			c.Transform = math.NewTransform()
		}
	case *CameraComponent:
		if c.Camera == (SceneCamera{}) {
			c.Camera = NewSceneCamera()
		}
		if s.viewportWidth > 0 && s.viewportHeight > 0 && !c.FixedAspectRatio {
			c.Camera.SetViewportSize(s.viewportWidth, s.viewportHeight)
		}
	case *ScriptComponent:
		s.scripts.attach(e, c)
	case *RigidBodyComponent:
		if s.physics != nil {
			bc, _ := TryGetComponent[BoxColliderComponent](e)
			s.physics.addBody(e, c, bc)
		}
	case *BoxColliderComponent:
		if s.physics != nil {
			if rb, ok := TryGetComponent[RigidBodyComponent](e); ok {
				s.physics.addShape(e, rb, c)
			}
		}
	case *ModelComponent, *TextComponent, *LightComponent:
	}
}

func (s *Scene) onComponentRemoved(e Entity, component any) {
	switch c := component.(type) {
	case *IDComponent:
		delete(s.byUUID, c.ID)
	case *CameraComponent:
		if s.primary != nil && s.primary.camera == c {
			s.primary = nil
		}
	case *NativeScriptComponent:
		c.destroyInstance()
	case *ScriptComponent:
		s.scripts.detach(e, c)
	case *RigidBodyComponent:
		if s.physics != nil {
			bc, _ := TryGetComponent[BoxColliderComponent](e)
			s.physics.removeBody(c, bc)
		}
	case *BoxColliderComponent:
		if s.physics != nil {
			s.physics.removeShape(c)
		}
	}
}
