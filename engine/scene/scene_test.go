package scene

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/tundra/engine/ecs"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

func TestCreateEntityDefaults(t *testing.T) {
	s, _, _ := newTestScene()

	cases := []struct {
		name string
		tag  string
		want string
	}{
		{"empty_tag", "", "Entity"},
		{"named", "Player", "Player"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := s.CreateEntity(tc.tag)
			if !HasComponent[TransformComponent](e) || !HasComponent[TagComponent](e) {
				t.Fatal("new entity must carry a Transform and a Tag")
			}
			if got := GetComponent[TagComponent](e).Tag; got != tc.want {
				t.Errorf("expected tag %q, got %q", tc.want, got)
			}
			if got := GetComponent[TransformComponent](e).GetTransform(); got != math.NewMat4Identity() {
				t.Errorf("default transform should be identity, got %v", got.Data)
			}
		})
	}
}

func TestCreateEntityWithHint(t *testing.T) {
	s, _, _ := newTestScene()
	e, err := s.CreateEntityWithHint(7, "seven")
	if err != nil {
		t.Fatal(err)
	}
	if e.Handle().ID != 7 {
		t.Fatalf("expected handle id 7, got %d", e.Handle().ID)
	}
	if _, err := s.CreateEntityWithHint(7, "again"); !errors.Is(err, ecs.ErrEntityExists) {
		t.Fatalf("expected ErrEntityExists, got %v", err)
	}
}

func TestTagRoundTrip(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("")

	AddOrReplaceComponent(e, TagComponent{Tag: "Foo"})
	if got := GetComponent[TagComponent](e).Tag; got != "Foo" {
		t.Fatalf("expected Foo, got %q", got)
	}
	if !RemoveComponent[TagComponent](e) {
		t.Fatal("RemoveComponent should report true")
	}
	if HasComponent[TagComponent](e) {
		t.Fatal("tag still present after removal")
	}

	AddComponent(e, TagComponent{Tag: "Foo"})
	if got := GetComponent[TagComponent](e).Tag; got != "Foo" {
		t.Fatalf("expected Foo after re-adding, got %q", got)
	}
}

func TestComponentMisuse(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("e")

	t.Run("duplicate_add_panics", func(t *testing.T) {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ecs.ErrComponentExists) {
				t.Fatalf("expected ErrComponentExists panic, got %v", r)
			}
		}()
		AddComponent(e, TagComponent{Tag: "twice"})
	})

	t.Run("missing_get_panics", func(t *testing.T) {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ecs.ErrComponentMissing) {
				t.Fatalf("expected ErrComponentMissing panic, got %v", r)
			}
		}()
		GetComponent[CameraComponent](e)
	})

	t.Run("try_add_keeps_existing", func(t *testing.T) {
		tc, added := TryAddComponent(e, TagComponent{Tag: "other"})
		if added || tc.Tag != "e" {
			t.Fatalf("TryAddComponent must not replace, got %q added=%v", tc.Tag, added)
		}
	})
}

func TestTransformCache(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("moving")
	tc := GetComponent[TransformComponent](e)

	p := math.NewVec3(3, -1, 2)
	tc.SetPosition(p)
	first := tc.GetTransform()
	if got := first.Translation(); got != p.ToVec4(1) {
		t.Fatalf("transform does not reflect the new position: %v", got)
	}
	if tc.IsDirty() {
		t.Fatal("read must clear the dirty flag")
	}
	second := tc.GetTransform()
	if first != second {
		t.Fatal("consecutive reads must be bit identical")
	}
}

func TestPrimaryCameraScenario(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("camera")
	cam := AddComponent(e, NewCameraComponent(true))
	GetComponent[TransformComponent](e).SetPosition(math.NewVec3(0, 0, 5))

	s.OnUpdate(0.016)

	got, transform, ok := s.PrimaryCamera()
	if !ok {
		t.Fatal("no primary camera cached")
	}
	if got != &cam.Camera {
		t.Fatal("cached camera is not the entity's camera")
	}
	if tr := transform.Translation(); tr != math.NewVec4(0, 0, 5, 1) {
		t.Fatalf("expected translation (0,0,5,1), got %v", tr)
	}
}

func TestPrimaryCameraSelection(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		for primaryIndex := 0; primaryIndex < n; primaryIndex++ {
			s, _, _ := newTestScene()
			var want *CameraComponent
			var wantEntity Entity
			for i := 0; i < n; i++ {
				e := s.CreateEntity("cam")
				cc := AddComponent(e, NewCameraComponent(i == primaryIndex))
				if i == primaryIndex {
					want, wantEntity = cc, e
				}
			}
			s.OnUpdate(0.016)
			got, _, ok := s.PrimaryCamera()
			if !ok || got != &want.Camera {
				t.Errorf("n=%d primary=%d: wrong camera cached", n, primaryIndex)
			}
			if s.GetPrimaryCameraEntity() != wantEntity {
				t.Errorf("n=%d primary=%d: wrong primary entity", n, primaryIndex)
			}
		}
	}
}

func TestPrimaryCameraClearedWhenMissing(t *testing.T) {
	s, backend, _ := newTestScene()
	e := s.CreateEntity("camera")
	AddComponent(e, NewCameraComponent(true))
	s.OnUpdate(0.016)

	s.DestroyEntity(e)
	if _, _, ok := s.PrimaryCamera(); ok {
		t.Fatal("destroyed camera must not stay cached")
	}
	s.OnDraw()
	if len(backend.Frames()) != 0 {
		t.Fatal("nothing should be drawn without a primary camera")
	}
	if s.GetPrimaryCameraEntity().Valid() {
		t.Fatal("expected an invalid entity when no camera is primary")
	}
}

func TestSetPrimaryCamera(t *testing.T) {
	s, _, _ := newTestScene()
	a := s.CreateEntity("a")
	b := s.CreateEntity("b")
	AddComponent(a, NewCameraComponent(true))
	AddComponent(b, NewCameraComponent(true))

	if err := s.SetPrimaryCamera(b); err != nil {
		t.Fatal(err)
	}
	if GetComponent[CameraComponent](a).Primary {
		t.Fatal("previous primary camera must be demoted")
	}
	if s.GetPrimaryCameraEntity() != b {
		t.Fatal("b should be the primary camera")
	}
	plain := s.CreateEntity("plain")
	if err := s.SetPrimaryCamera(plain); !errors.Is(err, ecs.ErrComponentMissing) {
		t.Fatalf("expected ErrComponentMissing, got %v", err)
	}
}

func TestDrawsOnlyDrawableModels(t *testing.T) {
	s, backend, _ := newTestScene()
	cam := s.CreateEntity("camera")
	AddComponent(cam, NewCameraComponent(true))

	want := map[string]math.Vec4{}
	for i, drawable := range []bool{true, false, true, true, false} {
		e := s.CreateEntity("model")
		name := string(rune('a' + i))
		pos := math.NewVec3(float32(i), 0, 0)
		GetComponent[TransformComponent](e).SetPosition(pos)
		AddComponent(e, ModelComponent{Model: &renderer.Model{Name: name}, Drawable: drawable})
		if drawable {
			want[name] = pos.ToVec4(1)
		}
	}
	// a model without a transform never joins the render group
	orphan := s.CreateEntity("orphan")
	AddComponent(orphan, ModelComponent{Model: &renderer.Model{Name: "orphan"}, Drawable: true})
	RemoveComponent[TransformComponent](orphan)

	// an entity that loses its model leaves the group
	gone := s.CreateEntity("gone")
	AddComponent(gone, ModelComponent{Model: &renderer.Model{Name: "gone"}, Drawable: true})
	RemoveComponent[ModelComponent](gone)

	s.OnUpdate(0.016)
	s.OnDraw()

	frame := backend.Last()
	if frame == nil {
		t.Fatal("no frame recorded")
	}
	if len(frame.Draws) != len(want) {
		t.Fatalf("expected %d draws, got %d", len(want), len(frame.Draws))
	}
	for _, d := range frame.Draws {
		name := d.Drawable.DrawableName()
		pos, ok := want[name]
		if !ok {
			t.Errorf("unexpected draw of %q", name)
			continue
		}
		if d.Transform.Translation() != pos {
			t.Errorf("%s drawn at %v, want %v", name, d.Transform.Translation(), pos)
		}
	}
}

func TestViewportResize(t *testing.T) {
	s, backend, _ := newTestScene()
	free := s.CreateEntity("free")
	fixed := s.CreateEntity("fixed")
	freeCam := AddComponent(free, NewCameraComponent(true))
	fixedCam := AddComponent(fixed, CameraComponent{Camera: NewSceneCamera(), FixedAspectRatio: true})

	s.OnViewportResize(800, 400)
	if freeCam.Camera.AspectRatio() != 2 {
		t.Errorf("expected aspect ratio 2, got %f", freeCam.Camera.AspectRatio())
	}
	if fixedCam.Camera.AspectRatio() != 16.0/9.0 {
		t.Errorf("fixed camera must keep its aspect ratio, got %f", fixedCam.Camera.AspectRatio())
	}
	if w, h := backend.Viewport(); w != 800 || h != 400 {
		t.Errorf("renderer viewport not updated: %dx%d", w, h)
	}

	// cameras added later pick up the cached viewport
	late := s.CreateEntity("late")
	lateCam := AddComponent(late, NewCameraComponent(false))
	if lateCam.Camera.AspectRatio() != 2 {
		t.Errorf("late camera should use the cached viewport, got %f", lateCam.Camera.AspectRatio())
	}
}

func TestNativeScriptFixedTicks(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("counter")
	nsc := AddComponent(e, NativeScriptComponent{})
	Bind[counterScript](nsc)

	for i := 0; i < 3; i++ {
		s.OnConstUpdate(0.016)
	}
	script, ok := GetComponent[NativeScriptComponent](e).Instance.(*counterScript)
	if !ok {
		t.Fatal("script was not instantiated")
	}
	if script.created != 1 {
		t.Errorf("OnCreate ran %d times, want 1", script.created)
	}
	if script.ticks != 3 {
		t.Errorf("expected 3 fixed ticks, got %d", script.ticks)
	}
	if script.Entity() != e {
		t.Error("script is attached to the wrong entity")
	}
}

func TestNativeScriptLifecycle(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("counter")
	nsc := AddComponent(e, NativeScriptComponent{})
	Bind[counterScript](nsc)

	if nsc.Instance != nil {
		t.Fatal("instance must be created lazily")
	}
	s.OnUpdate(0.016)
	s.OnUpdate(0.016)
	first := nsc.Instance.(*counterScript)
	if first.created != 1 || first.updates != 2 {
		t.Fatalf("expected 1 create and 2 updates, got %d and %d", first.created, first.updates)
	}

	// rebinding destroys the live instance, the new one comes on the next pass
	nsc.BindFunc("second", func() ScriptableEntity { return &counterScript{} })
	if first.destroyed != 1 || nsc.Instance != nil {
		t.Fatal("rebinding must destroy the previous instance")
	}
	s.OnUpdate(0.016)
	second := nsc.Instance.(*counterScript)
	if second == first || second.created != 1 {
		t.Fatal("rebinding must instantiate a fresh script")
	}

	s.DestroyEntity(e)
	if second.destroyed != 1 {
		t.Fatalf("DestroyEntity must call OnDestroy once, got %d", second.destroyed)
	}
	if e.Valid() {
		t.Fatal("entity still valid after DestroyEntity")
	}
}

func TestNativeScriptPanicIsContained(t *testing.T) {
	s, _, _ := newTestScene()
	bad := s.CreateEntity("bad")
	Bind[panickyScript](AddComponent(bad, NativeScriptComponent{}))
	good := s.CreateEntity("good")
	nsc := AddComponent(good, NativeScriptComponent{})
	Bind[counterScript](nsc)

	s.OnUpdate(0.016)
	if nsc.Instance.(*counterScript).updates != 1 {
		t.Fatal("a panicking script must not stop the others")
	}
}

func TestUUIDLookup(t *testing.T) {
	s, _, _ := newTestScene()
	e := s.CreateEntity("findme")
	found, ok := s.FindEntityByUUID(e.UUID())
	if !ok || found != e {
		t.Fatal("entity not found by uuid")
	}
	if byTag, ok := s.FindEntityByTag("findme"); !ok || byTag != e {
		t.Fatal("entity not found by tag")
	}
	s.DestroyEntity(e)
	if _, ok := s.FindEntityByUUID(e.UUID()); ok {
		t.Fatal("destroyed entity still indexed")
	}
}

func TestEntitiesOfDifferentScenesDiffer(t *testing.T) {
	s1, _, _ := newTestScene()
	s2, _, _ := newTestScene()
	a := s1.CreateEntity("a")
	b := s2.CreateEntity("b")

	if a.Handle() != b.Handle() {
		t.Fatalf("both scenes should hand out the same first handle, got %v and %v", a.Handle(), b.Handle())
	}
	if a == b {
		t.Fatal("entities of different scenes must not compare equal")
	}
	if s2.DestroyEntity(a) {
		t.Fatal("a scene must not destroy an entity of another scene")
	}
	if !a.Valid() || !b.Valid() {
		t.Fatal("a failed cross-scene destroy must leave both entities alive")
	}
	if found, ok := s2.EntityFromHandle(a.Handle()); !ok || found != b || found == a {
		t.Errorf("the handle resolves to the entity of the looked-up scene, got %v", found)
	}

	if !s2.DestroyEntity(b) {
		t.Fatal("DestroyEntity on its own scene failed")
	}
	if b.Valid() || !a.Valid() {
		t.Errorf("destroying b must not touch a: a valid=%v b valid=%v", a.Valid(), b.Valid())
	}
	if _, ok := s2.EntityFromHandle(a.Handle()); ok {
		t.Error("the handle of a must not be valid in the other scene once b is gone")
	}
	if got := GetComponent[TagComponent](a).Tag; got != "a" {
		t.Errorf("tag of a = %q", got)
	}
}
