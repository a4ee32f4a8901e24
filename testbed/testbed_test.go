package testbed

import (
	"testing"
	"time"

	"github.com/spaghettifunk/tundra/engine"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/platform"
	"github.com/spaghettifunk/tundra/engine/renderer"
	"github.com/spaghettifunk/tundra/engine/scene"
)

func newCameraScene(t *testing.T, input *core.Input) (*scene.Scene, scene.Entity, *CameraController) {
	t.Helper()
	s := scene.NewScene("camera", nil, nil)
	cam := s.CreateEntity("Camera")
	scene.AddComponent(cam, scene.NewCameraComponent(true))

	controller := NewCameraController(input)
	nsc := scene.AddComponent(cam, scene.NativeScriptComponent{})
	nsc.BindFunc("CameraController", func() scene.ScriptableEntity { return controller })
	return s, cam, controller
}

// go test -run ^TestCameraControllerMoves$ . -count 1
func TestCameraControllerMoves(t *testing.T) {
	tests := []struct {
		name string
		key  core.KeyCode
		want math.Vec3
	}{
		{"forward", core.KEY_W, math.NewVec3(0, 0, -5)},
		{"backward", core.KEY_S, math.NewVec3(0, 0, 5)},
		{"up", core.KEY_E, math.NewVec3(0, 5, 0)},
		{"down", core.KEY_Q, math.NewVec3(0, -5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := core.NewInput()
			s, cam, _ := newCameraScene(t, input)

			input.Process(core.NewKeyEvent(tt.key, true))
			s.OnUpdate(1)

			got := scene.GetComponent[scene.TransformComponent](cam).Position()
			if !got.Compare(tt.want, 1e-4) {
				t.Errorf("position = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// go test -run ^TestCameraControllerPitchClamp$ . -count 1
func TestCameraControllerPitchClamp(t *testing.T) {
	input := core.NewInput()
	s, _, controller := newCameraScene(t, input)
	controller.TurnSpeed = 10

	input.Process(core.NewKeyEvent(core.KEY_UP, true))
	s.OnUpdate(1)
	if controller.Pitch() != pitchLimit {
		t.Fatalf("pitch = %v, want %v", controller.Pitch(), pitchLimit)
	}

	input.Process(core.NewKeyEvent(core.KEY_UP, false))
	input.Process(core.NewKeyEvent(core.KEY_DOWN, true))
	s.OnUpdate(1)
	if controller.Pitch() != -pitchLimit {
		t.Fatalf("pitch = %v, want %v", controller.Pitch(), -pitchLimit)
	}

	input.Process(core.NewKeyEvent(core.KEY_DOWN, false))
	input.Process(core.NewKeyEvent(core.KEY_LEFT, true))
	s.OnUpdate(0.1)
	if controller.Yaw() <= 0 {
		t.Errorf("yaw = %v, want positive", controller.Yaw())
	}
}

// go test -run ^TestRotatorReadsSpin$ . -count 1
func TestRotatorReadsSpin(t *testing.T) {
	s := scene.NewScene("rotator", nil, nil)
	e := s.CreateEntity("Spinner")
	props := scene.AddComponent(e, scene.PropertiesComponent{})
	props.Set(SpinProperty, 2.0)

	rotator := &Rotator{}
	nsc := scene.AddComponent(e, scene.NativeScriptComponent{})
	nsc.BindFunc("Rotator", func() scene.ScriptableEntity { return rotator })

	for i := 0; i < 4; i++ {
		s.OnConstUpdate(0.25)
	}
	if rotator.Speed != 2 {
		t.Fatalf("speed = %v, want 2", rotator.Speed)
	}
	if rotator.Angle() != 2 {
		t.Errorf("angle = %v, want 2", rotator.Angle())
	}
	rot := scene.GetComponent[scene.TransformComponent](e).Rotation()
	if rot.Y == 0 {
		t.Errorf("rotation not applied: %+v", rot)
	}
}

// go test -run ^TestStatsLayerToggle$ . -count 1
func TestStatsLayerToggle(t *testing.T) {
	l := NewStatsLayer(core.NewMetrics(), 500*time.Millisecond)

	l.OnUpdate(0.3)
	l.OnGuiRender()
	l.OnUpdate(0.3)
	l.OnGuiRender()
	if l.Reports() != 1 {
		t.Fatalf("reports = %d, want 1", l.Reports())
	}

	e := core.NewKeyEvent(core.KEY_GRAVE, true)
	l.OnEvent(e)
	if l.Visible() || !e.Handled {
		t.Fatal("grave key should hide the overlay")
	}
	l.OnUpdate(1)
	l.OnGuiRender()
	if l.Reports() != 1 {
		t.Errorf("hidden overlay reported")
	}

	other := core.NewKeyEvent(core.KEY_W, true)
	l.OnEvent(other)
	if other.Handled {
		t.Error("other keys must pass through")
	}
}

func runSandbox(t *testing.T, configure func(*engine.ApplicationConfig)) (*SandboxLayer, *renderer.RecordingBackend) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.AssetDir = ""
	cfg.HotReload = false
	cfg.Workers = 1
	cfg.LogLevel = "error"
	cfg.MaxFrames = 3
	configure(&cfg)

	backend := &renderer.RecordingBackend{}
	window := platform.NewHeadlessWindow(cfg.StartWidth, cfg.StartHeight)
	clock := core.NewManualTime(time.Unix(0, 0))
	app, err := engine.NewApplication(cfg, window, engine.WithBackend(backend), engine.WithTimeSource(clock))
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}

	sandbox := NewSandboxLayer(app.Context(), cfg.Scene)
	if err := app.PushLayer(sandbox); err != nil {
		t.Fatalf("PushLayer: %v", err)
	}
	if code := app.Run(); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	return sandbox, backend
}

// go test -run ^TestSandboxDefaultScene$ . -count 1
func TestSandboxDefaultScene(t *testing.T) {
	sandbox, backend := runSandbox(t, func(*engine.ApplicationConfig) {})

	frames := backend.Frames()
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}
	last := frames[2]
	if len(last.Draws) != 1 || len(last.Lights) != 1 {
		t.Fatalf("draws=%d lights=%d, want 1 each", len(last.Draws), len(last.Lights))
	}
	if last.Draws[0].Drawable.DrawableName() != "cube" {
		t.Errorf("drawn %q", last.Draws[0].Drawable.DrawableName())
	}
	if last.Width != 1280 || last.Height != 720 {
		t.Errorf("frame size = %dx%d", last.Width, last.Height)
	}
	if sandbox.Scene().EntityCount() != 0 {
		t.Errorf("scene not closed on detach: %d entities", sandbox.Scene().EntityCount())
	}
}

// go test -run ^TestSandboxSampleScene$ . -count 1
func TestSandboxSampleScene(t *testing.T) {
	_, backend := runSandbox(t, func(c *engine.ApplicationConfig) {
		c.AssetDir = "assets"
		c.Scene = "scenes/sandbox.toml"
	})

	last := backend.Last()
	if last == nil {
		t.Fatal("nothing rendered")
	}
	// spinner, bobber, crate and ground
	if len(last.Draws) != 4 {
		t.Errorf("draws = %d, want 4", len(last.Draws))
	}
	if len(last.Lights) != 1 {
		t.Errorf("lights = %d, want 1", len(last.Lights))
	}
}
