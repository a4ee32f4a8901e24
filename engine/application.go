package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/spaghettifunk/tundra/engine/assets"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/jobs"
	"github.com/spaghettifunk/tundra/engine/layers"
	"github.com/spaghettifunk/tundra/engine/platform"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

type Stage uint8

const (
	// Application is in an uninitialized state
	StageUninitialized Stage = iota
	// Application subsystems are initialized and Run can be called
	StageInitialized
	// Application is currently running
	StageRunning
	// Application is in the process of shutting down
	StageShuttingDown
	// Application returned from Run
	StageExited
)

const jobQueueSize = 256

// GuiBackend brackets the OnGuiRender pass of a frame.
type GuiBackend interface {
	Begin()
	End()
}

type noGui struct{}

func (noGui) Begin() {}
func (noGui) End()   {}

// Context is what layers get to reach the application services. It is
// created once by NewApplication and shared by every layer.
type Context struct {
	Config   ApplicationConfig
	Window   platform.Window
	Input    *core.Input
	Metrics  *core.Metrics
	Renderer *renderer.ForwardRenderer
	// Assets is nil when no asset directory is configured.
	Assets *assets.AssetManager
	Jobs   *jobs.JobSystem

	app *Application
}

// Exit stops the application at the end of the current frame.
func (c *Context) Exit(code int) { c.app.Exit(code) }

// Option customizes NewApplication.
type Option func(*Application)

// WithTimeSource drives the frame and fixed-step clocks from source.
func WithTimeSource(source core.TimeSource) Option {
	return func(a *Application) { a.timeSource = source }
}

// WithBackend sets the backend of the forward renderer.
func WithBackend(backend renderer.Backend) Option {
	return func(a *Application) { a.backend = backend }
}

func WithGui(gui GuiBackend) Option {
	return func(a *Application) { a.gui = gui }
}

// Application runs the frame loop. Every phase of a frame happens on the
// goroutine that called Run: event dispatch, the variable update, the fixed
// updates and the gui pass, in that order.
type Application struct {
	config ApplicationConfig
	stage  Stage

	window   platform.Window
	stack    *layers.LayerStack
	gui      GuiBackend
	input    *core.Input
	metrics  *core.Metrics
	renderer *renderer.ForwardRenderer
	backend  renderer.Backend
	assets   *assets.AssetManager
	jobs     *jobs.JobSystem
	ctx      *Context

	timeSource core.TimeSource
	frameClock *core.Clock
	fixed      *FixedStep

	running       atomic.Bool
	exitRequested atomic.Bool
	exitCode      atomic.Int32
	minimized     bool
	frames        uint64
}

// NewApplication initializes the subsystems around an already created
// window. The window is owned by the application from now on.
func NewApplication(config ApplicationConfig, window platform.Window, opts ...Option) (*Application, error) {
	if window == nil {
		return nil, errors.New("application needs a window")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Application{
		config:     config,
		window:     window,
		stack:      layers.NewLayerStack(),
		gui:        noGui{},
		input:      core.NewInput(),
		metrics:    core.NewMetrics(),
		timeSource: core.SystemTime{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.backend == nil {
		a.backend = &renderer.LogBackend{}
	}

	level, _ := core.ParseLogLevel(config.LogLevel)
	core.SetLogLevel(level)

	a.frameClock = core.NewClockWithSource(a.timeSource)
	a.fixed = NewFixedStep(a.timeSource, config.UpdateRate, config.MaxUpdates)

	workers := config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	js, err := jobs.NewJobSystem(workers, jobQueueSize)
	if err != nil {
		return nil, fmt.Errorf("job system: %w", err)
	}
	a.jobs = js

	if config.AssetDir != "" {
		a.assets = assets.NewAssetManager(config.AssetDir, js)
		if err := a.assets.Initialize(config.HotReload); err != nil {
			a.jobs.Shutdown()
			return nil, fmt.Errorf("asset manager: %w", err)
		}
	}

	a.renderer = renderer.NewForwardRenderer(a.backend)
	if err := a.renderer.Initialize(config.Name, window.Width(), window.Height()); err != nil {
		a.releaseServices()
		return nil, err
	}

	a.window.SetVSync(config.VSync)
	a.window.SetEventCallback(a.OnEvent)

	a.ctx = &Context{
		Config:   config,
		Window:   window,
		Input:    a.input,
		Metrics:  a.metrics,
		Renderer: a.renderer,
		Assets:   a.assets,
		Jobs:     a.jobs,
		app:      a,
	}
	a.stage = StageInitialized
	core.LogInfo("%s initialized (%dx%d, %d Hz fixed update)", config.Name, window.Width(), window.Height(), a.fixed.Rate())
	return a, nil
}

func (a *Application) Context() *Context          { return a.ctx }
func (a *Application) Stage() Stage               { return a.stage }
func (a *Application) Layers() *layers.LayerStack { return a.stack }
func (a *Application) FixedStep() *FixedStep      { return a.fixed }
func (a *Application) Frames() uint64             { return a.frames }
func (a *Application) Minimized() bool            { return a.minimized }
func (a *Application) IsRunning() bool {
	return a.running.Load() && !a.exitRequested.Load()
}

func (a *Application) PushLayer(l layers.Layer) error {
	return a.stack.PushLayer(l)
}

func (a *Application) PushOverlay(l layers.Layer) error {
	return a.stack.PushOverlay(l)
}

// SetUpdateRate sets the fixed update frequency. Only 1 to 200 Hz is
// accepted; other values are ignored.
func (a *Application) SetUpdateRate(hz int) {
	a.fixed.SetRate(hz)
}

// SetMaxUpdates caps the fixed updates run in one frame. Only 1 to 200 is
// accepted; other values are ignored.
func (a *Application) SetMaxUpdates(n int) {
	a.fixed.SetMaxUpdates(n)
}

// Exit requests the loop to stop. Run returns code once the current frame
// ends, or right away when Exit was called before Run.
func (a *Application) Exit(code int) {
	a.exitCode.Store(int32(code))
	a.exitRequested.Store(true)
}

// Run executes frames until Exit is called and returns the exit code.
func (a *Application) Run() int {
	if a.stage != StageInitialized {
		core.LogError("application cannot run from stage %d", a.stage)
		return 1
	}
	a.stage = StageRunning
	a.running.Store(true)
	defer a.running.Store(false)

	a.frameClock.Start()
	a.fixed.Start()

	for !a.exitRequested.Load() {
		if !a.minimized {
			dt := a.frameClock.Restart()
			a.metrics.Update(dt)
			a.jobs.Update()

			frameDelta := dt.Seconds()
			a.eachLayer(func(l layers.Layer) { l.OnUpdate(frameDelta) })

			a.fixed.Advance(func(step float64) {
				a.eachLayer(func(l layers.Layer) { l.OnConstUpdate(step) })
			})

			a.gui.Begin()
			a.eachLayer(func(l layers.Layer) { l.OnGuiRender() })
			a.gui.End()
		} else {
			// no delta or fixed backlog builds up while nothing is updated
			a.frameClock.Restart()
			a.fixed.Skip()
		}

		// Input states are rolled over before the window delivers the
		// events of the next frame.
		a.input.EndFrame()
		a.window.OnUpdate()

		a.frames++
		if a.config.MaxFrames > 0 && a.frames >= a.config.MaxFrames && !a.exitRequested.Load() {
			a.Exit(0)
		}
	}

	a.shutdown()
	return int(a.exitCode.Load())
}

// eachLayer calls fn on the layers bottom to top. Layers popped by an
// earlier call in the same pass are skipped.
func (a *Application) eachLayer(fn func(l layers.Layer)) {
	for _, l := range a.stack.Layers() {
		if a.stack.Contains(l) {
			fn(l)
		}
	}
}

// OnEvent is the single entry point of window events. Input state is
// updated first, then the application handles close, resize and Escape,
// and whatever is left goes to the layers from the top down.
func (a *Application) OnEvent(e *core.Event) {
	a.input.Process(e)

	core.Dispatch(e, core.EVENT_CODE_WINDOW_CLOSE, a.onWindowClose)
	core.Dispatch(e, core.EVENT_CODE_WINDOW_RESIZE, a.onWindowResize)
	core.Dispatch(e, core.EVENT_CODE_KEY_PRESSED, a.onKeyPressed)

	a.stack.Dispatch(e)
}

func (a *Application) onWindowClose(e *core.Event) bool {
	core.LogInfo("window close requested, shutting down")
	a.Exit(0)
	return true
}

func (a *Application) onWindowResize(e *core.Event) bool {
	we, ok := e.Data.(*core.WindowEvent)
	if !ok {
		core.LogError("wrong payload for event %s", e.Code)
		return true
	}

	// Handle minimization
	if we.Width == 0 || we.Height == 0 {
		if !a.minimized {
			core.LogInfo("window minimized, suspending updates")
		}
		a.minimized = true
		return false
	}
	if a.minimized {
		core.LogInfo("window restored, resuming updates")
		a.minimized = false
		a.frameClock.Restart()
		a.fixed.Skip()
	}
	a.renderer.SetViewport(we.Width, we.Height)
	return false
}

func (a *Application) onKeyPressed(e *core.Event) bool {
	ke, ok := e.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	if a.config.ExitOnEscape && ke.KeyCode == core.KEY_ESCAPE {
		a.Exit(0)
		return true
	}
	return false
}

// Shutdown releases the layers, services and window of an application that
// never ran. It does nothing once Run has been called.
func (a *Application) Shutdown() {
	if a.stage != StageInitialized {
		return
	}
	a.shutdown()
}

func (a *Application) shutdown() {
	a.stage = StageShuttingDown
	core.LogInfo("shutting down after %d frames", a.frames)

	a.stack.Clear()
	a.releaseServices()
	if err := a.window.Shutdown(); err != nil {
		core.LogError("window shutdown: %s", err)
	}
	a.stage = StageExited
}

func (a *Application) releaseServices() {
	if a.renderer != nil {
		if err := a.renderer.Shutdown(); err != nil {
			core.LogError("renderer shutdown: %s", err)
		}
	}
	if a.assets != nil {
		if err := a.assets.Shutdown(); err != nil {
			core.LogError("asset manager shutdown: %s", err)
		}
	}
	if err := a.jobs.Shutdown(); err != nil {
		core.LogError("job system shutdown: %s", err)
	}
	// completions that arrived while workers drained
	a.jobs.Update()
}
