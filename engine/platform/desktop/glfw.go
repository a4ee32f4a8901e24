package desktop

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/platform"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Window is a desktop window without a client API. Rendering backends
// create their surface from Handle.
type Window struct {
	window   *glfw.Window
	width    uint32
	height   uint32
	vsync    bool
	callback platform.EventCallback
}

func NewWindow(props platform.WindowProps) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(props.Width), int(props.Height), props.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &Window{
		window: window,
		width:  props.Width,
		height: props.Height,
		vsync:  props.VSync,
	}

	window.SetKeyCallback(w.keyCallback)
	window.SetMouseButtonCallback(w.mouseButtonCallback)
	window.SetCursorPosCallback(w.cursorPosCallback)
	window.SetScrollCallback(w.scrollCallback)
	window.SetFramebufferSizeCallback(w.framebufferSizeCallback)
	window.SetCloseCallback(w.closeCallback)
	window.SetPos(int(props.PosX), int(props.PosY))
	window.Show()

	core.LogInfo("window '%s' created (%dx%d)", props.Title, props.Width, props.Height)
	return w, nil
}

// Handle exposes the native window.
func (w *Window) Handle() *glfw.Window { return w.window }

func (w *Window) Width() uint32 { return w.width }

func (w *Window) Height() uint32 { return w.height }

func (w *Window) SetEventCallback(fn platform.EventCallback) { w.callback = fn }

// SetVSync records the preference. The presentation mode is chosen by the
// rendering backend since the window owns no context.
func (w *Window) SetVSync(enabled bool) { w.vsync = enabled }

func (w *Window) VSync() bool { return w.vsync }

func (w *Window) OnUpdate() {
	glfw.PollEvents()
}

func (w *Window) Shutdown() error {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	glfw.Terminate()
	return nil
}

func (w *Window) emit(e *core.Event) {
	if w.callback != nil {
		w.callback(e)
	}
}

func (w *Window) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok {
		return
	}
	e := core.NewKeyEvent(code, action != glfw.Release)
	e.Data.(*core.KeyEvent).Repeat = action == glfw.Repeat
	w.emit(e)
}

func (w *Window) mouseButtonCallback(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	code := core.EVENT_CODE_BUTTON_RELEASED
	if action == glfw.Press {
		code = core.EVENT_CODE_BUTTON_PRESSED
	}
	x, y := w.window.GetCursorPos()
	w.emit(&core.Event{Code: code, Data: &core.MouseEvent{Button: b, PosX: uint16(x), PosY: uint16(y)}})
}

func (w *Window) cursorPosCallback(_ *glfw.Window, xpos, ypos float64) {
	w.emit(&core.Event{Code: core.EVENT_CODE_MOUSE_MOVED, Data: &core.MouseEvent{PosX: uint16(xpos), PosY: uint16(ypos)}})
}

func (w *Window) scrollCallback(_ *glfw.Window, xoff, yoff float64) {
	var scroll int8 = 1
	if yoff < 0 {
		scroll = -1
	} else if yoff == 0 {
		return
	}
	w.emit(&core.Event{Code: core.EVENT_CODE_MOUSE_WHEEL, Data: &core.MouseEvent{Scroll: scroll}})
}

func (w *Window) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	w.width, w.height = uint32(width), uint32(height)
	w.emit(core.NewResizeEvent(w.width, w.height))
}

func (w *Window) closeCallback(_ *glfw.Window) {
	w.emit(core.NewCloseEvent())
}

var _ platform.Window = (*Window)(nil)
