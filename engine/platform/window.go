package platform

import (
	"github.com/spaghettifunk/tundra/engine/core"
)

// EventCallback receives every window and input event on the thread that
// calls Window.OnUpdate.
type EventCallback func(e *core.Event)

type WindowProps struct {
	Title  string
	PosX   uint32
	PosY   uint32
	Width  uint32
	Height uint32
	VSync  bool
}

// Window is the surface the application runs on. OnUpdate polls the OS
// and delivers the queued events synchronously to the callback.
type Window interface {
	Width() uint32
	Height() uint32
	SetEventCallback(fn EventCallback)
	SetVSync(enabled bool)
	VSync() bool
	OnUpdate()
	Shutdown() error
}
