package core

import "fmt"

// Engine event codes. Applications may define their own codes beyond MAX_EVENT_CODE.
type EventCode uint16

const (
	// The window asked to close. Shuts the application down on the next frame.
	EVENT_CODE_WINDOW_CLOSE EventCode = iota + 1
	// Resized/resolution changed from the OS.
	/* Context usage:
	 * data := event.Data.(*WindowEvent)
	 */
	EVENT_CODE_WINDOW_RESIZE
	// Keyboard key pressed.
	EVENT_CODE_KEY_PRESSED
	// Keyboard key released.
	EVENT_CODE_KEY_RELEASED
	// Mouse button pressed.
	EVENT_CODE_BUTTON_PRESSED
	// Mouse button released.
	EVENT_CODE_BUTTON_RELEASED
	// Mouse moved.
	EVENT_CODE_MOUSE_MOVED
	// Mouse wheel scrolled.
	EVENT_CODE_MOUSE_WHEEL

	MAX_EVENT_CODE EventCode = 0xFF
)

func (c EventCode) String() string {
	switch c {
	case EVENT_CODE_WINDOW_CLOSE:
		return "WindowClose"
	case EVENT_CODE_WINDOW_RESIZE:
		return "WindowResize"
	case EVENT_CODE_KEY_PRESSED:
		return "KeyPressed"
	case EVENT_CODE_KEY_RELEASED:
		return "KeyReleased"
	case EVENT_CODE_BUTTON_PRESSED:
		return "MouseButtonPressed"
	case EVENT_CODE_BUTTON_RELEASED:
		return "MouseButtonReleased"
	case EVENT_CODE_MOUSE_MOVED:
		return "MouseMoved"
	case EVENT_CODE_MOUSE_WHEEL:
		return "MouseScrolled"
	}
	return fmt.Sprintf("Event(%d)", uint16(c))
}

// Event is delivered synchronously from the window to the application and then
// to the layers, topmost first. Once Handled is set no further layer sees it.
type Event struct {
	Code    EventCode
	Data    interface{}
	Handled bool
}

type KeyEvent struct {
	KeyCode KeyCode
	Repeat  bool
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type WindowEvent struct {
	Width  uint32
	Height uint32
}

func NewKeyEvent(key KeyCode, pressed bool) *Event {
	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	return &Event{Code: code, Data: &KeyEvent{KeyCode: key}}
}

func NewResizeEvent(width, height uint32) *Event {
	return &Event{Code: EVENT_CODE_WINDOW_RESIZE, Data: &WindowEvent{Width: width, Height: height}}
}

func NewCloseEvent() *Event {
	return &Event{Code: EVENT_CODE_WINDOW_CLOSE}
}

// Dispatch invokes fn when the event carries the given code and is not handled
// yet. The return value of fn becomes the handled state.
func Dispatch(e *Event, code EventCode, fn func(e *Event) bool) bool {
	if e == nil || e.Handled || e.Code != code {
		return false
	}
	e.Handled = fn(e)
	return true
}
