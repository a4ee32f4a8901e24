package core

import (
	"errors"
	"testing"
	"time"
)

// go test -run ^TestClock$ . -count 1
func TestClock(t *testing.T) {
	src := NewManualTime(time.Unix(100, 0))
	c := NewClockWithSource(src)

	if c.Elapsed() != 0 {
		t.Fatalf("stopped clock elapsed = %s", c.Elapsed())
	}
	c.Start()
	src.Advance(250 * time.Millisecond)
	if got := c.Elapsed(); got != 250*time.Millisecond {
		t.Fatalf("elapsed = %s", got)
	}
	if got := c.Restart(); got != 250*time.Millisecond {
		t.Fatalf("restart returned %s", got)
	}
	if c.Elapsed() != 0 {
		t.Fatalf("elapsed after restart = %s", c.Elapsed())
	}
	src.Advance(time.Second)
	c.Stop()
	if c.Elapsed() != 0 {
		t.Errorf("elapsed after stop = %s", c.Elapsed())
	}
	if got := c.Restart(); got != 0 {
		t.Errorf("restart of a stopped clock = %s", got)
	}
}

// go test -run ^TestDispatch$ . -count 1
func TestDispatch(t *testing.T) {
	e := NewResizeEvent(640, 480)

	called := false
	if Dispatch(e, EVENT_CODE_KEY_PRESSED, func(*Event) bool { called = true; return true }) || called {
		t.Fatal("dispatch ran a handler for another code")
	}
	if !Dispatch(e, EVENT_CODE_WINDOW_RESIZE, func(e *Event) bool {
		we := e.Data.(*WindowEvent)
		return we.Width == 640 && we.Height == 480
	}) {
		t.Fatal("dispatch skipped a matching handler")
	}
	if !e.Handled {
		t.Fatal("event not marked handled")
	}
	if Dispatch(e, EVENT_CODE_WINDOW_RESIZE, func(*Event) bool { return true }) {
		t.Error("handled events must not be dispatched again")
	}
	if Dispatch(nil, EVENT_CODE_WINDOW_CLOSE, func(*Event) bool { return true }) {
		t.Error("nil event dispatched")
	}
	if EVENT_CODE_MOUSE_WHEEL.String() != "MouseScrolled" || EventCode(300).String() != "Event(300)" {
		t.Error("unexpected event code names")
	}
}

// go test -run ^TestInput$ . -count 1
func TestInput(t *testing.T) {
	in := NewInput()

	in.Process(NewKeyEvent(KEY_SPACE, true))
	in.Process(&Event{Code: EVENT_CODE_BUTTON_PRESSED, Data: &MouseEvent{Button: BUTTON_LEFT}})
	in.Process(&Event{Code: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{PosX: 10, PosY: 20}})
	in.Process(&Event{Code: EVENT_CODE_MOUSE_WHEEL, Data: &MouseEvent{Scroll: 1}})
	in.Process(NewCloseEvent())

	if !in.IsKeyDown(KEY_SPACE) || !in.IsKeyPressed(KEY_SPACE) || in.WasKeyDown(KEY_SPACE) {
		t.Fatal("space should be newly pressed")
	}
	if !in.IsButtonDown(BUTTON_LEFT) || in.WasButtonDown(BUTTON_LEFT) {
		t.Fatal("left button should be newly down")
	}
	if x, y := in.MouseDelta(); x != 10 || y != 20 {
		t.Fatalf("mouse delta = %d,%d", x, y)
	}
	if in.ScrollDelta != 1 {
		t.Fatalf("scroll = %d", in.ScrollDelta)
	}

	in.EndFrame()
	if in.IsKeyPressed(KEY_SPACE) || !in.WasKeyDown(KEY_SPACE) {
		t.Error("space should be held after the frame ends")
	}
	if x, y := in.MouseDelta(); x != 0 || y != 0 {
		t.Errorf("mouse delta after frame = %d,%d", x, y)
	}
	if in.ScrollDelta != 0 {
		t.Errorf("scroll not reset")
	}

	in.Process(NewKeyEvent(KEY_SPACE, false))
	if !in.IsKeyUp(KEY_SPACE) {
		t.Error("space should be up")
	}
	if in.IsKeyDown(KEYS_MAX_KEYS) {
		t.Error("out of range key reported down")
	}
}

// go test -run ^TestMetrics$ . -count 1
func TestMetrics(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(10 * time.Millisecond)
	}
	if m.FrameTime() != 10 {
		t.Errorf("average frame time = %v ms", m.FrameTime())
	}
	for i := 0; i < 100; i++ {
		m.Update(10 * time.Millisecond)
	}
	fps, _ := m.Frame()
	if fps < 99 || fps > 101 {
		t.Errorf("fps = %v, want about 100", fps)
	}
	if m.TotalFrames != uint64(AVG_COUNT)+100 {
		t.Errorf("total frames = %d", m.TotalFrames)
	}
}

// go test -run ^TestParseLogLevel$ . -count 1
func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("unexpected error %v", err)
	}
}
