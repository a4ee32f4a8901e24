package platform

import (
	"testing"

	"github.com/spaghettifunk/tundra/engine/core"
)

func TestHeadlessDeliversInOrder(t *testing.T) {
	w := NewHeadlessWindow(800, 600)
	var got []core.EventCode
	w.SetEventCallback(func(e *core.Event) { got = append(got, e.Code) })

	pushed := []*core.Event{
		core.NewKeyEvent(core.KEY_A, true),
		core.NewResizeEvent(1024, 768),
		core.NewCloseEvent(),
	}
	for _, e := range pushed {
		if err := w.Push(e); err != nil {
			t.Fatal(err)
		}
	}
	if len(got) != 0 {
		t.Fatal("events must wait for OnUpdate")
	}

	w.OnUpdate()
	if len(got) != len(pushed) {
		t.Fatalf("expected %d events, got %d", len(pushed), len(got))
	}
	for i, e := range pushed {
		if got[i] != e.Code {
			t.Errorf("event %d: expected %s, got %s", i, e.Code, got[i])
		}
	}
	if w.Width() != 1024 || w.Height() != 768 {
		t.Errorf("resize not applied: %dx%d", w.Width(), w.Height())
	}
	if w.Polls() != 1 {
		t.Errorf("expected 1 poll, got %d", w.Polls())
	}
}

func TestHeadlessQueueBound(t *testing.T) {
	w := NewHeadlessWindow(1, 1)
	for i := 0; i < headlessQueueSize; i++ {
		if err := w.Push(core.NewCloseEvent()); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := w.Push(core.NewCloseEvent()); err == nil {
		t.Fatal("expected a full queue")
	}
	w.OnUpdate()
	if err := w.Push(core.NewCloseEvent()); err != nil {
		t.Fatalf("queue should be drained: %v", err)
	}
}
